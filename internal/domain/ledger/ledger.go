// Package ledger holds the quantity arithmetic shared by the stock and
// treatment package ledgers. Nothing here touches storage.
package ledger

import (
	"fmt"
	"sort"
)

// Bound controls what happens when a delta would take a balance below zero
type Bound int

const (
	// Strict rejects a negative result with a ShortfallError
	Strict Bound = iota
	// FloorAtZero clamps a negative result to zero. Only reversals of
	// historical receipts use it.
	FloorAtZero
)

// ShortfallError reports a deduction larger than the balance it was taken from
type ShortfallError struct {
	Required  int
	Available int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("insufficient quantity: required %d, available %d", e.Required, e.Available)
}

// Apply returns current+delta subject to bound
func Apply(current, delta int, bound Bound) (int, error) {
	next := current + delta
	if next >= 0 {
		return next, nil
	}
	if bound == FloorAtZero {
		return 0, nil
	}
	return current, &ShortfallError{Required: -delta, Available: current}
}

// Remaining is total minus the number of distinct used sessions, never below zero
func Remaining(total int, used []int) int {
	r := total - len(used)
	if r < 0 {
		return 0
	}
	return r
}

// MarkUsed adds n to the used set. changed is false when n was already used.
func MarkUsed(used []int, n int) (out []int, changed bool) {
	if containsSession(used, n) {
		return used, false
	}
	out = append(append(make([]int, 0, len(used)+1), used...), n)
	sort.Ints(out)
	return out, true
}

// MarkReturned removes n from the used set. changed is false when n was not used.
func MarkReturned(used []int, n int) (out []int, changed bool) {
	if !containsSession(used, n) {
		return used, false
	}
	out = make([]int, 0, len(used)-1)
	for _, u := range used {
		if u != n {
			out = append(out, u)
		}
	}
	return out, true
}

func containsSession(used []int, n int) bool {
	for _, u := range used {
		if u == n {
			return true
		}
	}
	return false
}
