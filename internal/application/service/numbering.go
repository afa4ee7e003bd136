package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sangkips/pos-api/internal/domain/enum"
)

// OrderPrefix is the daily prefix shared by order numbers: HD070324
func OrderPrefix(day time.Time) string {
	return "HD" + day.Format("020106")
}

// OrderNumber formats HD{ddmmyy}{seq4}
func OrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%04d", OrderPrefix(day), seq)
}

// ReceiptPrefix is the daily prefix shared by receipts of one kind: IN-20240131-
func ReceiptPrefix(kind enum.ReceiptKind, day time.Time) string {
	return fmt.Sprintf("%s-%s-", kind.Prefix(), day.Format("20060102"))
}

// ReceiptNumber formats IN|OUT-{YYYYMMDD}-{seq3}
func ReceiptNumber(kind enum.ReceiptKind, day time.Time, seq int64) string {
	return fmt.Sprintf("%s%03d", ReceiptPrefix(kind, day), seq)
}

// NextSequence returns the sequence after last, the highest number issued
// under prefix. Deleted records never free a lower number for reuse.
func NextSequence(prefix, last string) int64 {
	seq, err := strconv.ParseInt(strings.TrimPrefix(last, prefix), 10, 64)
	if err != nil || !strings.HasPrefix(last, prefix) {
		return 1
	}
	return seq + 1
}

// KitchenOrderID formats KITCHEN-{epochMillis}
func KitchenOrderID(at time.Time) string {
	return fmt.Sprintf("KITCHEN-%d", at.UnixMilli())
}

// KitchenItemID keeps item ids unique across tickets that repeat a product
func KitchenItemID(originalID string, at time.Time, index int) string {
	return fmt.Sprintf("%s-%d-%d", originalID, at.UnixMilli(), index)
}
