package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// KitchenStatus is the preparation status of a kitchen ticket.
// The lifecycle is linear: pending -> cooking -> completed -> served.
type KitchenStatus int

const (
	KitchenStatusPending   KitchenStatus = 0
	KitchenStatusCooking   KitchenStatus = 1
	KitchenStatusCompleted KitchenStatus = 2
	KitchenStatusServed    KitchenStatus = 3
)

var kitchenStatusNames = [...]string{"pending", "cooking", "completed", "served"}

func (s KitchenStatus) String() string {
	if int(s) < 0 || int(s) >= len(kitchenStatusNames) {
		return kitchenStatusNames[0]
	}
	return kitchenStatusNames[s]
}

// IsValid reports whether s is a known kitchen status
func (s KitchenStatus) IsValid() bool {
	return int(s) >= 0 && int(s) < len(kitchenStatusNames)
}

// IsTerminal reports whether no further transition is possible
func (s KitchenStatus) IsTerminal() bool {
	return s == KitchenStatusServed
}

// Next returns the status that follows s in the lifecycle
func (s KitchenStatus) Next() (KitchenStatus, bool) {
	if s.IsTerminal() || !s.IsValid() {
		return s, false
	}
	return s + 1, true
}

// ParseKitchenStatus converts the wire name into a KitchenStatus
func ParseKitchenStatus(str string) (KitchenStatus, error) {
	for i, name := range kitchenStatusNames {
		if name == str {
			return KitchenStatus(i), nil
		}
	}
	return KitchenStatusPending, fmt.Errorf("unknown kitchen status %q", str)
}

func (s KitchenStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *KitchenStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = KitchenStatus(i)
		return nil
	}
	parsed, err := ParseKitchenStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s KitchenStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *KitchenStatus) Scan(value interface{}) error {
	if value == nil {
		*s = KitchenStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = KitchenStatus(v)
	case int:
		*s = KitchenStatus(v)
	}
	return nil
}
