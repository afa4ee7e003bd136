package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// OrderStatus represents the status of an order
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 0
	OrderStatusCompleted OrderStatus = 1
	OrderStatusCancelled OrderStatus = 2
)

var orderStatusNames = [...]string{"pending", "completed", "cancelled"}

func (s OrderStatus) String() string {
	if int(s) < 0 || int(s) >= len(orderStatusNames) {
		return orderStatusNames[0]
	}
	return orderStatusNames[s]
}

// IsValid reports whether s is a known order status
func (s OrderStatus) IsValid() bool {
	return int(s) >= 0 && int(s) < len(orderStatusNames)
}

// ParseOrderStatus converts the wire name into an OrderStatus
func ParseOrderStatus(str string) (OrderStatus, error) {
	for i, name := range orderStatusNames {
		if name == str {
			return OrderStatus(i), nil
		}
	}
	return OrderStatusPending, fmt.Errorf("unknown order status %q", str)
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = OrderStatus(i)
		return nil
	}
	parsed, err := ParseOrderStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderStatus(v)
	case int:
		*s = OrderStatus(v)
	}
	return nil
}
