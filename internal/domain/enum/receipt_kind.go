package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ReceiptKind distinguishes stock-in receipts from stock-out receipts
type ReceiptKind int

const (
	ReceiptKindIn  ReceiptKind = 0
	ReceiptKindOut ReceiptKind = 1
)

func (k ReceiptKind) String() string {
	if k == ReceiptKindOut {
		return "out"
	}
	return "in"
}

// Prefix is the receipt number prefix for this kind
func (k ReceiptKind) Prefix() string {
	if k == ReceiptKindOut {
		return "OUT"
	}
	return "IN"
}

// Sign is +1 for receipts that add stock and -1 for receipts that remove it
func (k ReceiptKind) Sign() int {
	if k == ReceiptKindOut {
		return -1
	}
	return 1
}

func (k ReceiptKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ReceiptKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = ReceiptKind(i)
		return nil
	}
	if str == "out" {
		*k = ReceiptKindOut
	} else {
		*k = ReceiptKindIn
	}
	return nil
}

func (k ReceiptKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *ReceiptKind) Scan(value interface{}) error {
	if value == nil {
		*k = ReceiptKindIn
		return nil
	}
	switch v := value.(type) {
	case int64:
		*k = ReceiptKind(v)
	case int:
		*k = ReceiptKind(v)
	}
	return nil
}
