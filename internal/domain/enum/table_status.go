package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TableStatus represents the seating state of a dining table
type TableStatus int

const (
	TableStatusAvailable TableStatus = 0
	TableStatusOccupied  TableStatus = 1
	TableStatusReserved  TableStatus = 2
	TableStatusCleaning  TableStatus = 3
)

var tableStatusNames = [...]string{"available", "occupied", "reserved", "cleaning"}

func (s TableStatus) String() string {
	if int(s) < 0 || int(s) >= len(tableStatusNames) {
		return tableStatusNames[0]
	}
	return tableStatusNames[s]
}

func ParseTableStatus(str string) (TableStatus, error) {
	for i, name := range tableStatusNames {
		if name == str {
			return TableStatus(i), nil
		}
	}
	return TableStatusAvailable, fmt.Errorf("unknown table status %q", str)
}

func (s TableStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TableStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = TableStatus(i)
		return nil
	}
	parsed, err := ParseTableStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s TableStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *TableStatus) Scan(value interface{}) error {
	if value == nil {
		*s = TableStatusAvailable
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = TableStatus(v)
	case int:
		*s = TableStatus(v)
	}
	return nil
}
