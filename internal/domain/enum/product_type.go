package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ProductType is the kind of catalogue item being sold
type ProductType int

const (
	ProductTypeProduct   ProductType = 0
	ProductTypeService   ProductType = 1
	ProductTypeTreatment ProductType = 2
	ProductTypeCombo     ProductType = 3
	ProductTypeFood      ProductType = 4
	ProductTypeInventory ProductType = 5
)

var productTypeNames = [...]string{"product", "service", "treatment", "combo", "food", "inventory"}

func (t ProductType) String() string {
	if int(t) < 0 || int(t) >= len(productTypeNames) {
		return productTypeNames[0]
	}
	return productTypeNames[t]
}

// TracksStock reports whether stock quantities are authoritative for this kind.
// Services, treatments, combos and prepared food are never counted.
func (t ProductType) TracksStock() bool {
	return t == ProductTypeProduct || t == ProductTypeInventory
}

// ParseProductType converts the wire name into a ProductType
func ParseProductType(str string) (ProductType, error) {
	for i, name := range productTypeNames {
		if name == str {
			return ProductType(i), nil
		}
	}
	return ProductTypeProduct, fmt.Errorf("unknown product type %q", str)
}

func (t ProductType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ProductType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = ProductType(i)
		return nil
	}
	parsed, err := ParseProductType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ProductType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *ProductType) Scan(value interface{}) error {
	if value == nil {
		*t = ProductTypeProduct
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = ProductType(v)
	case int:
		*t = ProductType(v)
	}
	return nil
}
