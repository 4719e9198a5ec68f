package fashion

import (
	"database/sql/driver"
	"fmt"
)

type Category string

const (
	Tops        Category = "tops"
	Bottoms     Category = "bottoms"
	Dresses     Category = "dresses"
	Outerwear   Category = "outerwear"
	Shoes       Category = "shoes"
	Accessories Category = "accessories"
	Unknown     Category = "unknown"
)

var allCategories = []Category{Tops, Bottoms, Dresses, Outerwear, Shoes, Accessories, Unknown}

var categoryLabels = map[Category]string{
	Tops:        "Tops",
	Bottoms:     "Bottoms",
	Dresses:     "Dresses",
	Outerwear:   "Outerwear",
	Shoes:       "Shoes",
	Accessories: "Accessories",
	Unknown:     "Other",
}

func AllCategories() []Category {
	return append([]Category(nil), allCategories...)
}

// ParseCategory degrades anything it does not know to Unknown.
func ParseCategory(value string) Category {
	category := Category(value)
	if _, ok := categoryLabels[category]; ok {
		return category
	}
	return Unknown
}

func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[Unknown]
}

func (c *Category) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*c = ParseCategory(v)
	case []byte:
		*c = ParseCategory(string(v))
	case nil:
		*c = Unknown
	default:
		return fmt.Errorf("unsupported category value %T", value)
	}
	return nil
}

func (c Category) Value() (driver.Value, error) {
	return string(c), nil
}
