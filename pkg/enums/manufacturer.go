package enums

import "fmt"

// Manufacturer groups device models for display and catalog partitioning.
type Manufacturer string

const (
	ManufacturerApple   Manufacturer = "apple"
	ManufacturerSamsung Manufacturer = "samsung"
	ManufacturerOther   Manufacturer = "other"
)

var validManufacturers = []Manufacturer{
	ManufacturerApple,
	ManufacturerSamsung,
	ManufacturerOther,
}

// String implements fmt.Stringer.
func (m Manufacturer) String() string {
	return string(m)
}

// IsValid reports whether the value is a known Manufacturer.
func (m Manufacturer) IsValid() bool {
	for _, candidate := range validManufacturers {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseManufacturer converts raw input into a Manufacturer.
func ParseManufacturer(value string) (Manufacturer, error) {
	for _, candidate := range validManufacturers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid manufacturer %q", value)
}
