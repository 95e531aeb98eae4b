package enums

import "fmt"

// PriceTier is the coarse pricing badge attached to a device model.
type PriceTier string

const (
	PriceTierGreen PriceTier = "green"
	PriceTierBlue  PriceTier = "blue"
	PriceTierGold  PriceTier = "gold"
)

var validPriceTiers = []PriceTier{
	PriceTierGreen,
	PriceTierBlue,
	PriceTierGold,
}

// String implements fmt.Stringer.
func (p PriceTier) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceTier.
func (p PriceTier) IsValid() bool {
	for _, candidate := range validPriceTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceTier converts raw input into a PriceTier.
func ParsePriceTier(value string) (PriceTier, error) {
	for _, candidate := range validPriceTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price tier %q", value)
}
