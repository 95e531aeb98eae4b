package enums

import "fmt"

// PlanID identifies a protection plan tier.
type PlanID string

const (
	PlanBasic   PlanID = "basic"
	PlanPremium PlanID = "premium"
	PlanFamily  PlanID = "family"
)

var validPlanIDs = []PlanID{
	PlanBasic,
	PlanPremium,
	PlanFamily,
}

// String implements fmt.Stringer.
func (p PlanID) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanID.
func (p PlanID) IsValid() bool {
	for _, candidate := range validPlanIDs {
		if candidate == p {
			return true
		}
	}
	return false
}

// PlanIDs returns every known PlanID in display order.
func PlanIDs() []PlanID {
	out := make([]PlanID, len(validPlanIDs))
	copy(out, validPlanIDs)
	return out
}

// ParsePlanID converts raw input into a PlanID.
func ParsePlanID(value string) (PlanID, error) {
	for _, candidate := range validPlanIDs {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan id %q", value)
}
