package catalog

import (
	"github.com/covercellhq/covercell-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// TrialDays is the free trial granted to every new policy.
const TrialDays = 30

// Plan describes a protection plan tier. BasePrice is nil for the basic plan,
// whose price derives from the selected device; premium and family carry a
// fixed override price that ignores device pricing entirely.
type Plan struct {
	ID          enums.PlanID     `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price,omitempty"`
	Features    []string         `json:"features"`
	Popular     bool             `json:"popular"`
}

func fixedPrice(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func defaultPlans() []Plan {
	return []Plan{
		{
			ID:          enums.PlanBasic,
			Name:        "Basic Plan",
			Description: "Essential protection for your device",
			Features: []string{
				"Screen repair coverage",
				"Basic accidental damage",
				"24/7 customer support",
				"2 claims per year",
			},
		},
		{
			ID:          enums.PlanPremium,
			Name:        "Premium Plan",
			Description: "Complete protection with premium features",
			BasePrice:   fixedPrice("19.99"),
			Features: []string{
				"Everything in Basic",
				"Theft protection",
				"Water damage coverage",
				"Unlimited claims",
				"Express replacement",
			},
			Popular: true,
		},
		{
			ID:          enums.PlanFamily,
			Name:        "Family Plan",
			Description: "Protect up to 5 devices under one plan",
			BasePrice:   fixedPrice("34.99"),
			Features: []string{
				"Up to 5 devices",
				"All Premium features",
				"Family dashboard",
				"Shared deductibles",
				"Device tracking",
				"Group discounts",
			},
		},
	}
}
