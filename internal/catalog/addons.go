package catalog

import "github.com/shopspring/decimal"

// AddOn is an optional recurring charge layered on top of a plan's base price.
type AddOn struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Description  string          `json:"description"`
	Popular      bool            `json:"popular"`
}

func defaultAddOns() []AddOn {
	return []AddOn{
		{
			ID:           "accessories",
			Name:         "Accessories Coverage",
			MonthlyPrice: decimal.RequireFromString("1.99"),
			Description:  "Covers chargers, cases, screen protectors, and other accessories",
			Popular:      true,
		},
		{
			ID:           "extended_warranty",
			Name:         "Extended Warranty",
			MonthlyPrice: decimal.RequireFromString("2.99"),
			Description:  "Additional 12 months warranty coverage beyond manufacturer",
		},
		{
			ID:           "data_recovery",
			Name:         "Data Recovery",
			MonthlyPrice: decimal.RequireFromString("3.99"),
			Description:  "Professional data recovery service for damaged devices",
		},
	}
}
