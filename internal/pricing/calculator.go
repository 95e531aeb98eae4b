package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/covercellhq/covercell-backend/internal/catalog"
	"github.com/covercellhq/covercell-backend/pkg/enums"
)

// ErrIncompleteSelection is returned when a quote is requested before both a
// device model and a plan have been chosen.
var ErrIncompleteSelection = errors.New("device model and plan are required")

var twelve = decimal.NewFromInt(12)

// Selection is the customer's current product choice. CustomName is only
// meaningful when DeviceModel is the catalog's "other" sentinel.
type Selection struct {
	DeviceModel string
	CustomName  string
	Plan        enums.PlanID
	AddOnIDs    []string
}

// Quote is the fully derived price breakdown for a selection. All amounts are
// monthly except YearlyPrice.
type Quote struct {
	DeviceModel  string          `json:"device_model"`
	Plan         enums.PlanID    `json:"plan"`
	PlanPrice    decimal.Decimal `json:"plan_price"`
	AddOns       []QuoteAddOn    `json:"add_ons"`
	AddOnsPrice  decimal.Decimal `json:"add_ons_price"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	YearlyPrice  decimal.Decimal `json:"yearly_price"`
	Deductible   decimal.Decimal `json:"deductible"`
	Tier         enums.PriceTier `json:"tier"`
}

// QuoteAddOn is one selected add-on with its resolved price.
type QuoteAddOn struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
}

// Calculator derives quotes from the product catalog. Pricing is a pure
// function of the selection; the calculator holds no per-request state.
type Calculator struct {
	catalog *catalog.Catalog
}

// NewCalculator wires a calculator to the catalog.
func NewCalculator(c *catalog.Catalog) *Calculator {
	return &Calculator{catalog: c}
}

// Compute derives the full quote for a selection.
//
// The basic plan prices off the device's pricing entry; premium and family
// use their fixed base price but still take deductible and tier from the
// device. Add-on charges stack on top of the plan price; add-on ids the
// catalog does not know (and duplicates) contribute nothing. The yearly price
// is twelve times the monthly total.
func (c *Calculator) Compute(sel Selection) (Quote, error) {
	if sel.DeviceModel == "" || sel.Plan == "" {
		return Quote{}, ErrIncompleteSelection
	}

	entry, err := c.catalog.PricingFor(sel.DeviceModel)
	if err != nil {
		return Quote{}, err
	}
	plan, err := c.catalog.PlanByID(sel.Plan)
	if err != nil {
		return Quote{}, err
	}

	planPrice := entry.MonthlyPrice
	if plan.BasePrice != nil {
		planPrice = *plan.BasePrice
	}

	addOnsPrice := decimal.Zero
	addOns := make([]QuoteAddOn, 0, len(sel.AddOnIDs))
	seen := make(map[string]bool, len(sel.AddOnIDs))
	for _, id := range sel.AddOnIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		addOn, err := c.catalog.AddOnByID(id)
		if err != nil {
			continue
		}
		addOnsPrice = addOnsPrice.Add(addOn.MonthlyPrice)
		addOns = append(addOns, QuoteAddOn{
			ID:           addOn.ID,
			Name:         addOn.Name,
			MonthlyPrice: addOn.MonthlyPrice,
		})
	}

	monthly := planPrice.Add(addOnsPrice)

	return Quote{
		DeviceModel:  sel.DeviceModel,
		Plan:         sel.Plan,
		PlanPrice:    planPrice,
		AddOns:       addOns,
		AddOnsPrice:  addOnsPrice,
		MonthlyPrice: monthly,
		YearlyPrice:  monthly.Mul(twelve),
		Deductible:   entry.Deductible,
		Tier:         entry.Tier,
	}, nil
}
