package catalog

import (
	"github.com/covercellhq/covercell-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// OtherDeviceModel is the sentinel a customer picks when their model is not
// listed; it requires a free-text custom name and prices off FallbackModelName.
const OtherDeviceModel = "other"

// FallbackModelName is the pricing entry used for unlisted devices.
const FallbackModelName = "Other Device"

// PricingEntry holds the per-model pricing data.
type PricingEntry struct {
	Model        string             `json:"model"`
	Manufacturer enums.Manufacturer `json:"manufacturer"`
	MonthlyPrice decimal.Decimal    `json:"monthly_price"`
	Deductible   decimal.Decimal    `json:"deductible"`
	Tier         enums.PriceTier    `json:"tier"`
	Selectable   bool               `json:"-"`
}

func entry(model string, manufacturer enums.Manufacturer, monthly, deductible string, tier enums.PriceTier) PricingEntry {
	return PricingEntry{
		Model:        model,
		Manufacturer: manufacturer,
		MonthlyPrice: decimal.RequireFromString(monthly),
		Deductible:   decimal.RequireFromString(deductible),
		Tier:         tier,
		Selectable:   true,
	}
}

func defaultPricingEntries() []PricingEntry {
	apple := enums.ManufacturerApple
	samsung := enums.ManufacturerSamsung

	entries := []PricingEntry{
		entry("iPhone 6", apple, "5", "29", enums.PriceTierGreen),
		entry("iPhone 7", apple, "5", "29", enums.PriceTierGreen),
		entry("iPhone 8", apple, "5", "29", enums.PriceTierGreen),

		entry("iPhone 7 Plus", apple, "8", "39", enums.PriceTierBlue),
		entry("iPhone 8 Plus", apple, "8", "39", enums.PriceTierBlue),

		entry("iPhone X", apple, "9", "49", enums.PriceTierBlue),
		entry("iPhone XS", apple, "9", "49", enums.PriceTierBlue),
		entry("iPhone XR", apple, "9", "49", enums.PriceTierBlue),

		entry("iPhone 11", apple, "10", "59", enums.PriceTierBlue),
		entry("iPhone 11 Pro", apple, "10", "59", enums.PriceTierBlue),
		entry("iPhone 11 Pro Max", apple, "10", "59", enums.PriceTierBlue),
		entry("iPhone 12", apple, "10", "59", enums.PriceTierBlue),
		entry("iPhone 12 Pro", apple, "10", "59", enums.PriceTierBlue),
		entry("iPhone 12 Pro Max", apple, "10", "59", enums.PriceTierBlue),
		entry("iPhone 13", apple, "10", "59", enums.PriceTierBlue),
		entry("iPhone 13 Pro", apple, "10", "59", enums.PriceTierBlue),

		entry("iPhone 13 Pro Max", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 14", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 14 Plus", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 14 Pro", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 14 Pro Max", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 15", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 15 Plus", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 15 Pro", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 15 Pro Max", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 16", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 16 Plus", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 16 Pro", apple, "12", "79", enums.PriceTierGold),
		entry("iPhone 16 Pro Max", apple, "12", "79", enums.PriceTierGold),

		entry("Samsung Galaxy S24", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy S24+", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy S24 Ultra", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy S23", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy S23+", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy S23 Ultra", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy S22", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy S22+", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy S22 Ultra", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy Note 20", samsung, "12", "79", enums.PriceTierGold),
		entry("Samsung Galaxy Note 20 Ultra", samsung, "12", "79", enums.PriceTierGold),
	}

	fallback := entry(FallbackModelName, enums.ManufacturerOther, "9.99", "49", enums.PriceTierBlue)
	fallback.Selectable = false
	entries = append(entries, fallback)

	return entries
}
