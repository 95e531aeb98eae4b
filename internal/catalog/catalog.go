package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/covercellhq/covercell-backend/pkg/enums"
)

var (
	// ErrUnknownDevice is returned for device models without a pricing entry.
	ErrUnknownDevice = errors.New("unknown device model")
	// ErrUnknownPlan is returned for plan ids not in the plan catalog.
	ErrUnknownPlan = errors.New("unknown plan")
	// ErrUnknownAddOn is returned for add-on ids not in the add-on catalog.
	ErrUnknownAddOn = errors.New("unknown add-on")
)

// Catalog is the in-memory product catalog: device pricing entries, plans,
// and add-ons. It is immutable after construction and safe for concurrent use.
type Catalog struct {
	entries   []PricingEntry
	byModel   map[string]PricingEntry
	plans     []Plan
	planByID  map[enums.PlanID]Plan
	addOns    []AddOn
	addOnByID map[string]AddOn
}

// DeviceGroup lists the selectable models for one manufacturer, in catalog
// order, for rendering the device picker.
type DeviceGroup struct {
	Manufacturer enums.Manufacturer `json:"manufacturer"`
	Models       []string           `json:"models"`
}

// New builds the default catalog. It fails if the catalog data is internally
// inconsistent, so a bad edit to the tables is caught at startup rather than
// at quote time.
func New() (*Catalog, error) {
	return build(defaultPricingEntries(), defaultPlans(), defaultAddOns())
}

func build(entries []PricingEntry, plans []Plan, addOns []AddOn) (*Catalog, error) {
	c := &Catalog{
		entries:   entries,
		byModel:   make(map[string]PricingEntry, len(entries)),
		plans:     plans,
		planByID:  make(map[enums.PlanID]Plan, len(plans)),
		addOns:    addOns,
		addOnByID: make(map[string]AddOn, len(addOns)),
	}

	for _, e := range entries {
		if e.Model == "" {
			return nil, errors.New("catalog: pricing entry with empty model")
		}
		if !e.Manufacturer.IsValid() {
			return nil, fmt.Errorf("catalog: pricing entry %q has invalid manufacturer %q", e.Model, e.Manufacturer)
		}
		if !e.Tier.IsValid() {
			return nil, fmt.Errorf("catalog: pricing entry %q has invalid tier %q", e.Model, e.Tier)
		}
		if !e.MonthlyPrice.IsPositive() || !e.Deductible.IsPositive() {
			return nil, fmt.Errorf("catalog: pricing entry %q has non-positive price", e.Model)
		}
		if _, dup := c.byModel[e.Model]; dup {
			return nil, fmt.Errorf("catalog: duplicate pricing entry %q", e.Model)
		}
		c.byModel[e.Model] = e
	}
	if _, ok := c.byModel[FallbackModelName]; !ok {
		return nil, fmt.Errorf("catalog: missing fallback pricing entry %q", FallbackModelName)
	}

	for _, p := range plans {
		if !p.ID.IsValid() {
			return nil, fmt.Errorf("catalog: plan with invalid id %q", p.ID)
		}
		if p.ID == enums.PlanBasic && p.BasePrice != nil {
			return nil, errors.New("catalog: basic plan must derive its price from the device")
		}
		if p.ID != enums.PlanBasic && (p.BasePrice == nil || !p.BasePrice.IsPositive()) {
			return nil, fmt.Errorf("catalog: plan %q requires a positive base price", p.ID)
		}
		if _, dup := c.planByID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate plan %q", p.ID)
		}
		c.planByID[p.ID] = p
	}
	for _, id := range enums.PlanIDs() {
		if _, ok := c.planByID[id]; !ok {
			return nil, fmt.Errorf("catalog: missing plan %q", id)
		}
	}

	for _, a := range addOns {
		if a.ID == "" {
			return nil, errors.New("catalog: add-on with empty id")
		}
		if !a.MonthlyPrice.IsPositive() {
			return nil, fmt.Errorf("catalog: add-on %q has non-positive price", a.ID)
		}
		if _, dup := c.addOnByID[a.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate add-on %q", a.ID)
		}
		c.addOnByID[a.ID] = a
	}

	return c, nil
}

// PricingFor resolves the pricing entry for a device model. The sentinel
// OtherDeviceModel (and any unlisted model when fallback is allowed by the
// caller passing it through) resolves to the fallback entry.
func (c *Catalog) PricingFor(model string) (PricingEntry, error) {
	if model == OtherDeviceModel {
		return c.byModel[FallbackModelName], nil
	}
	e, ok := c.byModel[model]
	if !ok {
		return PricingEntry{}, fmt.Errorf("%w: %q", ErrUnknownDevice, model)
	}
	return e, nil
}

// HasModel reports whether model is a selectable catalog device or the
// OtherDeviceModel sentinel.
func (c *Catalog) HasModel(model string) bool {
	if model == OtherDeviceModel {
		return true
	}
	e, ok := c.byModel[model]
	return ok && e.Selectable
}

// Devices returns the selectable pricing entries in catalog order.
func (c *Catalog) Devices() []PricingEntry {
	out := make([]PricingEntry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Selectable {
			out = append(out, e)
		}
	}
	return out
}

// DeviceGroups partitions the selectable devices by manufacturer for the
// wizard's picker, manufacturers sorted alphabetically.
func (c *Catalog) DeviceGroups() []DeviceGroup {
	grouped := make(map[enums.Manufacturer][]string)
	for _, e := range c.entries {
		if !e.Selectable {
			continue
		}
		grouped[e.Manufacturer] = append(grouped[e.Manufacturer], e.Model)
	}

	makers := make([]enums.Manufacturer, 0, len(grouped))
	for m := range grouped {
		makers = append(makers, m)
	}
	sort.Slice(makers, func(i, j int) bool { return makers[i] < makers[j] })

	out := make([]DeviceGroup, 0, len(makers))
	for _, m := range makers {
		out = append(out, DeviceGroup{Manufacturer: m, Models: grouped[m]})
	}
	return out
}

// PlanByID looks up a plan.
func (c *Catalog) PlanByID(id enums.PlanID) (Plan, error) {
	p, ok := c.planByID[id]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, id)
	}
	return p, nil
}

// Plans returns all plans in display order.
func (c *Catalog) Plans() []Plan {
	return c.plans
}

// AddOnByID looks up an add-on.
func (c *Catalog) AddOnByID(id string) (AddOn, error) {
	a, ok := c.addOnByID[id]
	if !ok {
		return AddOn{}, fmt.Errorf("%w: %q", ErrUnknownAddOn, id)
	}
	return a, nil
}

// AddOns returns all add-ons in display order.
func (c *Catalog) AddOns() []AddOn {
	return c.addOns
}
