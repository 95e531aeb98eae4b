package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/covercellhq/covercell-backend/api/responses"
	"github.com/covercellhq/covercell-backend/internal/catalog"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
	"github.com/covercellhq/covercell-backend/pkg/logger"
)

// CatalogDevices returns the selectable device models grouped by manufacturer.
func CatalogDevices(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"groups": cat.DeviceGroups(),
			"other":  catalog.OtherDeviceModel,
		})
	}
}

func CatalogPlans(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"plans": cat.Plans()})
	}
}

func CatalogAddOns(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"add_ons": cat.AddOns()})
	}
}

// CatalogPricing resolves the pricing entry for a single model. The "other"
// sentinel resolves to the fallback entry.
func CatalogPricing(cat *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model := chi.URLParam(r, "model")
		entry, err := cat.PricingFor(model)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "unknown device model"))
			return
		}
		responses.WriteSuccess(w, entry)
	}
}
