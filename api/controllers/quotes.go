package controllers

import (
	"errors"
	"net/http"

	"github.com/covercellhq/covercell-backend/api/responses"
	"github.com/covercellhq/covercell-backend/api/validators"
	"github.com/covercellhq/covercell-backend/internal/catalog"
	"github.com/covercellhq/covercell-backend/internal/pricing"
	"github.com/covercellhq/covercell-backend/pkg/enums"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
	"github.com/covercellhq/covercell-backend/pkg/logger"
)

type quoteRequest struct {
	DeviceModel string   `json:"device_model" validate:"required"`
	CustomName  string   `json:"custom_name" validate:"omitempty,max=100"`
	Plan        string   `json:"plan" validate:"required,oneof=basic premium family"`
	AddOnIDs    []string `json:"add_on_ids" validate:"omitempty,dive,min=1"`
}

// QuoteCompute prices a selection without touching any wizard session, for
// the marketing site's live quote widget.
func QuoteCompute(calc *pricing.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := enums.ParsePlanID(body.Plan)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown plan"))
			return
		}

		quote, err := calc.Compute(pricing.Selection{
			DeviceModel: body.DeviceModel,
			CustomName:  body.CustomName,
			Plan:        plan,
			AddOnIDs:    body.AddOnIDs,
		})
		if err != nil {
			switch {
			case errors.Is(err, pricing.ErrIncompleteSelection):
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "selection incomplete"))
			case errors.Is(err, catalog.ErrUnknownDevice), errors.Is(err, catalog.ErrUnknownPlan):
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "unknown selection"))
			default:
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute quote"))
			}
			return
		}

		responses.WriteSuccess(w, quote)
	}
}
