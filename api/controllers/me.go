package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/covercellhq/covercell-backend/api/responses"
	"github.com/covercellhq/covercell-backend/internal/policies"
	"github.com/covercellhq/covercell-backend/internal/users"
	"github.com/covercellhq/covercell-backend/pkg/db/models"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
	"github.com/covercellhq/covercell-backend/pkg/logger"
)

type meUserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type mePolicyLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Policy, error)
}

// Me returns the authenticated customer's profile and policies, the payload
// the SPA persists locally after login.
func Me(userRepo meUserFinder, policyRepo mePolicyLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := userRepo.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user"))
			return
		}

		rows, err := policyRepo.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list policies"))
			return
		}

		out := make([]policies.PolicyDTO, 0, len(rows))
		for i := range rows {
			out = append(out, *policies.FromModel(&rows[i]))
		}

		responses.WriteSuccess(w, map[string]any{
			"user":     users.FromModel(user),
			"policies": out,
		})
	}
}
