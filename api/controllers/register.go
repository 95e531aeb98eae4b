package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/covercellhq/covercell-backend/api/responses"
	"github.com/covercellhq/covercell-backend/api/validators"
	"github.com/covercellhq/covercell-backend/internal/auth"
	"github.com/covercellhq/covercell-backend/internal/media"
	"github.com/covercellhq/covercell-backend/internal/pricing"
	"github.com/covercellhq/covercell-backend/internal/wizard"
	"github.com/covercellhq/covercell-backend/pkg/enums"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
	"github.com/covercellhq/covercell-backend/pkg/logger"
)

// RegisterParams bundles the collaborators of the one-shot registration
// endpoint, which accepts the whole application as a single multipart form
// instead of walking the wizard.
type RegisterParams struct {
	Registrar wizard.Registrar
	Auth      auth.Service
	Calc      *pricing.Calculator
	Media     *media.Store
	Hash      func(string) (string, error)
	Logger    *logger.Logger
}

// AuthRegister creates the user and policy from one multipart submission and
// logs the new customer in.
func AuthRegister(params RegisterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logg := params.Logger
		if params.Registrar == nil || params.Auth == nil || params.Calc == nil || params.Media == nil || params.Hash == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(2 * params.Media.MaxBytes()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		device := wizard.DevicePlanInput{
			DeviceType:   r.FormValue("device_type"),
			Model:        r.FormValue("model"),
			CustomName:   r.FormValue("custom_name"),
			Plan:         r.FormValue("plan"),
			AddOnIDs:     r.Form["add_on_ids"],
			PurchaseDate: r.FormValue("purchase_date"),
		}
		personal := wizard.PersonalInfoInput{
			FirstName:       r.FormValue("first_name"),
			LastName:        r.FormValue("last_name"),
			Email:           r.FormValue("email"),
			Phone:           r.FormValue("phone"),
			Address:         r.FormValue("address"),
			City:            r.FormValue("city"),
			State:           r.FormValue("state"),
			ZipCode:         r.FormValue("zip_code"),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirm_password"),
		}
		if err := validators.ValidateStruct(device); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ValidateStruct(personal); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := enums.ParsePlanID(device.Plan)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown plan"))
			return
		}
		deviceType := enums.DeviceTypePhone
		if device.DeviceType != "" {
			if deviceType, err = enums.ParseDeviceType(device.DeviceType); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown device type"))
				return
			}
		}

		quote, err := params.Calc.Compute(pricing.Selection{
			DeviceModel: device.Model,
			CustomName:  device.CustomName,
			Plan:        plan,
			AddOnIDs:    device.AddOnIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price selection"))
			return
		}

		hashed, err := params.Hash(personal.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password"))
			return
		}

		front, err := saveFormImage(r, params.Media, frontPhotoField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		back, err := saveFormImage(r, params.Media, backPhotoField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now().UTC()
		sess := &wizard.Session{
			ID:   uuid.NewString(),
			Step: enums.WizardStepConfirmation,
			Device: wizard.DeviceSelection{
				DeviceType:   deviceType,
				Model:        device.Model,
				CustomName:   device.CustomName,
				Plan:         plan,
				AddOnIDs:     device.AddOnIDs,
				PurchaseDate: device.PurchaseDate,
			},
			Personal: &wizard.PersonalInfo{
				FirstName:    personal.FirstName,
				LastName:     personal.LastName,
				Email:        personal.Email,
				Phone:        personal.Phone,
				Address:      personal.Address,
				City:         personal.City,
				State:        personal.State,
				ZipCode:      personal.ZipCode,
				PasswordHash: hashed,
			},
			Photos:    &wizard.PhotoSet{FrontPath: front.Path, BackPath: back.Path},
			Quote:     &quote,
			CreatedAt: now,
			UpdatedAt: now,
		}

		result, err := params.Registrar.Register(r.Context(), sess)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		login, err := params.Auth.IssueSession(r.Context(), result.UserID)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "post-register login failed", err)
			}
			responses.WriteSuccessStatus(w, http.StatusCreated, result)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"user_id":       result.UserID,
			"policy_id":     result.PolicyID,
			"access_token":  login.AccessToken,
			"refresh_token": login.RefreshToken,
			"user":          login.User,
		})
	}
}
