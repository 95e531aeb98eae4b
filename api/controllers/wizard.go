package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/covercellhq/covercell-backend/api/responses"
	"github.com/covercellhq/covercell-backend/api/validators"
	"github.com/covercellhq/covercell-backend/internal/auth"
	"github.com/covercellhq/covercell-backend/internal/media"
	"github.com/covercellhq/covercell-backend/internal/wizard"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
	"github.com/covercellhq/covercell-backend/pkg/logger"
)

const (
	frontPhotoField = "front"
	backPhotoField  = "back"
)

func wizardSessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionId")
}

// WizardStart opens a fresh onboarding session.
func WizardStart(svc *wizard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Start(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sess)
	}
}

func WizardGet(svc *wizard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Get(r.Context(), wizardSessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sess)
	}
}

// WizardDevicePlan records the device and plan selection and reprices.
func WizardDevicePlan(svc *wizard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body wizard.DevicePlanInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess, err := svc.SetDevicePlan(r.Context(), wizardSessionID(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sess)
	}
}

// WizardPersonalInfo records the applicant details.
func WizardPersonalInfo(svc *wizard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body wizard.PersonalInfoInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess, err := svc.SetPersonalInfo(r.Context(), wizardSessionID(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sess)
	}
}

// WizardPhotos stores the front/back verification photos and attaches them to
// the session.
func WizardPhotos(svc *wizard.Service, store *media.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(2 * store.MaxBytes()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		front, err := saveFormImage(r, store, frontPhotoField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		back, err := saveFormImage(r, store, backPhotoField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.AttachPhotos(r.Context(), wizardSessionID(r), front.Path, back.Path)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"session": sess,
			"photos": map[string]string{
				frontPhotoField: front.URL,
				backPhotoField:  back.URL,
			},
		})
	}
}

func WizardAdvance(svc *wizard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Advance(r.Context(), wizardSessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sess)
	}
}

func WizardBack(svc *wizard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Back(r.Context(), wizardSessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sess)
	}
}

// WizardSubmit finalizes the session and logs the new customer in.
func WizardSubmit(svc *wizard.Service, authSvc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Submit(r.Context(), wizardSessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		login, err := authSvc.IssueSession(r.Context(), result.UserID)
		if err != nil {
			// Registration committed; the customer can still log in manually.
			if logg != nil {
				logg.Error(r.Context(), "post-submit login failed", err)
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

func saveFormImage(r *http.Request, store *media.Store, field string) (*media.Stored, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" photo is required").
			WithDetails(map[string]string{field: "is required"})
	}
	defer file.Close()

	return store.SaveImage(field, media.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
}
