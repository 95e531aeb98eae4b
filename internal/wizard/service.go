package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/covercellhq/covercell-backend/internal/catalog"
	"github.com/covercellhq/covercell-backend/internal/pricing"
	"github.com/covercellhq/covercell-backend/pkg/config"
	"github.com/covercellhq/covercell-backend/pkg/enums"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
	"github.com/covercellhq/covercell-backend/pkg/logger"
)

const otherModel = catalog.OtherDeviceModel

// Registrar turns a completed session into a persisted user and policy.
// Implemented by the registration service; injected to keep the wizard free
// of persistence concerns.
type Registrar interface {
	Register(ctx context.Context, sess *Session) (SubmissionResult, error)
}

// SubmissionResult identifies the records created by a successful submission.
type SubmissionResult struct {
	UserID   uuid.UUID `json:"user_id"`
	PolicyID uuid.UUID `json:"policy_id"`
}

// DevicePlanInput carries the device-and-plan step fields.
type DevicePlanInput struct {
	DeviceType   string   `json:"device_type" validate:"omitempty,oneof=phone tablet"`
	Model        string   `json:"model" validate:"required"`
	CustomName   string   `json:"custom_name" validate:"omitempty,max=100"`
	Plan         string   `json:"plan" validate:"required,oneof=basic premium family"`
	AddOnIDs     []string `json:"add_on_ids" validate:"omitempty,dive,min=1"`
	PurchaseDate string   `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
}

// PersonalInfoInput carries the applicant details step fields.
type PersonalInfoInput struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,max=30"`
	Address         string `json:"address" validate:"required,max=200"`
	City            string `json:"city" validate:"required,max=100"`
	State           string `json:"state" validate:"required,max=50"`
	ZipCode         string `json:"zip_code" validate:"required,max=15"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// Service drives the onboarding state machine. All mutations are
// load-modify-save against the store; a rejected transition saves nothing.
type Service struct {
	store     Store
	catalog   *catalog.Catalog
	calc      *pricing.Calculator
	registrar Registrar
	hash      func(string) (string, error)
	logg      *logger.Logger
	ttl       time.Duration
	submitTTL time.Duration
}

// NewService wires the wizard service.
func NewService(
	store Store,
	cat *catalog.Catalog,
	calc *pricing.Calculator,
	registrar Registrar,
	hash func(string) (string, error),
	cfg config.WizardConfig,
	logg *logger.Logger,
) *Service {
	return &Service{
		store:     store,
		catalog:   cat,
		calc:      calc,
		registrar: registrar,
		hash:      hash,
		logg:      logg,
		ttl:       cfg.SessionTTL,
		submitTTL: cfg.SubmitTTL,
	}
}

// Start opens a new session at the first step.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		Step:      enums.WizardStepDevicePlan,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving wizard session")
	}
	return sess, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.find(ctx, id)
}

// SetDevicePlan records the device and plan selection and recomputes the
// quote. Allowed at any step so a customer can go back and re-price.
func (s *Service) SetDevicePlan(ctx context.Context, id string, input DevicePlanInput) (*Session, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	details := map[string]string{}
	if !s.catalog.HasModel(input.Model) {
		details["model"] = "unknown device model"
	}
	if input.Model == otherModel && input.CustomName == "" {
		details["custom_name"] = "custom device name is required for other devices"
	}
	plan, planErr := enums.ParsePlanID(input.Plan)
	if planErr != nil {
		details["plan"] = "unknown plan"
	}
	deviceType := enums.DeviceTypePhone
	if input.DeviceType != "" {
		parsed, typeErr := enums.ParseDeviceType(input.DeviceType)
		if typeErr != nil {
			details["device_type"] = "unknown device type"
		} else {
			deviceType = parsed
		}
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid device selection").WithDetails(details)
	}

	quote, err := s.calc.Compute(pricing.Selection{
		DeviceModel: input.Model,
		CustomName:  input.CustomName,
		Plan:        plan,
		AddOnIDs:    input.AddOnIDs,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "computing quote")
	}

	sess.Device = DeviceSelection{
		DeviceType:   deviceType,
		Model:        input.Model,
		CustomName:   input.CustomName,
		Plan:         plan,
		AddOnIDs:     input.AddOnIDs,
		PurchaseDate: input.PurchaseDate,
	}
	sess.Quote = &quote
	return s.save(ctx, sess)
}

// SetPersonalInfo records the applicant details. The password is hashed here
// so the session never carries it in clear.
func (s *Service) SetPersonalInfo(ctx context.Context, id string, input PersonalInfoInput) (*Session, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step.Index() < enums.WizardStepPersonalInfo.Index() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "complete the device selection first")
	}
	if input.Password != input.ConfirmPassword {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password confirmation does not match").
			WithDetails(map[string]string{"confirm_password": "must match password"})
	}

	hashed, err := s.hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	sess.Personal = &PersonalInfo{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		City:         input.City,
		State:        input.State,
		ZipCode:      input.ZipCode,
		PasswordHash: hashed,
	}
	return s.save(ctx, sess)
}

// AttachPhotos records the staged verification images.
func (s *Service) AttachPhotos(ctx context.Context, id, frontPath, backPath string) (*Session, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step.Index() < enums.WizardStepVerification.Index() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "complete the previous steps first")
	}
	if frontPath == "" || backPath == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "front and back photos are required")
	}
	sess.Photos = &PhotoSet{FrontPath: frontPath, BackPath: backPath}
	return s.save(ctx, sess)
}

// Advance moves one step forward when the current step's gate is satisfied.
func (s *Service) Advance(ctx context.Context, id string) (*Session, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate(sess); err != nil {
		return nil, err
	}
	next, ok := sess.Step.Next()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already at the final step")
	}
	sess.Step = next
	return s.save(ctx, sess)
}

// Back moves one step backward. Entered data is kept.
func (s *Service) Back(ctx context.Context, id string) (*Session, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	prev, ok := sess.Step.Prev()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already at the first step")
	}
	sess.Step = prev
	return s.save(ctx, sess)
}

// Submit finalizes the session. Only one submission may be in flight per
// session; a failed submission releases the claim and leaves the session
// untouched for another attempt.
func (s *Service) Submit(ctx context.Context, id string) (SubmissionResult, error) {
	sess, err := s.find(ctx, id)
	if err != nil {
		return SubmissionResult{}, err
	}
	if sess.Step != enums.WizardStepConfirmation {
		return SubmissionResult{}, pkgerrors.New(pkgerrors.CodeStateConflict, "session is not ready for submission")
	}
	if err := s.gateComplete(sess); err != nil {
		return SubmissionResult{}, err
	}

	claimed, err := s.store.ClaimSubmit(ctx, id, s.submitTTL)
	if err != nil {
		return SubmissionResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claiming submission")
	}
	if !claimed {
		return SubmissionResult{}, pkgerrors.New(pkgerrors.CodeConflict, "submission already in progress")
	}

	result, err := s.registrar.Register(ctx, sess)
	if err != nil {
		if relErr := s.store.ReleaseSubmit(ctx, id); relErr != nil && s.logg != nil {
			s.logg.Warn(ctx, "failed to release submission claim: "+relErr.Error())
		}
		return SubmissionResult{}, err
	}

	if err := s.store.Delete(ctx, id); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to delete submitted wizard session: "+err.Error())
	}
	return result, nil
}

func (s *Service) find(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "wizard session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading wizard session")
	}
	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *Session) (*Session, error) {
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving wizard session")
	}
	return sess, nil
}

// gate validates the current step's completion requirements for Advance.
func (s *Service) gate(sess *Session) error {
	switch sess.Step {
	case enums.WizardStepDevicePlan:
		if !sess.deviceComplete() {
			details := map[string]string{}
			if sess.Device.Model == "" {
				details["model"] = "device model is required"
			}
			if sess.Device.Plan == "" {
				details["plan"] = "plan is required"
			}
			if sess.Device.Model == otherModel && sess.Device.CustomName == "" {
				details["custom_name"] = "custom device name is required"
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "device selection is incomplete").WithDetails(details)
		}
	case enums.WizardStepPersonalInfo:
		if !sess.personalComplete() {
			return pkgerrors.New(pkgerrors.CodeValidation, "personal information is incomplete")
		}
	case enums.WizardStepVerification:
		if !sess.photosComplete() {
			return pkgerrors.New(pkgerrors.CodeValidation, "front and back device photos are required")
		}
	}
	return nil
}

// gateComplete re-checks every step before submission.
func (s *Service) gateComplete(sess *Session) error {
	if !sess.deviceComplete() || sess.Quote == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "device selection is incomplete")
	}
	if !sess.personalComplete() {
		return pkgerrors.New(pkgerrors.CodeValidation, "personal information is incomplete")
	}
	if !sess.photosComplete() {
		return pkgerrors.New(pkgerrors.CodeValidation, "front and back device photos are required")
	}
	return nil
}
