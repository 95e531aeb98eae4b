package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/covercellhq/covercell-backend/internal/catalog"
	"github.com/covercellhq/covercell-backend/internal/pricing"
	"github.com/covercellhq/covercell-backend/pkg/config"
	"github.com/covercellhq/covercell-backend/pkg/enums"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
)

type memoryStore struct {
	sessions map[string][]byte
	claims   map[string]bool
	saveErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: make(map[string][]byte),
		claims:   make(map[string]bool),
	}
}

func (m *memoryStore) Save(_ context.Context, sess *Session, _ time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	m.sessions[sess.ID] = raw
	return nil
}

func (m *memoryStore) Find(_ context.Context, id string) (*Session, error) {
	raw, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	delete(m.claims, id)
	return nil
}

func (m *memoryStore) ClaimSubmit(_ context.Context, id string, _ time.Duration) (bool, error) {
	if m.claims[id] {
		return false, nil
	}
	m.claims[id] = true
	return true, nil
}

func (m *memoryStore) ReleaseSubmit(_ context.Context, id string) error {
	delete(m.claims, id)
	return nil
}

type stubRegistrar struct {
	result SubmissionResult
	err    error
	calls  int
}

func (r *stubRegistrar) Register(_ context.Context, _ *Session) (SubmissionResult, error) {
	r.calls++
	return r.result, r.err
}

func fakeHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newTestService(t *testing.T, store Store, registrar Registrar) *Service {
	t.Helper()
	cat, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	calc := pricing.NewCalculator(cat)
	cfg := config.WizardConfig{SessionTTL: time.Hour, SubmitTTL: 30 * time.Second}
	return NewService(store, cat, calc, registrar, fakeHash, cfg, nil)
}

func codeOf(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	return typed.Code()
}

func deviceInput() DevicePlanInput {
	return DevicePlanInput{
		Model:    "iPhone 15 Pro",
		Plan:     "basic",
		AddOnIDs: []string{"accessories"},
	}
}

func personalInput() PersonalInfoInput {
	return PersonalInfoInput{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Phone:           "555-0100",
		Address:         "1 Analytical Way",
		City:            "London",
		State:           "LN",
		ZipCode:         "12345",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	}
}

// walks a session to the given step, filling each gate along the way.
func sessionAt(t *testing.T, svc *Service, step enums.WizardStep) *Session {
	t.Helper()
	ctx := context.Background()

	sess, err := svc.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if step == enums.WizardStepDevicePlan {
		return sess
	}

	if _, err := svc.SetDevicePlan(ctx, sess.ID, deviceInput()); err != nil {
		t.Fatalf("SetDevicePlan: %v", err)
	}
	sess, err = svc.Advance(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Advance to personal info: %v", err)
	}
	if step == enums.WizardStepPersonalInfo {
		return sess
	}

	if _, err := svc.SetPersonalInfo(ctx, sess.ID, personalInput()); err != nil {
		t.Fatalf("SetPersonalInfo: %v", err)
	}
	sess, err = svc.Advance(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Advance to verification: %v", err)
	}
	if step == enums.WizardStepVerification {
		return sess
	}

	if _, err := svc.AttachPhotos(ctx, sess.ID, "uploads/front.jpg", "uploads/back.jpg"); err != nil {
		t.Fatalf("AttachPhotos: %v", err)
	}
	sess, err = svc.Advance(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Advance to confirmation: %v", err)
	}
	return sess
}

func TestStartOpensAtFirstStep(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})

	sess, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Step != enums.WizardStepDevicePlan {
		t.Errorf("step = %s, want device_plan", sess.Step)
	}
	if sess.ID == "" {
		t.Errorf("missing session id")
	}
	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("session id is not a uuid: %v", err)
	}
}

func TestGetUnknownSession(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})

	_, err := svc.Get(context.Background(), uuid.NewString())
	if codeOf(t, err) != pkgerrors.CodeNotFound {
		t.Errorf("code = %s, want NOT_FOUND", codeOf(t, err))
	}
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err chain should include ErrSessionNotFound")
	}
}

func TestSetDevicePlanComputesQuote(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})
	ctx := context.Background()

	sess, _ := svc.Start(ctx)
	updated, err := svc.SetDevicePlan(ctx, sess.ID, deviceInput())
	if err != nil {
		t.Fatalf("SetDevicePlan: %v", err)
	}
	if updated.Quote == nil {
		t.Fatalf("quote not computed")
	}
	if updated.Quote.MonthlyPrice.String() != "13.99" {
		t.Errorf("monthly = %s, want 13.99", updated.Quote.MonthlyPrice)
	}
	if updated.Device.DeviceType != enums.DeviceTypePhone {
		t.Errorf("device type should default to phone")
	}
}

func TestSetDevicePlanValidation(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})
	ctx := context.Background()
	sess, _ := svc.Start(ctx)

	_, err := svc.SetDevicePlan(ctx, sess.ID, DevicePlanInput{Model: "Nokia 3310", Plan: "basic"})
	if codeOf(t, err) != pkgerrors.CodeValidation {
		t.Errorf("unknown model: code = %s, want VALIDATION_ERROR", codeOf(t, err))
	}

	_, err = svc.SetDevicePlan(ctx, sess.ID, DevicePlanInput{Model: "other", Plan: "basic"})
	if codeOf(t, err) != pkgerrors.CodeValidation {
		t.Errorf("other without custom name: code = %s, want VALIDATION_ERROR", codeOf(t, err))
	}

	updated, err := svc.SetDevicePlan(ctx, sess.ID, DevicePlanInput{
		Model:      "other",
		CustomName: "Pixel 9",
		Plan:       "basic",
	})
	if err != nil {
		t.Fatalf("other with custom name: %v", err)
	}
	if updated.Quote.PlanPrice.String() != "9.99" {
		t.Errorf("fallback plan price = %s, want 9.99", updated.Quote.PlanPrice)
	}
}

func TestAdvanceGatedPerStep(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})
	ctx := context.Background()

	sess, _ := svc.Start(ctx)
	if _, err := svc.Advance(ctx, sess.ID); codeOf(t, err) != pkgerrors.CodeValidation {
		t.Errorf("advance without device: code should be VALIDATION_ERROR")
	}

	sess = sessionAt(t, svc, enums.WizardStepPersonalInfo)
	if _, err := svc.Advance(ctx, sess.ID); codeOf(t, err) != pkgerrors.CodeValidation {
		t.Errorf("advance without personal info: code should be VALIDATION_ERROR")
	}

	sess = sessionAt(t, svc, enums.WizardStepVerification)
	if _, err := svc.Advance(ctx, sess.ID); codeOf(t, err) != pkgerrors.CodeValidation {
		t.Errorf("advance without photos: code should be VALIDATION_ERROR")
	}

	sess = sessionAt(t, svc, enums.WizardStepConfirmation)
	if _, err := svc.Advance(ctx, sess.ID); codeOf(t, err) != pkgerrors.CodeStateConflict {
		t.Errorf("advance past final step: code should be STATE_CONFLICT")
	}
}

func TestGateFailureLeavesSessionUnchanged(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, &stubRegistrar{})
	ctx := context.Background()

	sess, _ := svc.Start(ctx)
	before := string(store.sessions[sess.ID])

	if _, err := svc.Advance(ctx, sess.ID); err == nil {
		t.Fatalf("expected gate failure")
	}
	if string(store.sessions[sess.ID]) != before {
		t.Errorf("rejected transition persisted changes")
	}
}

func TestBackPreservesData(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})
	ctx := context.Background()

	sess := sessionAt(t, svc, enums.WizardStepVerification)

	back, err := svc.Back(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if back.Step != enums.WizardStepPersonalInfo {
		t.Errorf("step = %s, want personal_info", back.Step)
	}
	if back.Personal == nil || back.Personal.Email != "ada@example.com" {
		t.Errorf("personal info lost on Back")
	}
	if back.Device.Model != "iPhone 15 Pro" || back.Quote == nil {
		t.Errorf("device selection lost on Back")
	}

	forward, err := svc.Advance(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Advance after Back: %v", err)
	}
	if forward.Step != enums.WizardStepVerification {
		t.Errorf("step = %s, want verification", forward.Step)
	}
}

func TestBackAtFirstStep(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})
	ctx := context.Background()

	sess, _ := svc.Start(ctx)
	if _, err := svc.Back(ctx, sess.ID); codeOf(t, err) != pkgerrors.CodeStateConflict {
		t.Errorf("back at first step: code should be STATE_CONFLICT")
	}
}

func TestSetPersonalInfoHashesPassword(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})
	ctx := context.Background()

	sess := sessionAt(t, svc, enums.WizardStepPersonalInfo)
	updated, err := svc.SetPersonalInfo(ctx, sess.ID, personalInput())
	if err != nil {
		t.Fatalf("SetPersonalInfo: %v", err)
	}
	if updated.Personal.PasswordHash != "hashed:correct-horse" {
		t.Errorf("password was not hashed")
	}
}

func TestSetPersonalInfoBeforeDeviceStep(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})
	ctx := context.Background()

	sess, _ := svc.Start(ctx)
	_, err := svc.SetPersonalInfo(ctx, sess.ID, personalInput())
	if codeOf(t, err) != pkgerrors.CodeStateConflict {
		t.Errorf("code = %s, want STATE_CONFLICT", codeOf(t, err))
	}
}

func TestSubmitHappyPath(t *testing.T) {
	store := newMemoryStore()
	registrar := &stubRegistrar{result: SubmissionResult{
		UserID:   uuid.New(),
		PolicyID: uuid.New(),
	}}
	svc := newTestService(t, store, registrar)
	ctx := context.Background()

	sess := sessionAt(t, svc, enums.WizardStepConfirmation)
	result, err := svc.Submit(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result != registrar.result {
		t.Errorf("result = %+v, want %+v", result, registrar.result)
	}
	if _, ok := store.sessions[sess.ID]; ok {
		t.Errorf("session should be deleted after successful submission")
	}
	if registrar.calls != 1 {
		t.Errorf("registrar called %d times, want 1", registrar.calls)
	}
}

func TestSubmitOnlyFromConfirmation(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), &stubRegistrar{})
	ctx := context.Background()

	sess := sessionAt(t, svc, enums.WizardStepVerification)
	if _, err := svc.Submit(ctx, sess.ID); codeOf(t, err) != pkgerrors.CodeStateConflict {
		t.Errorf("code = %s, want STATE_CONFLICT", codeOf(t, err))
	}
}

func TestSubmitFailureKeepsSessionAndReleasesClaim(t *testing.T) {
	store := newMemoryStore()
	registrar := &stubRegistrar{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	svc := newTestService(t, store, registrar)
	ctx := context.Background()

	sess := sessionAt(t, svc, enums.WizardStepConfirmation)
	_, err := svc.Submit(ctx, sess.ID)
	if codeOf(t, err) != pkgerrors.CodeConflict {
		t.Fatalf("code = %s, want CONFLICT", codeOf(t, err))
	}

	kept, getErr := svc.Get(ctx, sess.ID)
	if getErr != nil {
		t.Fatalf("session lost after failed submission: %v", getErr)
	}
	if kept.Step != enums.WizardStepConfirmation {
		t.Errorf("step = %s, want confirmation", kept.Step)
	}
	if store.claims[sess.ID] {
		t.Errorf("submission claim not released after failure")
	}

	// A second attempt is allowed once the claim is released.
	registrar.err = nil
	registrar.result = SubmissionResult{UserID: uuid.New(), PolicyID: uuid.New()}
	if _, err := svc.Submit(ctx, sess.ID); err != nil {
		t.Errorf("retry after failure: %v", err)
	}
}

func TestSubmitInFlightClaim(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, &stubRegistrar{result: SubmissionResult{UserID: uuid.New()}})
	ctx := context.Background()

	sess := sessionAt(t, svc, enums.WizardStepConfirmation)
	store.claims[sess.ID] = true

	_, err := svc.Submit(ctx, sess.ID)
	if codeOf(t, err) != pkgerrors.CodeConflict {
		t.Errorf("code = %s, want CONFLICT", codeOf(t, err))
	}
}
