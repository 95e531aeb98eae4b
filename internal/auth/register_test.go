package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/covercellhq/covercell-backend/internal/catalog"
	"github.com/covercellhq/covercell-backend/internal/policies"
	"github.com/covercellhq/covercell-backend/internal/pricing"
	"github.com/covercellhq/covercell-backend/internal/users"
	"github.com/covercellhq/covercell-backend/internal/wizard"
	pkgmodels "github.com/covercellhq/covercell-backend/pkg/db/models"
	"github.com/covercellhq/covercell-backend/pkg/enums"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUserTxRepo struct {
	data      map[string]*pkgmodels.User
	created   *pkgmodels.User
	createErr error
}

func newStubUserTxRepo() *stubUserTxRepo {
	return &stubUserTxRepo{data: map[string]*pkgmodels.User{}}
}

func (s *stubUserTxRepo) FindByEmail(_ context.Context, email string) (*pkgmodels.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserTxRepo) Create(_ context.Context, dto users.CreateUserDTO) (*pkgmodels.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	s.data[dto.Email] = user
	s.created = user
	return user, nil
}

type stubPolicyTxRepo struct {
	created   *pkgmodels.Policy
	createErr error
}

func (s *stubPolicyTxRepo) Create(_ context.Context, dto policies.CreatePolicyDTO) (*pkgmodels.Policy, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	policy := dto.ToModel()
	policy.ID = uuid.New()
	s.created = policy
	return policy, nil
}

func completedSession(t *testing.T, model string) *wizard.Session {
	t.Helper()
	cat, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	calc := pricing.NewCalculator(cat)
	quote, err := calc.Compute(pricing.Selection{
		DeviceModel: model,
		Plan:        enums.PlanBasic,
		AddOnIDs:    []string{"accessories"},
	})
	if err != nil {
		t.Fatalf("compute quote: %v", err)
	}

	return &wizard.Session{
		ID:   uuid.NewString(),
		Step: enums.WizardStepConfirmation,
		Device: wizard.DeviceSelection{
			DeviceType:   enums.DeviceTypePhone,
			Model:        model,
			Plan:         enums.PlanBasic,
			AddOnIDs:     []string{"accessories"},
			PurchaseDate: "2026-05-01",
		},
		Personal: &wizard.PersonalInfo{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Email:        "Ada@Example.com",
			Phone:        "555-0100",
			Address:      "1 Analytical Way",
			City:         "London",
			State:        "LN",
			ZipCode:      "12345",
			PasswordHash: "$argon2id$stub",
		},
		Photos: &wizard.PhotoSet{
			FrontPath: "uploads/front.jpg",
			BackPath:  "uploads/back.jpg",
		},
		Quote: &quote,
	}
}

func buildRegisterService(t *testing.T, userRepo *stubUserTxRepo, policyRepo *stubPolicyTxRepo) *RegisterService {
	t.Helper()
	cat, err := catalog.New()
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:      stubTxRunner{},
		Catalog: cat,
		Repos: func(_ *gorm.DB) (userTxRepository, policyTxRepository) {
			return userRepo, policyRepo
		},
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	return svc
}

func TestRegisterCreatesUserAndPolicy(t *testing.T) {
	userRepo := newStubUserTxRepo()
	policyRepo := &stubPolicyTxRepo{}
	svc := buildRegisterService(t, userRepo, policyRepo)

	sess := completedSession(t, "iPhone 15 Pro")
	result, err := svc.Register(context.Background(), sess)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user := userRepo.created
	if user == nil {
		t.Fatalf("user not created")
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.PasswordHash != "$argon2id$stub" {
		t.Errorf("password hash not carried from session")
	}
	if user.Role != enums.MemberRoleCustomer {
		t.Errorf("role = %s, want customer", user.Role)
	}

	policy := policyRepo.created
	if policy == nil {
		t.Fatalf("policy not created")
	}
	if policy.UserID != user.ID {
		t.Errorf("policy user id mismatch")
	}
	if policy.Manufacturer != enums.ManufacturerApple {
		t.Errorf("manufacturer = %s, want apple", policy.Manufacturer)
	}
	if policy.MonthlyPrice.String() != "13.99" {
		t.Errorf("monthly snapshot = %s, want 13.99", policy.MonthlyPrice)
	}
	if policy.Deductible.String() != "79" {
		t.Errorf("deductible snapshot = %s, want 79", policy.Deductible)
	}
	if policy.Tier != enums.PriceTierGold {
		t.Errorf("tier = %s, want gold", policy.Tier)
	}
	if policy.Status != enums.PolicyStatusTrial {
		t.Errorf("status = %s, want trial", policy.Status)
	}
	if policy.TrialEndsAt.IsZero() {
		t.Errorf("trial end not set")
	}
	if policy.PurchaseDate == nil {
		t.Errorf("purchase date not parsed")
	}
	if policy.CustomDeviceName != nil {
		t.Errorf("custom name should be nil for catalog model")
	}

	if result.UserID != user.ID || result.PolicyID != policy.ID {
		t.Errorf("result ids do not match created records")
	}
}

func TestRegisterOtherDevice(t *testing.T) {
	userRepo := newStubUserTxRepo()
	policyRepo := &stubPolicyTxRepo{}
	svc := buildRegisterService(t, userRepo, policyRepo)

	sess := completedSession(t, catalog.OtherDeviceModel)
	sess.Device.CustomName = "Pixel 9"

	if _, err := svc.Register(context.Background(), sess); err != nil {
		t.Fatalf("register: %v", err)
	}

	policy := policyRepo.created
	if policy.Manufacturer != enums.ManufacturerOther {
		t.Errorf("manufacturer = %s, want other", policy.Manufacturer)
	}
	if policy.CustomDeviceName == nil || *policy.CustomDeviceName != "Pixel 9" {
		t.Errorf("custom name not persisted")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	userRepo := newStubUserTxRepo()
	userRepo.data["ada@example.com"] = &pkgmodels.User{ID: uuid.New(), Email: "ada@example.com"}
	svc := buildRegisterService(t, userRepo, &stubPolicyTxRepo{})

	_, err := svc.Register(context.Background(), completedSession(t, "iPhone 15 Pro"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRegisterIncompleteSession(t *testing.T) {
	svc := buildRegisterService(t, newStubUserTxRepo(), &stubPolicyTxRepo{})

	sess := completedSession(t, "iPhone 15 Pro")
	sess.Personal = nil

	_, err := svc.Register(context.Background(), sess)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestRegisterInvalidPurchaseDate(t *testing.T) {
	svc := buildRegisterService(t, newStubUserTxRepo(), &stubPolicyTxRepo{})

	sess := completedSession(t, "iPhone 15 Pro")
	sess.Device.PurchaseDate = "05/2026"

	_, err := svc.Register(context.Background(), sess)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
