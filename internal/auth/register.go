package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/covercellhq/covercell-backend/internal/catalog"
	"github.com/covercellhq/covercell-backend/internal/policies"
	"github.com/covercellhq/covercell-backend/internal/users"
	"github.com/covercellhq/covercell-backend/internal/wizard"
	pkgdb "github.com/covercellhq/covercell-backend/pkg/db"
	"github.com/covercellhq/covercell-backend/pkg/db/models"
	"github.com/covercellhq/covercell-backend/pkg/enums"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
)

const purchaseDateLayout = "2006-01-02"

// RegisterService turns a completed wizard session into a user and a policy
// inside one transaction. It satisfies wizard.Registrar.
type RegisterService struct {
	db      txRunner
	catalog *catalog.Catalog
	repos   repoFactory
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userTxRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type policyTxRepository interface {
	Create(ctx context.Context, dto policies.CreatePolicyDTO) (*models.Policy, error)
}

type repoFactory func(tx *gorm.DB) (userTxRepository, policyTxRepository)

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB      txRunner
	Catalog *catalog.Catalog
	Repos   repoFactory
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (*RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog required")
	}
	repos := params.Repos
	if repos == nil {
		repos = func(tx *gorm.DB) (userTxRepository, policyTxRepository) {
			return users.NewRepository(tx), policies.NewRepository(tx)
		}
	}
	return &RegisterService{
		db:      params.DB,
		catalog: params.Catalog,
		repos:   repos,
	}, nil
}

// Register persists the user and policy captured by the wizard session.
func (s *RegisterService) Register(ctx context.Context, sess *wizard.Session) (wizard.SubmissionResult, error) {
	if sess == nil || sess.Personal == nil || sess.Quote == nil || sess.Photos == nil {
		return wizard.SubmissionResult{}, pkgerrors.New(pkgerrors.CodeValidation, "session is incomplete")
	}

	email := strings.ToLower(strings.TrimSpace(sess.Personal.Email))
	if email == "" {
		return wizard.SubmissionResult{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	entry, err := s.catalog.PricingFor(sess.Device.Model)
	if err != nil {
		return wizard.SubmissionResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "resolve device")
	}

	var purchaseDate *time.Time
	if sess.Device.PurchaseDate != "" {
		parsed, err := time.Parse(purchaseDateLayout, sess.Device.PurchaseDate)
		if err != nil {
			return wizard.SubmissionResult{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid purchase date")
		}
		purchaseDate = &parsed
	}

	var customName *string
	if sess.Device.Model == catalog.OtherDeviceModel {
		name := sess.Device.CustomName
		customName = &name
	}

	var result wizard.SubmissionResult
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo, policyRepo := s.repos(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: sess.Personal.PasswordHash,
			FirstName:    sess.Personal.FirstName,
			LastName:     sess.Personal.LastName,
			Phone:        strPtr(sess.Personal.Phone),
			Address:      strPtr(sess.Personal.Address),
			City:         strPtr(sess.Personal.City),
			State:        strPtr(sess.Personal.State),
			ZipCode:      strPtr(sess.Personal.ZipCode),
			Role:         enums.MemberRoleCustomer,
		})
		if err != nil {
			if pkgdb.IsUniqueViolation(err, "users_email_key") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		policy, err := policyRepo.Create(ctx, policies.CreatePolicyDTO{
			UserID:           user.ID,
			DeviceType:       sess.Device.DeviceType,
			DeviceModel:      sess.Device.Model,
			CustomDeviceName: customName,
			Manufacturer:     entry.Manufacturer,
			Plan:             sess.Device.Plan,
			AddOnIDs:         sess.Device.AddOnIDs,
			MonthlyPrice:     sess.Quote.MonthlyPrice,
			Deductible:       sess.Quote.Deductible,
			Tier:             sess.Quote.Tier,
			PurchaseDate:     purchaseDate,
			FrontImagePath:   strPtr(sess.Photos.FrontPath),
			BackImagePath:    strPtr(sess.Photos.BackPath),
			TrialEndsAt:      time.Now().UTC().AddDate(0, 0, catalog.TrialDays),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create policy")
		}

		result = wizard.SubmissionResult{
			UserID:   user.ID,
			PolicyID: policy.ID,
		}
		return nil
	})
	if err != nil {
		return wizard.SubmissionResult{}, err
	}
	return result, nil
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
