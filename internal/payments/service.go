package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/covercellhq/covercell-backend/pkg/db/models"
	"github.com/covercellhq/covercell-backend/pkg/enums"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
	"github.com/covercellhq/covercell-backend/pkg/logger"
)

// Service defines the behavior needed by the payments controller.
type Service interface {
	CreatePayment(ctx context.Context, userID uuid.UUID, req CreatePaymentRequest) (*CreatePaymentResponse, error)
	ListPayments(ctx context.Context, userID uuid.UUID) ([]PaymentDTO, error)
}

type paymentRepository interface {
	Create(ctx context.Context, dto CreatePaymentDTO) (*models.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
}

type service struct {
	repo   paymentRepository
	stripe StripePaymentClient
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build a payment service.
type ServiceParams struct {
	Repo   paymentRepository
	Stripe StripePaymentClient
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService constructs a payment service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository is required")
	}
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe client is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   params.Repo,
		stripe: params.Stripe,
		logg:   params.Logger,
		now:    now,
	}, nil
}

// CreatePayment tokenizes the card, creates and confirms a payment intent,
// and records the attempt. Failed gateway calls are recorded too so support
// can see what the customer tried.
func (s *service) CreatePayment(ctx context.Context, userID uuid.UUID, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if req.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	card, fieldErrors := validateCard(req.CardNumber, req.Expiry, req.CVV, s.now().UTC())
	if len(fieldErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid card details").WithDetails(fieldErrors)
	}

	method, err := s.stripe.CreatePaymentMethod(ctx, &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.number),
			ExpMonth: stripe.Int64(card.expMonth),
			ExpYear:  stripe.Int64(card.expYear),
			CVC:      stripe.String(card.cvv),
		},
		BillingDetails: &stripe.PaymentMethodBillingDetailsParams{
			Name: stripe.String(req.CardholderName),
		},
	})
	if err != nil {
		return s.recordFailure(ctx, userID, req, nil, err)
	}

	intent, err := s.stripe.CreatePaymentIntent(ctx, &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethod:      stripe.String(method.ID),
		Confirm:            stripe.Bool(true),
		ConfirmationMethod: stripe.String(string(stripe.PaymentIntentConfirmationMethodManual)),
	})
	if err != nil {
		return s.recordFailure(ctx, userID, req, &method.ID, err)
	}

	payment, err := s.repo.Create(ctx, CreatePaymentDTO{
		UserID:                userID,
		PolicyID:              req.PolicyID,
		AmountCents:           req.AmountCents,
		StripePaymentMethodID: &method.ID,
		StripePaymentIntentID: &intent.ID,
		Status:                enums.PaymentStatusSucceeded,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
	}

	return &CreatePaymentResponse{
		Success:   true,
		PaymentID: payment.ID,
	}, nil
}

func (s *service) ListPayments(ctx context.Context, userID uuid.UUID) ([]PaymentDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) recordFailure(ctx context.Context, userID uuid.UUID, req CreatePaymentRequest, methodID *string, cause error) (*CreatePaymentResponse, error) {
	message := gatewayMessage(cause)
	if _, err := s.repo.Create(ctx, CreatePaymentDTO{
		UserID:                userID,
		PolicyID:              req.PolicyID,
		AmountCents:           req.AmountCents,
		StripePaymentMethodID: methodID,
		Status:                enums.PaymentStatusFailed,
		FailureMessage:        &message,
	}); err != nil && s.logg != nil {
		s.logg.Error(ctx, "failed to record declined payment", err)
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "payment gateway rejected the charge").
		WithDetails(map[string]string{"message": message})
}

// gatewayMessage extracts the customer-facing message from a Stripe error.
func gatewayMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return "payment could not be processed"
}
