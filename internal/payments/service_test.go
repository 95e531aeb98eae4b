package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/covercellhq/covercell-backend/pkg/db/models"
	"github.com/covercellhq/covercell-backend/pkg/enums"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

type stubPaymentRepo struct {
	created []CreatePaymentDTO
	rows    []models.Payment
}

func (s *stubPaymentRepo) Create(_ context.Context, dto CreatePaymentDTO) (*models.Payment, error) {
	s.created = append(s.created, dto)
	payment := dto.ToModel()
	payment.ID = uuid.New()
	return payment, nil
}

func (s *stubPaymentRepo) ListByUser(_ context.Context, _ uuid.UUID) ([]models.Payment, error) {
	return s.rows, nil
}

type stubStripeClient struct {
	methodErr    error
	intentErr    error
	methodParams *stripe.PaymentMethodParams
	intentParams *stripe.PaymentIntentParams
}

func (s *stubStripeClient) CreatePaymentMethod(_ context.Context, params *stripe.PaymentMethodParams) (*stripe.PaymentMethod, error) {
	s.methodParams = params
	if s.methodErr != nil {
		return nil, s.methodErr
	}
	return &stripe.PaymentMethod{ID: "pm_123"}, nil
}

func (s *stubStripeClient) CreatePaymentIntent(_ context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	s.intentParams = params
	if s.intentErr != nil {
		return nil, s.intentErr
	}
	return &stripe.PaymentIntent{ID: "pi_123"}, nil
}

func buildPaymentService(t *testing.T, repo *stubPaymentRepo, client *stubStripeClient) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Stripe: client,
		Now:    func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func validRequest() CreatePaymentRequest {
	return CreatePaymentRequest{
		AmountCents:    1299,
		CardNumber:     "4242 4242 4242 4242",
		Expiry:         "12/28",
		CVV:            "123",
		CardholderName: "Ada Lovelace",
	}
}

func TestCreatePaymentSuccess(t *testing.T) {
	repo := &stubPaymentRepo{}
	client := &stubStripeClient{}
	svc := buildPaymentService(t, repo, client)
	userID := uuid.New()

	resp, err := svc.CreatePayment(context.Background(), userID, validRequest())
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if !resp.Success || resp.PaymentID == uuid.Nil {
		t.Errorf("unexpected response %+v", resp)
	}

	if *client.methodParams.Card.Number != "4242424242424242" {
		t.Errorf("card number not normalized: %s", *client.methodParams.Card.Number)
	}
	if *client.methodParams.Card.ExpMonth != 12 || *client.methodParams.Card.ExpYear != 2028 {
		t.Errorf("expiry parsed wrong: %d/%d", *client.methodParams.Card.ExpMonth, *client.methodParams.Card.ExpYear)
	}
	if *client.intentParams.Amount != 1299 {
		t.Errorf("intent amount = %d, want 1299", *client.intentParams.Amount)
	}
	if *client.intentParams.Currency != "usd" {
		t.Errorf("currency = %s, want usd", *client.intentParams.Currency)
	}
	if *client.intentParams.ConfirmationMethod != "manual" {
		t.Errorf("confirmation method = %s, want manual", *client.intentParams.ConfirmationMethod)
	}

	if len(repo.created) != 1 {
		t.Fatalf("created %d rows, want 1", len(repo.created))
	}
	row := repo.created[0]
	if row.Status != enums.PaymentStatusSucceeded {
		t.Errorf("status = %s, want succeeded", row.Status)
	}
	if row.UserID != userID || *row.StripePaymentIntentID != "pi_123" {
		t.Errorf("row not linked: %+v", row)
	}
}

func TestCreatePaymentCardValidation(t *testing.T) {
	repo := &stubPaymentRepo{}
	client := &stubStripeClient{}
	svc := buildPaymentService(t, repo, client)
	ctx := context.Background()

	cases := []struct {
		name  string
		mut   func(*CreatePaymentRequest)
		field string
	}{
		{"short number", func(r *CreatePaymentRequest) { r.CardNumber = "4242" }, "card_number"},
		{"non digit number", func(r *CreatePaymentRequest) { r.CardNumber = "4242abcd42424242" }, "card_number"},
		{"bad expiry format", func(r *CreatePaymentRequest) { r.Expiry = "2028-12" }, "expiry"},
		{"expired card", func(r *CreatePaymentRequest) { r.Expiry = "02/26" }, "expiry"},
		{"bad cvv", func(r *CreatePaymentRequest) { r.CVV = "12" }, "cvv"},
	}
	for _, tc := range cases {
		req := validRequest()
		tc.mut(&req)
		_, err := svc.CreatePayment(ctx, uuid.New(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected VALIDATION_ERROR, got %v", tc.name, err)
		}
		fields, ok := typed.Details().(map[string]string)
		if !ok || fields[tc.field] == "" {
			t.Errorf("%s: missing field detail %q in %v", tc.name, tc.field, typed.Details())
		}
	}

	if len(repo.created) != 0 {
		t.Errorf("validation failures should not persist rows, got %d", len(repo.created))
	}
	if client.methodParams != nil {
		t.Errorf("validation failures should not reach the gateway")
	}
}

func TestCreatePaymentExpiryEdgeOfMonth(t *testing.T) {
	repo := &stubPaymentRepo{}
	svc := buildPaymentService(t, repo, &stubStripeClient{})

	// testNow is March 2026; a card expiring 03/26 is still valid.
	req := validRequest()
	req.Expiry = "03/26"
	if _, err := svc.CreatePayment(context.Background(), uuid.New(), req); err != nil {
		t.Fatalf("current month expiry should be accepted: %v", err)
	}
}

func TestCreatePaymentGatewayDeclineRecordsFailure(t *testing.T) {
	repo := &stubPaymentRepo{}
	client := &stubStripeClient{
		intentErr: &stripe.Error{Msg: "Your card was declined."},
	}
	svc := buildPaymentService(t, repo, client)
	userID := uuid.New()

	_, err := svc.CreatePayment(context.Background(), userID, validRequest())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("declined attempt not recorded")
	}
	row := repo.created[0]
	if row.Status != enums.PaymentStatusFailed {
		t.Errorf("status = %s, want failed", row.Status)
	}
	if row.FailureMessage == nil || *row.FailureMessage != "Your card was declined." {
		t.Errorf("failure message = %v", row.FailureMessage)
	}
	if row.StripePaymentMethodID == nil || *row.StripePaymentMethodID != "pm_123" {
		t.Errorf("method id should be kept when tokenization succeeded")
	}
}

func TestCreatePaymentTokenizationFailure(t *testing.T) {
	repo := &stubPaymentRepo{}
	client := &stubStripeClient{
		methodErr: &stripe.Error{Msg: "Invalid card."},
	}
	svc := buildPaymentService(t, repo, client)

	_, err := svc.CreatePayment(context.Background(), uuid.New(), validRequest())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
	if len(repo.created) != 1 || repo.created[0].StripePaymentMethodID != nil {
		t.Errorf("failed tokenization should record a row without a method id")
	}
	if client.intentParams != nil {
		t.Errorf("intent should not be attempted after tokenization failure")
	}
}

func TestListPayments(t *testing.T) {
	repo := &stubPaymentRepo{rows: []models.Payment{
		{ID: uuid.New(), AmountCents: 1299, Status: enums.PaymentStatusSucceeded, Currency: "usd"},
		{ID: uuid.New(), AmountCents: 1299, Status: enums.PaymentStatusFailed, Currency: "usd"},
	}}
	svc := buildPaymentService(t, repo, &stubStripeClient{})

	out, err := svc.ListPayments(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %d payments, want 2", len(out))
	}
}
