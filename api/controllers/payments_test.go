package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/covercellhq/covercell-backend/api/middleware"
	"github.com/covercellhq/covercell-backend/internal/payments"
	pkgerrors "github.com/covercellhq/covercell-backend/pkg/errors"
)

type stubPaymentService struct {
	createResp *payments.CreatePaymentResponse
	createErr  error
	lastUser   uuid.UUID
	lastReq    payments.CreatePaymentRequest
	listResp   []payments.PaymentDTO
	listErr    error
}

func (s *stubPaymentService) CreatePayment(_ context.Context, userID uuid.UUID, req payments.CreatePaymentRequest) (*payments.CreatePaymentResponse, error) {
	s.lastUser = userID
	s.lastReq = req
	return s.createResp, s.createErr
}

func (s *stubPaymentService) ListPayments(_ context.Context, userID uuid.UUID) ([]payments.PaymentDTO, error) {
	s.lastUser = userID
	return s.listResp, s.listErr
}

func authedRequest(method, path, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestPaymentCreate(t *testing.T) {
	paymentID := uuid.New()
	svc := &stubPaymentService{
		createResp: &payments.CreatePaymentResponse{Success: true, PaymentID: paymentID},
	}
	handler := PaymentCreate(svc, nil)

	userID := uuid.New()
	body := `{"amount_cents":1299,"card_number":"4242424242424242","expiry":"12/30","cvv":"123","cardholder_name":"Jane Doe"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/payments", body, userID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUser != userID {
		t.Fatalf("expected user %s got %s", userID, svc.lastUser)
	}
	if svc.lastReq.AmountCents != 1299 {
		t.Fatalf("unexpected request %+v", svc.lastReq)
	}
	var envelope struct {
		Data payments.CreatePaymentResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PaymentID != paymentID {
		t.Fatalf("unexpected payment id %s", envelope.Data.PaymentID)
	}
}

func TestPaymentCreateRequiresAuth(t *testing.T) {
	handler := PaymentCreate(&stubPaymentService{}, nil)

	body := `{"amount_cents":1299,"card_number":"4242424242424242","expiry":"12/30","cvv":"123","cardholder_name":"Jane Doe"}`
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestPaymentCreateRejectsMissingFields(t *testing.T) {
	handler := PaymentCreate(&stubPaymentService{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/payments", `{"amount_cents":1299}`, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPaymentCreateGatewayDeclined(t *testing.T) {
	svc := &stubPaymentService{
		createErr: pkgerrors.New(pkgerrors.CodeDependency, "payment gateway rejected the charge"),
	}
	handler := PaymentCreate(svc, nil)

	body := `{"amount_cents":1299,"card_number":"4242424242424242","expiry":"12/30","cvv":"123","cardholder_name":"Jane Doe"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/payments", body, uuid.New()))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestPaymentList(t *testing.T) {
	userID := uuid.New()
	svc := &stubPaymentService{
		listResp: []payments.PaymentDTO{
			{ID: uuid.New(), UserID: userID, AmountCents: 1299, Currency: "usd"},
		},
	}
	handler := PaymentList(svc, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/payments", "", userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Payments []payments.PaymentDTO `json:"payments"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Payments) != 1 {
		t.Fatalf("expected one payment got %d", len(envelope.Data.Payments))
	}
	if svc.lastUser != userID {
		t.Fatalf("expected list for %s got %s", userID, svc.lastUser)
	}
}
