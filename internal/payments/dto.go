package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/covercellhq/covercell-backend/pkg/db/models"
	"github.com/covercellhq/covercell-backend/pkg/enums"
)

// CreatePaymentRequest carries the raw card fields and the charge amount.
// Card data is forwarded to the gateway and never persisted.
type CreatePaymentRequest struct {
	AmountCents    int64      `json:"amount_cents" validate:"required,gt=0"`
	CardNumber     string     `json:"card_number" validate:"required"`
	Expiry         string     `json:"expiry" validate:"required"`
	CVV            string     `json:"cvv" validate:"required"`
	CardholderName string     `json:"cardholder_name" validate:"required,max=200"`
	PolicyID       *uuid.UUID `json:"policy_id,omitempty"`
}

// CreatePaymentResponse reports the outcome of a payment attempt.
type CreatePaymentResponse struct {
	Success   bool      `json:"success"`
	PaymentID uuid.UUID `json:"payment_id"`
	Message   string    `json:"message,omitempty"`
}

// CreatePaymentDTO holds the data required by the repo to persist an attempt.
type CreatePaymentDTO struct {
	UserID                uuid.UUID
	PolicyID              *uuid.UUID
	AmountCents           int64
	Currency              string
	StripePaymentMethodID *string
	StripePaymentIntentID *string
	Status                enums.PaymentStatus
	FailureMessage        *string
}

// PaymentDTO is the transport shape of a persisted payment.
type PaymentDTO struct {
	ID                    uuid.UUID           `json:"id"`
	UserID                uuid.UUID           `json:"user_id"`
	PolicyID              *uuid.UUID          `json:"policy_id,omitempty"`
	AmountCents           int64               `json:"amount_cents"`
	Currency              string              `json:"currency"`
	StripePaymentIntentID *string             `json:"stripe_payment_intent_id,omitempty"`
	Status                enums.PaymentStatus `json:"status"`
	FailureMessage        *string             `json:"failure_message,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
}

func (c CreatePaymentDTO) ToModel() *models.Payment {
	currency := c.Currency
	if currency == "" {
		currency = "usd"
	}
	return &models.Payment{
		UserID:                c.UserID,
		PolicyID:              c.PolicyID,
		AmountCents:           c.AmountCents,
		Currency:              currency,
		StripePaymentMethodID: c.StripePaymentMethodID,
		StripePaymentIntentID: c.StripePaymentIntentID,
		Status:                c.Status,
		FailureMessage:        c.FailureMessage,
	}
}

func FromModel(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:                    p.ID,
		UserID:                p.UserID,
		PolicyID:              p.PolicyID,
		AmountCents:           p.AmountCents,
		Currency:              p.Currency,
		StripePaymentIntentID: p.StripePaymentIntentID,
		Status:                p.Status,
		FailureMessage:        p.FailureMessage,
		CreatedAt:             p.CreatedAt,
	}
}
