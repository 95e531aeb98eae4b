package models

import (
	"time"

	"github.com/covercellhq/covercell-backend/pkg/enums"
	"github.com/google/uuid"
)

// Payment records a single gateway payment attempt, successful or not.
type Payment struct {
	ID                    uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	PolicyID              *uuid.UUID          `gorm:"column:policy_id;type:uuid;index"`
	AmountCents           int64               `gorm:"column:amount_cents;not null"`
	Currency              string              `gorm:"column:currency;not null;default:usd"`
	StripePaymentMethodID *string             `gorm:"column:stripe_payment_method_id"`
	StripePaymentIntentID *string             `gorm:"column:stripe_payment_intent_id"`
	Status                enums.PaymentStatus `gorm:"column:status;not null"`
	FailureMessage        *string             `gorm:"column:failure_message"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
