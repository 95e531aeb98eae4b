package models

import (
	"time"

	"github.com/covercellhq/covercell-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Policy is the persisted protection policy created when a wizard session is
// submitted. Pricing columns are snapshots of the quote at submission time.
type Policy struct {
	ID               uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	DeviceType       enums.DeviceType   `gorm:"column:device_type;not null"`
	DeviceModel      string             `gorm:"column:device_model;not null"`
	CustomDeviceName *string            `gorm:"column:custom_device_name"`
	Manufacturer     enums.Manufacturer `gorm:"column:manufacturer;not null"`
	Plan             enums.PlanID       `gorm:"column:plan;not null"`
	AddOnIDs         pq.StringArray     `gorm:"column:addon_ids;type:text[];not null;default:ARRAY[]::text[]"`
	MonthlyPrice     decimal.Decimal    `gorm:"column:monthly_price;type:numeric(10,2);not null"`
	Deductible       decimal.Decimal    `gorm:"column:deductible;type:numeric(10,2);not null"`
	Tier             enums.PriceTier    `gorm:"column:tier;not null"`
	PurchaseDate     *time.Time         `gorm:"column:purchase_date"`
	FrontImagePath   *string            `gorm:"column:front_image_path"`
	BackImagePath    *string            `gorm:"column:back_image_path"`
	Status           enums.PolicyStatus `gorm:"column:status;not null;default:trial"`
	TrialEndsAt      time.Time          `gorm:"column:trial_ends_at;not null"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
