package policies

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/covercellhq/covercell-backend/pkg/db/models"
	"github.com/covercellhq/covercell-backend/pkg/enums"
)

// PolicyDTO is the transport shape of a policy.
type PolicyDTO struct {
	ID               uuid.UUID          `json:"id"`
	UserID           uuid.UUID          `json:"user_id"`
	DeviceType       enums.DeviceType   `json:"device_type"`
	DeviceModel      string             `json:"device_model"`
	CustomDeviceName *string            `json:"custom_device_name,omitempty"`
	Manufacturer     enums.Manufacturer `json:"manufacturer"`
	Plan             enums.PlanID       `json:"plan"`
	AddOnIDs         []string           `json:"add_on_ids"`
	MonthlyPrice     decimal.Decimal    `json:"monthly_price"`
	Deductible       decimal.Decimal    `json:"deductible"`
	Tier             enums.PriceTier    `json:"tier"`
	PurchaseDate     *time.Time         `json:"purchase_date,omitempty"`
	FrontImagePath   *string            `json:"front_image_path,omitempty"`
	BackImagePath    *string            `json:"back_image_path,omitempty"`
	Status           enums.PolicyStatus `json:"status"`
	TrialEndsAt      time.Time          `json:"trial_ends_at"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// CreatePolicyDTO holds the data required by the repo to persist a new policy.
type CreatePolicyDTO struct {
	UserID           uuid.UUID
	DeviceType       enums.DeviceType
	DeviceModel      string
	CustomDeviceName *string
	Manufacturer     enums.Manufacturer
	Plan             enums.PlanID
	AddOnIDs         []string
	MonthlyPrice     decimal.Decimal
	Deductible       decimal.Decimal
	Tier             enums.PriceTier
	PurchaseDate     *time.Time
	FrontImagePath   *string
	BackImagePath    *string
	TrialEndsAt      time.Time
}

func FromModel(p *models.Policy) *PolicyDTO {
	if p == nil {
		return nil
	}

	return &PolicyDTO{
		ID:               p.ID,
		UserID:           p.UserID,
		DeviceType:       p.DeviceType,
		DeviceModel:      p.DeviceModel,
		CustomDeviceName: p.CustomDeviceName,
		Manufacturer:     p.Manufacturer,
		Plan:             p.Plan,
		AddOnIDs:         append([]string(nil), p.AddOnIDs...),
		MonthlyPrice:     p.MonthlyPrice,
		Deductible:       p.Deductible,
		Tier:             p.Tier,
		PurchaseDate:     p.PurchaseDate,
		FrontImagePath:   p.FrontImagePath,
		BackImagePath:    p.BackImagePath,
		Status:           p.Status,
		TrialEndsAt:      p.TrialEndsAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (c CreatePolicyDTO) ToModel() *models.Policy {
	addOns := c.AddOnIDs
	if addOns == nil {
		addOns = []string{}
	} else {
		addOns = append([]string(nil), addOns...)
	}

	return &models.Policy{
		UserID:           c.UserID,
		DeviceType:       c.DeviceType,
		DeviceModel:      c.DeviceModel,
		CustomDeviceName: c.CustomDeviceName,
		Manufacturer:     c.Manufacturer,
		Plan:             c.Plan,
		AddOnIDs:         pq.StringArray(addOns),
		MonthlyPrice:     c.MonthlyPrice,
		Deductible:       c.Deductible,
		Tier:             c.Tier,
		PurchaseDate:     c.PurchaseDate,
		FrontImagePath:   c.FrontImagePath,
		BackImagePath:    c.BackImagePath,
		Status:           enums.PolicyStatusTrial,
		TrialEndsAt:      c.TrialEndsAt,
	}
}
