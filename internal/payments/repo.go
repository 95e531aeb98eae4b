package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/covercellhq/covercell-backend/pkg/db/models"
)

// Repository exposes payment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a payments repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a payment attempt and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreatePaymentDTO) (*models.Payment, error) {
	payment := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// ListByUser returns the user's payment attempts, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
