package policies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/covercellhq/covercell-backend/pkg/db/models"
)

// Repository exposes policy persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a policies repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new policy and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreatePolicyDTO) (*models.Policy, error) {
	policy := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		return nil, err
	}
	return policy, nil
}

// FindByID loads a policy by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	if err := r.db.WithContext(ctx).First(&policy, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

// ListByUser returns the user's policies, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Policy, error) {
	var out []models.Policy
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
