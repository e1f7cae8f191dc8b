package complaints

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rationsetu/rationsetu-backend/pkg/db/models"
	"github.com/rationsetu/rationsetu-backend/pkg/enums"
)

// Repository exposes complaint persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a complaints repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a complaint row.
func (r *Repository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

// FindByID loads a complaint by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.WithContext(ctx).Preload("User").First(&complaint, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

// Save persists the full complaint row.
func (r *Repository) Save(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Save(complaint).Error
}

// ListAll returns every complaint, optionally filtered by status, newest first.
func (r *Repository) ListAll(ctx context.Context, status *enums.ComplaintStatus) ([]models.Complaint, error) {
	q := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var out []models.Complaint
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListForUser returns one user's complaints, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Complaint, error) {
	var out []models.Complaint
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
