package places

import (
	"context"

	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
)

// Repository owns persistence for Place rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListActive returns every place whose active flag is set. The public
// listing filters inactive tenants; direct id lookups do not.
func (r *Repository) ListActive(ctx context.Context) ([]models.Place, error) {
	var records []models.Place
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByID loads a place regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Place, error) {
	var place models.Place
	if err := r.db.WithContext(ctx).First(&place, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

// Exists reports whether a place row exists, active or not.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Place{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new place row.
func (r *Repository) Create(ctx context.Context, place *models.Place) (*models.Place, error) {
	if err := r.db.WithContext(ctx).Create(place).Error; err != nil {
		return nil, err
	}
	return place, nil
}

// UpdateFields applies a column update by id and reports affected rows.
func (r *Repository) UpdateFields(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Place{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
