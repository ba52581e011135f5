package menuitems

import (
	"context"

	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
)

// Repository owns persistence for MenuItem rows.
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

// List returns menu items with the optional category and place filters
// AND-combined.
func (r *Repository) List(ctx context.Context, categoryID, placeID *int64) ([]models.MenuItem, error) {
	query := r.db.WithContext(ctx).Order("id")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if placeID != nil {
		query = query.Where("place_id = ?", *placeID)
	}

	var records []models.MenuItem
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByID loads one menu item. A tenant filter miss and an absent id both
// surface as gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id int64, placeID *int64) (*models.MenuItem, error) {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if placeID != nil {
		query = query.Where("place_id = ?", *placeID)
	}

	var item models.MenuItem
	if err := query.First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Exists reports whether a menu item row exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MenuItem{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new menu item row.
func (r *Repository) Create(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateFields applies a column update by id and reports affected rows.
func (r *Repository) UpdateFields(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MenuItem{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Count reports the number of menu items, optionally scoped to a place.
func (r *Repository) Count(ctx context.Context, placeID *int64) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MenuItem{})
	if placeID != nil {
		query = query.Where("place_id = ?", *placeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAll removes every menu item, optionally scoped to a place, and
// reports affected rows.
func (r *Repository) DeleteAll(ctx context.Context, placeID *int64) (int64, error) {
	query := r.db.WithContext(ctx).Where("1 = 1")
	if placeID != nil {
		query = r.db.WithContext(ctx).Where("place_id = ?", *placeID)
	}
	result := query.Delete(&models.MenuItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete removes a menu item by id and reports affected rows.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
