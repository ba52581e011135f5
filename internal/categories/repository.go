package categories

import (
	"context"

	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
)

// itemCountSelect computes the child item count in SQL so list reads stay a
// single query. The subquery form is portable across postgres and sqlite.
const itemCountSelect = "categories.*, (SELECT COUNT(*) FROM menu_items WHERE menu_items.category_id = categories.id) AS item_count"

type categoryRow struct {
	models.Category
	ItemCount int64 `gorm:"column:item_count"`
}

// Repository owns persistence for Category rows.
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

// List returns categories with computed item counts, optionally restricted
// to one tenant.
func (r *Repository) List(ctx context.Context, placeID *int64) ([]categoryRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select(itemCountSelect).
		Order("categories.id")
	if placeID != nil {
		query = query.Where("categories.place_id = ?", *placeID)
	}

	var rows []categoryRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one category with its item count. A tenant filter miss and
// an absent id both surface as gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id int64, placeID *int64) (*categoryRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select(itemCountSelect).
		Where("categories.id = ?", id)
	if placeID != nil {
		query = query.Where("categories.place_id = ?", *placeID)
	}

	var row categoryRow
	if err := query.First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Get loads the bare category row without the computed count. Menu item
// validation uses it to resolve the owning tenant.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Exists reports whether a category row exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new category row. The place reference is deliberately
// not checked here; see the service notes.
func (r *Repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateFields applies a column update by id and reports affected rows.
func (r *Repository) UpdateFields(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Count reports the number of categories, optionally scoped to a place.
func (r *Repository) Count(ctx context.Context, placeID *int64) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if placeID != nil {
		query = query.Where("place_id = ?", *placeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAll removes every category, optionally scoped to a place, and
// reports affected rows. Menu items are deleted separately by the caller.
func (r *Repository) DeleteAll(ctx context.Context, placeID *int64) (int64, error) {
	query := r.db.WithContext(ctx).Where("1 = 1")
	if placeID != nil {
		query = r.db.WithContext(ctx).Where("place_id = ?", *placeID)
	}
	result := query.Delete(&models.Category{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteWithItems removes the category and its menu items. Callers run it
// inside a transaction so the cascade is atomic.
func (r *Repository) DeleteWithItems(ctx context.Context, id int64) (int64, error) {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("category_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
		return 0, err
	}
	result := tx.Where("id = ?", id).Delete(&models.Category{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
