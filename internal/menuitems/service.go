package menuitems

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/pkg/auth"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
)

// Service exposes menu item catalog operations.
type Service interface {
	List(ctx context.Context, categoryID, placeID *int64) ([]MenuItemDTO, error)
	GetByID(ctx context.Context, id int64, placeID *int64) (*MenuItemDTO, error)
	Create(ctx context.Context, actor *auth.Actor, input CreateMenuItemInput) (*MenuItemDTO, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, input UpdateMenuItemInput) (*MenuItemDTO, error)
	Delete(ctx context.Context, actor *auth.Actor, id int64) error
}

// CreateMenuItemInput holds the validated payload to create a menu item.
type CreateMenuItemInput struct {
	Name        string
	Price       decimal.Decimal
	Image       string
	Description string
	CategoryID  int64
	PlaceID     int64
	Photos      []string
}

// UpdateMenuItemInput replaces every mutable field of a menu item.
type UpdateMenuItemInput struct {
	Name        string
	Price       decimal.Decimal
	Image       string
	Description string
	CategoryID  int64
	PlaceID     int64
	Photos      []string
}

type categoryLoader interface {
	Get(ctx context.Context, id int64) (*models.Category, error)
}

type placeChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo       *Repository
	dbClient   *db.Client
	categories categoryLoader
	places     placeChecker
}

// NewService constructs a menu item service instance.
func NewService(repo *Repository, dbClient *db.Client, categories categoryLoader, places placeChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu item repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category loader required")
	}
	if places == nil {
		return nil, fmt.Errorf("place checker required")
	}
	return &service{repo: repo, dbClient: dbClient, categories: categories, places: places}, nil
}

func (s *service) List(ctx context.Context, categoryID, placeID *int64) ([]MenuItemDTO, error) {
	records, err := s.repo.List(ctx, categoryID, placeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing menu items")
	}
	return NewMenuItemDTOs(records), nil
}

func (s *service) GetByID(ctx context.Context, id int64, placeID *int64) (*MenuItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading menu item")
	}
	return NewMenuItemDTO(item), nil
}

// validateReferences enforces the checks menu items perform that categories
// historically do not: both foreign keys must resolve, and the item's tenant
// must match its category's tenant.
func (s *service) validateReferences(ctx context.Context, categoryID, placeID int64) error {
	category, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category")
	}

	exists, err := s.places.Exists(ctx, placeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking place")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "place does not exist")
	}

	if category.PlaceID != placeID {
		return pkgerrors.New(pkgerrors.CodeValidation, "place does not match the category's place")
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor *auth.Actor, input CreateMenuItemInput) (*MenuItemDTO, error) {
	if !actor.CanManagePlace(input.PlaceID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "place not managed by caller")
	}
	if err := s.validateReferences(ctx, input.CategoryID, input.PlaceID); err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		Name:        input.Name,
		Price:       input.Price,
		Image:       input.Image,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		PlaceID:     input.PlaceID,
		Photos:      PhotosToString(input.Photos),
	}
	if _, err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating menu item")
	}
	return NewMenuItemDTO(item), nil
}

func (s *service) Update(ctx context.Context, actor *auth.Actor, id int64, input UpdateMenuItemInput) (*MenuItemDTO, error) {
	existing, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading menu item")
	}
	if !actor.CanManagePlace(existing.PlaceID) || !actor.CanManagePlace(input.PlaceID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "place not managed by caller")
	}
	if err := s.validateReferences(ctx, input.CategoryID, input.PlaceID); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"name":        input.Name,
		"price":       input.Price,
		"image":       input.Image,
		"description": input.Description,
		"category_id": input.CategoryID,
		"place_id":    input.PlaceID,
		"photos":      PhotosToString(input.Photos),
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.UpdateFields(ctx, id, fields)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating menu item")
		}
		if rows == 0 {
			exists, err := txRepo.Exists(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking menu item")
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "menu item was modified concurrently")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id, nil)
}

func (s *service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	existing, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading menu item")
	}
	if !actor.CanManagePlace(existing.PlaceID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "place not managed by caller")
	}

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting menu item")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return nil
}
