package categories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/pkg/auth"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
)

// Service exposes category catalog operations.
type Service interface {
	List(ctx context.Context, placeID *int64) ([]CategoryDTO, error)
	GetByID(ctx context.Context, id int64, placeID *int64) (*CategoryDTO, error)
	Create(ctx context.Context, actor *auth.Actor, input CreateCategoryInput) (*CategoryDTO, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, input UpdateCategoryInput) (*CategoryDTO, error)
	Delete(ctx context.Context, actor *auth.Actor, id int64) error
}

// CreateCategoryInput holds the validated payload to create a category.
// PlaceID is accepted as-is: the historical contract inserts without
// checking the tenant registry, and clients depend on that.
type CreateCategoryInput struct {
	Name        string
	Icon        string
	Description string
	PlaceID     int64
}

// UpdateCategoryInput replaces every mutable field of a category.
type UpdateCategoryInput struct {
	Name        string
	Icon        string
	Description string
	PlaceID     int64
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a category service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) List(ctx context.Context, placeID *int64) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx, placeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing categories")
	}
	return newCategoryDTOs(rows), nil
}

func (s *service) GetByID(ctx context.Context, id int64, placeID *int64) (*CategoryDTO, error) {
	row, err := s.repo.FindByID(ctx, id, placeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// same answer for a missing id and a tenant-filtered miss
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading category")
	}
	return newCategoryDTO(row), nil
}

func (s *service) Create(ctx context.Context, actor *auth.Actor, input CreateCategoryInput) (*CategoryDTO, error) {
	if !actor.CanManagePlace(input.PlaceID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "place not managed by caller")
	}

	category := &models.Category{
		Name:        input.Name,
		Icon:        input.Icon,
		Description: input.Description,
		PlaceID:     input.PlaceID,
	}
	if _, err := s.repo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating category")
	}
	return s.GetByID(ctx, category.ID, nil)
}

func (s *service) Update(ctx context.Context, actor *auth.Actor, id int64, input UpdateCategoryInput) (*CategoryDTO, error) {
	existing, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading category")
	}
	if !actor.CanManagePlace(existing.PlaceID) || !actor.CanManagePlace(input.PlaceID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "place not managed by caller")
	}

	fields := map[string]any{
		"name":        input.Name,
		"icon":        input.Icon,
		"description": input.Description,
		"place_id":    input.PlaceID,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.UpdateFields(ctx, id, fields)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating category")
		}
		if rows == 0 {
			exists, err := txRepo.Exists(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category")
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "category was modified concurrently")
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
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading category")
	}
	if !actor.CanManagePlace(existing.PlaceID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "place not managed by caller")
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).DeleteWithItems(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting category")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil
	})
}
