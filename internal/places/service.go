package places

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/pkg/auth"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
)

// Service exposes tenant registry operations.
type Service interface {
	ListActive(ctx context.Context) ([]PlaceDTO, error)
	GetByID(ctx context.Context, id int64) (*PlaceDTO, error)
	Create(ctx context.Context, actor *auth.Actor, input CreatePlaceInput) (*PlaceDTO, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, input UpdatePlaceInput) (*PlaceDTO, error)
	Deactivate(ctx context.Context, actor *auth.Actor, id int64) error
}

// CreatePlaceInput holds the validated payload to create a place.
type CreatePlaceInput struct {
	Name        string
	Description string
	Address     string
	Phone       string
	Email       string
	Logo        string
	CoverImage  string
}

// UpdatePlaceInput replaces every mutable field of a place.
type UpdatePlaceInput struct {
	Name        string
	Description string
	Address     string
	Phone       string
	Email       string
	Logo        string
	CoverImage  string
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	now      func() time.Time
}

// NewService constructs a place service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("place repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, now: time.Now}, nil
}

func (s *service) ListActive(ctx context.Context) ([]PlaceDTO, error) {
	records, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing places")
	}
	return NewPlaceDTOs(records), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*PlaceDTO, error) {
	place, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading place")
	}
	return NewPlaceDTO(place), nil
}

func (s *service) Create(ctx context.Context, actor *auth.Actor, input CreatePlaceInput) (*PlaceDTO, error) {
	if actor != nil && !actor.IsSystemAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only system administrators may create places")
	}

	place := &models.Place{
		Name:        input.Name,
		Description: input.Description,
		Address:     input.Address,
		Phone:       input.Phone,
		Email:       input.Email,
		Logo:        input.Logo,
		CoverImage:  input.CoverImage,
		IsActive:    true,
		CreatedAt:   s.now().UTC(),
	}
	if _, err := s.repo.Create(ctx, place); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating place")
	}
	return NewPlaceDTO(place), nil
}

func (s *service) Update(ctx context.Context, actor *auth.Actor, id int64, input UpdatePlaceInput) (*PlaceDTO, error) {
	if !actor.CanManagePlace(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "place not managed by caller")
	}

	now := s.now().UTC()
	fields := map[string]any{
		"name":        input.Name,
		"description": input.Description,
		"address":     input.Address,
		"phone":       input.Phone,
		"email":       input.Email,
		"logo":        input.Logo,
		"cover_image": input.CoverImage,
		"updated_at":  now,
	}

	if err := s.applyUpdate(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *service) Deactivate(ctx context.Context, actor *auth.Actor, id int64) error {
	if !actor.CanManagePlace(id) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "place not managed by caller")
	}

	fields := map[string]any{
		"is_active":  false,
		"updated_at": s.now().UTC(),
	}
	return s.applyUpdate(ctx, id, fields)
}

// applyUpdate runs the column update inside a transaction. Zero affected rows
// means the row vanished (NotFound) or a concurrent writer got there first
// (Conflict); existence is re-checked to tell the two apart.
func (s *service) applyUpdate(ctx context.Context, id int64, fields map[string]any) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.UpdateFields(ctx, id, fields)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating place")
		}
		if rows == 0 {
			exists, err := txRepo.Exists(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking place")
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, "place not found")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "place was modified concurrently")
		}
		return nil
	})
}
