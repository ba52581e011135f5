package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/db"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	"github.com/cafemenu/cafemenu-backend/pkg/enums"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
	"github.com/cafemenu/cafemenu-backend/pkg/security"
)

// Service exposes admin account management. Route guards restrict every
// operation here to system administrators.
type Service interface {
	List(ctx context.Context, roleFilter *string, placeID *int64) ([]UserDTO, error)
	GetByID(ctx context.Context, id int64) (*UserDTO, error)
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, id int64) error
}

// CreateUserInput holds the validated payload to create an admin account.
type CreateUserInput struct {
	Username string
	Password string
	Role     string
	PlaceID  *int64
}

// UpdateUserInput replaces the account fields; a nil Password keeps the
// stored hash.
type UpdateUserInput struct {
	Username string
	Password *string
	Role     string
	PlaceID  *int64
}

type placeChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	places      placeChecker
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs a user service instance.
func NewService(repo *Repository, dbClient *db.Client, places placeChecker, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if places == nil {
		return nil, fmt.Errorf("place checker required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		places:      places,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

func (s *service) List(ctx context.Context, roleFilter *string, placeID *int64) ([]UserDTO, error) {
	var role *enums.UserRole
	if roleFilter != nil && *roleFilter != "" {
		parsed, err := enums.ParseUserRole(*roleFilter)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
		}
		role = &parsed
	}

	records, err := s.repo.List(ctx, role, placeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing users")
	}
	return NewUserDTOs(records), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	return NewUserDTO(user), nil
}

// normalizeRoleAndPlace applies the account rules: the role must parse, a
// CafeAdmin needs a tenant, and a SystemAdmin never keeps one (the supplied
// value is silently dropped, matching the historical behavior).
func (s *service) normalizeRoleAndPlace(ctx context.Context, roleRaw string, placeID *int64) (enums.UserRole, *int64, error) {
	role, err := enums.ParseUserRole(roleRaw)
	if err != nil {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}

	switch role {
	case enums.RoleSystemAdmin:
		placeID = nil
	case enums.RoleCafeAdmin:
		if placeID == nil {
			return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "a cafe admin requires a place")
		}
	}

	if placeID != nil {
		exists, err := s.places.Exists(ctx, *placeID)
		if err != nil {
			return "", nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking place")
		}
		if !exists {
			return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "place does not exist")
		}
	}

	return role, placeID, nil
}

func (s *service) ensureUsernameFree(ctx context.Context, username string, excludeID int64) error {
	taken, err := s.repo.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking username")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, "username already in use")
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	role, placeID, err := s.normalizeRoleAndPlace(ctx, input.Role, input.PlaceID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, input.Username, 0); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         role,
		PlaceID:      placeID,
		CreatedAt:    s.now().UTC(),
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating user")
	}
	return s.GetByID(ctx, user.ID)
}

func (s *service) Update(ctx context.Context, id int64, input UpdateUserInput) (*UserDTO, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}

	role, placeID, err := s.normalizeRoleAndPlace(ctx, input.Role, input.PlaceID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, input.Username, id); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"username": input.Username,
		"role":     string(role),
		"place_id": placeID,
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
		}
		fields["password_hash"] = hash
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.UpdateFields(ctx, id, fields)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating user")
		}
		if rows == 0 {
			exists, err := txRepo.Exists(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking user")
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "user was modified concurrently")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting user")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
