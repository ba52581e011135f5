package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/internal/users"
	pkgAuth "github.com/cafemenu/cafemenu-backend/pkg/auth"
	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
	"github.com/cafemenu/cafemenu-backend/pkg/security"
)

// login messages stay in Persian; existing clients display them verbatim
const (
	failedLoginMessage     = "نام کاربری یا رمز عبور اشتباه است"
	successfulLoginMessage = "ورود با موفقیت انجام شد"
)

// Service exposes login and token verification.
type Service interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Verify(ctx context.Context, token string) (*users.UserDTO, error)
}

type userSource interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) (int64, error)
}

type service struct {
	users  userSource
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// NewService constructs an auth service instance.
func NewService(users userSource, jwtCfg config.JWTConfig) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user source required")
	}
	return &service{users: users, jwtCfg: jwtCfg, now: time.Now}, nil
}

// Login checks the credentials against the stored hash. A failed login is a
// successful call: the result carries success=false and the localized
// message the clients were built against.
func (s *service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &LoginResult{Success: false, Message: failedLoginMessage}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return &LoginResult{Success: false, Message: failedLoginMessage}, nil
	}

	now := s.now().UTC()
	if _, err := s.users.UpdateFields(ctx, user.ID, map[string]any{"last_login_at": now}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording login")
	}
	user.LastLoginAt = &now

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		Role:    user.Role,
		PlaceID: user.PlaceID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}

	return &LoginResult{
		Success: true,
		Message: successfulLoginMessage,
		Token:   token,
		Admin:   users.NewUserDTO(user),
	}, nil
}

// Verify resolves a bearer token to the profile it was minted for. A token
// whose user row no longer exists is invalid.
func (s *service) Verify(ctx context.Context, token string) (*users.UserDTO, error) {
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}

	return users.NewUserDTO(user), nil
}
