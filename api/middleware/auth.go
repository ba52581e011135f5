package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/cafemenu/cafemenu-backend/api/responses"
	pkgAuth "github.com/cafemenu/cafemenu-backend/pkg/auth"
	"github.com/cafemenu/cafemenu-backend/pkg/config"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
)

// UserSource loads the account a token was minted for. A token is only valid
// while its user row still exists.
type UserSource interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Auth validates a bearer token when one is present and seeds the request
// context with the actor. Requests without credentials continue anonymously;
// route guards decide whether that is acceptable.
func Auth(cfg config.JWTConfig, users UserSource, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate token"))
				return
			}

			actor := &pkgAuth.Actor{
				UserID:  user.ID,
				Role:    user.Role,
				PlaceID: user.PlaceID,
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				fields := map[string]any{
					"user_id":    actor.UserID,
					"actor_role": string(actor.Role),
				}
				if actor.PlaceID != nil {
					fields["place_id"] = *actor.PlaceID
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects anonymous requests. The legacyOpen switch keeps the
// historical behavior where mutations did not require credentials.
func RequireActor(legacyOpen bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if legacyOpen {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ActorFromContext(r.Context()) == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSystemAdmin restricts a route to system administrators. It never
// honors the legacy open-mutation switch.
func RequireSystemAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if actor == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if !actor.IsSystemAdmin() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "system administrator role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
