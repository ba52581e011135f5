package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cafemenu/cafemenu-backend/api/responses"
	"github.com/cafemenu/cafemenu-backend/api/validators"
	authsvc "github.com/cafemenu/cafemenu-backend/internal/auth"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
)

// Login authenticates an admin. Bad credentials are not an HTTP error: the
// response is 200 with success=false, which is what the existing clients
// expect.
func Login(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Username, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !result.Success {
			logg.Warn(logg.WithField(r.Context(), "username", payload.Username), "auth.login.failed")
		}

		responses.WriteJSON(w, http.StatusOK, result)
	}
}

// Verify resolves a bearer token string to the admin profile it belongs to.
// The body is the bare token, either as a JSON string or as plain text.
func Verify(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		token, err := readTokenBody(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Verify(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

func readTokenBody(r *http.Request) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 8*1024))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading request body")
	}

	body := strings.TrimSpace(string(raw))
	if body == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "token required")
	}

	// Tolerate a JSON string body ("ey...") alongside plain text.
	if strings.HasPrefix(body, `"`) {
		var token string
		if err := json.Unmarshal([]byte(body), &token); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid token body")
		}
		body = token
	}
	if body == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "token required")
	}
	return body, nil
}
