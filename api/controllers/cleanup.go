package controllers

import (
	"net/http"

	"github.com/cafemenu/cafemenu-backend/api/responses"
	"github.com/cafemenu/cafemenu-backend/api/validators"
	cleanupsvc "github.com/cafemenu/cafemenu-backend/internal/cleanup"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
)

// ResetDatabase wipes catalog data, optionally scoped to one place. Admin
// accounts and places survive the reset.
func ResetDatabase(svc cleanupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cleanup service unavailable"))
			return
		}

		placeID, err := validators.ParseOptionalQueryInt64(r, "placeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResetDatabase(r.Context(), placeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logg.Warn(logg.WithFields(r.Context(), map[string]any{
			"menu_items": result.MenuItems,
			"categories": result.Categories,
			"files":      result.UploadedFiles,
		}), "cleanup.reset.completed")

		responses.WriteSuccess(w, result)
	}
}

func DatabaseStatus(svc cleanupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cleanup service unavailable"))
			return
		}

		placeID, err := validators.ParseOptionalQueryInt64(r, "placeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.DatabaseStatus(r.Context(), placeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}

func MigrateBase64Images(svc cleanupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cleanup service unavailable"))
			return
		}

		placeID, err := validators.ParseOptionalQueryInt64(r, "placeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MigrateBase64Images(r.Context(), placeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func AnalyzeImages(svc cleanupsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cleanup service unavailable"))
			return
		}

		placeID, err := validators.ParseOptionalQueryInt64(r, "placeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		analysis, err := svc.AnalyzeImages(r.Context(), placeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, analysis)
	}
}
