package controllers

import (
	"net/http"

	"github.com/cafemenu/cafemenu-backend/api/middleware"
	"github.com/cafemenu/cafemenu-backend/api/responses"
	"github.com/cafemenu/cafemenu-backend/api/validators"
	placesvc "github.com/cafemenu/cafemenu-backend/internal/places"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
)

// ListPlaces returns the active places. Deactivated places stay reachable
// by id but drop out of this list.
func ListPlaces(svc placesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "place service unavailable"))
			return
		}

		places, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, places)
	}
}

func GetPlace(svc placesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "place service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		place, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, place)
	}
}

func CreatePlace(svc placesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "place service unavailable"))
			return
		}

		var payload placeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		place, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), payload.toCreateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, place)
	}
}

func UpdatePlace(svc placesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "place service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		place, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, payload.toUpdateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, place)
	}
}

// DeletePlace soft-deletes: the row stays, is_active flips off.
func DeletePlace(svc placesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "place service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type placeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Address     string `json:"address" validate:"max=200"`
	Phone       string `json:"phone" validate:"max=30"`
	Email       string `json:"email" validate:"omitempty,email,max=100"`
	Logo        string `json:"logo" validate:"max=500"`
	CoverImage  string `json:"coverImage" validate:"max=500"`
}

func (p placeRequest) toCreateInput() placesvc.CreatePlaceInput {
	return placesvc.CreatePlaceInput{
		Name:        validators.SanitizeString(p.Name, 100),
		Description: p.Description,
		Address:     p.Address,
		Phone:       p.Phone,
		Email:       p.Email,
		Logo:        p.Logo,
		CoverImage:  p.CoverImage,
	}
}

func (p placeRequest) toUpdateInput() placesvc.UpdatePlaceInput {
	return placesvc.UpdatePlaceInput{
		Name:        validators.SanitizeString(p.Name, 100),
		Description: p.Description,
		Address:     p.Address,
		Phone:       p.Phone,
		Email:       p.Email,
		Logo:        p.Logo,
		CoverImage:  p.CoverImage,
	}
}
