package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/cafemenu/cafemenu-backend/api/middleware"
	"github.com/cafemenu/cafemenu-backend/api/responses"
	"github.com/cafemenu/cafemenu-backend/api/validators"
	itemsvc "github.com/cafemenu/cafemenu-backend/internal/menuitems"
	pkgerrors "github.com/cafemenu/cafemenu-backend/pkg/errors"
	"github.com/cafemenu/cafemenu-backend/pkg/logger"
)

// ListMenuItems returns menu items filtered by the optional categoryId and
// placeId query parameters, AND-combined.
func ListMenuItems(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu item service unavailable"))
			return
		}

		categoryID, err := validators.ParseOptionalQueryInt64(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		placeID, err := validators.ParseOptionalQueryInt64(r, "placeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), categoryID, placeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// ListMenuItemsByCategory is the path-parameter variant of the category
// filter, kept for client compatibility.
func ListMenuItemsByCategory(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu item service unavailable"))
			return
		}

		categoryID, err := validators.ParsePathID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		placeID, err := validators.ParseOptionalQueryInt64(r, "placeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), &categoryID, placeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

func GetMenuItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu item service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		placeID, err := validators.ParseOptionalQueryInt64(r, "placeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetByID(r.Context(), id, placeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

func CreateMenuItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu item service unavailable"))
			return
		}

		var payload menuItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), middleware.ActorFromContext(r.Context()), payload.toCreateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func UpdateMenuItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu item service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload menuItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, payload.toUpdateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

func DeleteMenuItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu item service unavailable"))
			return
		}

		id, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type menuItemRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Image       string          `json:"image" validate:"max=2000"`
	Description string          `json:"description" validate:"max=1000"`
	CategoryID  int64           `json:"categoryId" validate:"required,gt=0"`
	PlaceID     int64           `json:"placeId" validate:"required,gt=0"`
	Photos      []string        `json:"photos" validate:"omitempty,max=10,dive,max=2000"`
}

func (m menuItemRequest) toCreateInput() itemsvc.CreateMenuItemInput {
	return itemsvc.CreateMenuItemInput{
		Name:        validators.SanitizeString(m.Name, 100),
		Price:       m.Price,
		Image:       m.Image,
		Description: m.Description,
		CategoryID:  m.CategoryID,
		PlaceID:     m.PlaceID,
		Photos:      m.Photos,
	}
}

func (m menuItemRequest) toUpdateInput() itemsvc.UpdateMenuItemInput {
	return itemsvc.UpdateMenuItemInput{
		Name:        validators.SanitizeString(m.Name, 100),
		Price:       m.Price,
		Image:       m.Image,
		Description: m.Description,
		CategoryID:  m.CategoryID,
		PlaceID:     m.PlaceID,
		Photos:      m.Photos,
	}
}
