package places

import (
	"time"

	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
)

// PlaceDTO is the tenant payload returned to clients.
type PlaceDTO struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Logo        string     `json:"logo"`
	CoverImage  string     `json:"coverImage"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// NewPlaceDTO builds a DTO from the persisted model.
func NewPlaceDTO(place *models.Place) *PlaceDTO {
	return &PlaceDTO{
		ID:          place.ID,
		Name:        place.Name,
		Description: place.Description,
		Address:     place.Address,
		Phone:       place.Phone,
		Email:       place.Email,
		Logo:        place.Logo,
		CoverImage:  place.CoverImage,
		IsActive:    place.IsActive,
		CreatedAt:   place.CreatedAt,
		UpdatedAt:   place.UpdatedAt,
	}
}

// NewPlaceDTOs maps a model slice.
func NewPlaceDTOs(records []models.Place) []PlaceDTO {
	dtos := make([]PlaceDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *NewPlaceDTO(&records[i]))
	}
	return dtos
}
