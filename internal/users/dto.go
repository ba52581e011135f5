package users

import (
	"time"

	"github.com/cafemenu/cafemenu-backend/internal/places"
	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
)

// UserDTO is the admin account payload returned to clients. The password
// hash never leaves the service layer.
type UserDTO struct {
	ID          int64            `json:"id"`
	Username    string           `json:"username"`
	Role        string           `json:"role"`
	PlaceID     *int64           `json:"placeId"`
	Place       *places.PlaceDTO `json:"place,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	LastLoginAt *time.Time       `json:"lastLoginAt,omitempty"`
}

// NewUserDTO builds a DTO from the persisted model, including the joined
// place when it was preloaded.
func NewUserDTO(user *models.User) *UserDTO {
	dto := &UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Role:        string(user.Role),
		PlaceID:     user.PlaceID,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
	if user.Place != nil {
		dto.Place = places.NewPlaceDTO(user.Place)
	}
	return dto
}

// NewUserDTOs maps a model slice.
func NewUserDTOs(records []models.User) []UserDTO {
	dtos := make([]UserDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *NewUserDTO(&records[i]))
	}
	return dtos
}
