package menuitems

import (
	"github.com/shopspring/decimal"

	"github.com/cafemenu/cafemenu-backend/pkg/db/models"
)

func init() {
	// prices serialize as JSON numbers, matching the existing client contract
	decimal.MarshalJSONWithoutQuotes = true
}

// MenuItemDTO is the menu item payload returned to clients. Photos is the
// decoded ordered list; the comma-joined storage form never leaves the
// repository layer.
type MenuItemDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	CategoryID  int64           `json:"categoryId"`
	PlaceID     int64           `json:"placeId"`
	Photos      []string        `json:"photos"`
}

// NewMenuItemDTO builds a DTO from the persisted model.
func NewMenuItemDTO(item *models.MenuItem) *MenuItemDTO {
	return &MenuItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Price:       item.Price,
		Image:       item.Image,
		Description: item.Description,
		CategoryID:  item.CategoryID,
		PlaceID:     item.PlaceID,
		Photos:      StringToPhotos(item.Photos),
	}
}

// NewMenuItemDTOs maps a model slice.
func NewMenuItemDTOs(records []models.MenuItem) []MenuItemDTO {
	dtos := make([]MenuItemDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *NewMenuItemDTO(&records[i]))
	}
	return dtos
}
