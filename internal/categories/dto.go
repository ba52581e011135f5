package categories

// CategoryDTO is the category payload returned to clients. ItemCount is
// computed on reads and never persisted.
type CategoryDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	PlaceID     int64  `json:"placeId"`
	ItemCount   int64  `json:"itemCount"`
}

func newCategoryDTO(row *categoryRow) *CategoryDTO {
	return &CategoryDTO{
		ID:          row.ID,
		Name:        row.Name,
		Icon:        row.Icon,
		Description: row.Description,
		PlaceID:     row.PlaceID,
		ItemCount:   row.ItemCount,
	}
}

func newCategoryDTOs(rows []categoryRow) []CategoryDTO {
	dtos := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *newCategoryDTO(&rows[i]))
	}
	return dtos
}
