package models

import "github.com/shopspring/decimal"

// MenuItem is a sellable entry inside a Category. Photos holds the ordered
// secondary image list as a comma-joined string; the codec lives in
// internal/menuitems. A photo URL containing a literal comma corrupts the
// list (known limitation of the storage format).
type MenuItem struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;size:100;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(18,2);not null"`
	Image       string          `gorm:"column:image;not null"`
	Description string          `gorm:"column:description;size:1000"`
	CategoryID  int64           `gorm:"column:category_id;not null"`
	PlaceID     int64           `gorm:"column:place_id;not null"`
	Photos      string          `gorm:"column:photos"`
}
