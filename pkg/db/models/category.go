package models

// Category is a menu section inside one Place.
type Category struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string `gorm:"column:name;size:100;not null"`
	Icon        string `gorm:"column:icon;not null"`
	Description string `gorm:"column:description;size:500"`
	PlaceID     int64  `gorm:"column:place_id;not null"`
}
