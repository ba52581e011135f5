package models

import "time"

// Place represents a tenant: one café/restaurant owning its own menu and
// admin accounts. Rows are never hard-deleted; IsActive=false is the soft
// delete used by the public listing.
type Place struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string     `gorm:"column:name;size:100;not null"`
	Description string     `gorm:"column:description;size:500"`
	Address     string     `gorm:"column:address;size:200"`
	Phone       string     `gorm:"column:phone;size:20"`
	Email       string     `gorm:"column:email;size:100"`
	Logo        string     `gorm:"column:logo"`
	CoverImage  string     `gorm:"column:cover_image"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}
