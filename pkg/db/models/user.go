package models

import (
	"time"

	"github.com/cafemenu/cafemenu-backend/pkg/enums"
)

// User is an admin account. PlaceID is null for SystemAdmins and required
// for CafeAdmins.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string         `gorm:"column:username;size:50;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;not null"`
	PlaceID      *int64         `gorm:"column:place_id"`
	Place        *Place         `gorm:"foreignKey:PlaceID"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
}
