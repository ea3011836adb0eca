package models

import (
	"time"
)

// User is the local mirror of an account. Authentication and profile data
// (including avatars) live in the external identity service; only the fields
// comments need for display are kept here.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"not null" json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
