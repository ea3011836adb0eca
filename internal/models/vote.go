package models

import (
	"time"
)

// Vote directions. A user holds at most one live vote per comment; changing
// direction replaces the row instead of adding a second.
const (
	VoteUp   = 1
	VoteDown = -1
)

type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_voter" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_voter;index" json:"user_id"`
	Value     int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
