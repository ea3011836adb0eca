package models

import (
	"time"
)

type ReactionType struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null;unique" json:"name"`
	Emoji    string `gorm:"size:16" json:"emoji"`
	Category string `gorm:"size:32" json:"category"`
}

// Reaction is an emoji-style annotation on a comment. A user may attach several
// distinct reaction types to the same comment, but not the same type twice.
type Reaction struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	CommentID      uint         `gorm:"not null;uniqueIndex:idx_comment_user_reaction" json:"comment_id"`
	UserID         uint         `gorm:"not null;uniqueIndex:idx_comment_user_reaction" json:"user_id"`
	ReactionTypeID uint         `gorm:"not null;uniqueIndex:idx_comment_user_reaction" json:"reaction_type_id"`
	ReactionType   ReactionType `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"reaction_type"`
	CreatedAt      time.Time    `json:"created_at"`
}
