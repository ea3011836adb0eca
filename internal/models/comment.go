package models

import (
	"time"
)

// MaxCommentDepth is the deepest reply level a discussion may reach.
// A root comment sits at depth 0; replying to a comment at this depth fails.
const MaxCommentDepth = 10

// PathSegmentWidth is the zero-padded width of one id segment in Path.
// Lexicographic ordering of Path matches numeric id order only while ids
// stay below 10^PathSegmentWidth (999999). Known limitation.
const PathSegmentWidth = 6

type Comment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	DiscussionID uint       `gorm:"not null;index" json:"discussion_id"`
	Discussion   Discussion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID     *uint      `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Depth        int        `gorm:"not null;default:0" json:"depth"`
	Path         string     `gorm:"size:128;index" json:"path"` // dot-joined zero-padded ancestor ids, ending with own id
	Content      string     `gorm:"type:text;not null" json:"content"`
	Spoiler      bool       `gorm:"default:false" json:"spoiler"`
	IsDeleted    bool       `gorm:"default:false" json:"is_deleted"`
	Votes        []Vote     `gorm:"foreignKey:CommentID" json:"-"`
	Reactions    []Reaction `gorm:"foreignKey:CommentID" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
