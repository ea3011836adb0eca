package models

import (
	"time"
)

// Discussion is one movie/show discussion thread that comments attach to.
type Discussion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TmdbID    int       `gorm:"index" json:"tmdb_id"`
	MediaType string    `gorm:"size:20" json:"media_type"` // "movie" or "tv"
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
