package model

import "time"

// Track is a library entry the cast server can be pointed at by id.
type Track struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Title        string    `json:"title"`
	Artist       string    `json:"artist"`
	Album        string    `json:"album"`
	FilePath     string    `json:"-"`            // Local path of the audio file
	CoverArtPath string    `json:"coverArtPath"` // Object key of the cover in the artwork bucket
	Duration     float32   `json:"duration"`     // Duration in seconds
	State        int8      `json:"state"`        // 0=soft deleted, 1=normal
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName keeps the table shared with the library importer.
func (Track) TableName() string {
	return "tracks"
}

// Playable reports whether the track can be handed to the cast server.
func (t *Track) Playable() bool {
	return t != nil && t.State != 0 && t.FilePath != ""
}
