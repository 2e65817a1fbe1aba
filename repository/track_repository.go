package repository

import (
	"context"
	"errors"
	"fmt"

	"shuttlecast/model"

	"gorm.io/gorm"
)

// ErrTrackNotFound is returned when no live track has the requested id.
var ErrTrackNotFound = errors.New("track not found")

// TrackRepository resolves library tracks for the cast command.
type TrackRepository interface {
	GetTrackByID(ctx context.Context, id int64) (*model.Track, error)
}

// gormTrackRepository implements TrackRepository with GORM.
type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository creates a TrackRepository backed by db.
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

// GetTrackByID skips soft-deleted rows.
func (r *gormTrackRepository) GetTrackByID(ctx context.Context, id int64) (*model.Track, error) {
	var track model.Track
	err := r.db.WithContext(ctx).
		Where("id = ? AND state <> ?", id, 0).
		First(&track).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load track %d: %w", id, err)
	}
	return &track, nil
}
