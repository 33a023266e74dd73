package tasks

import (
	"time"

	"github.com/desertthunder/monthly/internal/services"
	"github.com/desertthunder/monthly/internal/shared"
)

// LikedAtLayout is the fixed format of Spotify's added_at timestamps.
const LikedAtLayout = "2006-01-02T15:04:05Z"

// Item is one liked track.
type Item struct {
	ID      string
	Name    string
	LikedAt time.Time
}

// NewItem normalizes a saved-track record. It fails with a [shared.ParseError] when the timestamp
// is malformed or the track or its id is missing.
func NewItem(raw services.SpotifySavedTrack) (Item, error) {
	if raw.AddedAt == "" {
		return Item{}, &shared.ParseError{Field: "added_at"}
	}
	likedAt, err := time.Parse(LikedAtLayout, raw.AddedAt)
	if err != nil {
		return Item{}, &shared.ParseError{Field: "added_at", Value: raw.AddedAt, Err: err}
	}
	if raw.Track == nil {
		return Item{}, &shared.ParseError{Field: "track"}
	}
	if raw.Track.ID == "" {
		return Item{}, &shared.ParseError{Field: "track.id"}
	}

	return Item{ID: raw.Track.ID, Name: raw.Track.Name, LikedAt: likedAt}, nil
}

// Key returns the name of the playlist this item belongs to under the given time layout.
func (i Item) Key(layout string) string {
	return i.LikedAt.Format(layout)
}
