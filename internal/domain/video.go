package domain

import (
	"time"

	"github.com/google/uuid"
)

// Video represents a videos row: one playable catalog record.
//
// OrderIndex is the record's rank. Ranks over the whole table always form
// the contiguous sequence 0..N-1; every insert and delete preserves that.
//
// NextVideoID is a weak self-reference chaining a suggested follow-up item.
// It carries no ownership, plays no part in rank order, and is nullified
// explicitly when the referenced video is deleted.
type Video struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoLink   string     `json:"video_link"`
	YouTubeID   *string    `json:"youtube_id"`
	NextVideoID *uuid.UUID `json:"next_video_id,omitempty"`
	OrderIndex  int        `json:"order_index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// VideoSummary is the reduced shape returned when resolving a video's next
// pointer for the public player page.
type VideoSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	YouTubeID *string   `json:"youtube_id"`
}

// Summary returns the video's next-pointer summary shape.
func (v *Video) Summary() VideoSummary {
	return VideoSummary{ID: v.ID, Title: v.Title, YouTubeID: v.YouTubeID}
}
