package model

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceYouTube SourceType = "youtube"
	SourceBlog    SourceType = "blog"
	SourcePDF     SourceType = "pdf"
)

// Source is one piece of material a study session was generated from.
type Source struct {
	Type    SourceType `json:"type" validate:"required,oneof=youtube blog pdf"`
	URL     string     `json:"url,omitempty" validate:"omitempty,url"`
	VideoID string     `json:"videoId,omitempty"`
	Title   string     `json:"title,omitempty" validate:"max=500"`
	Snippet string     `json:"snippet,omitempty"`
}

type QuizItem struct {
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options" validate:"min=2"`
	Correct  int      `json:"correct" validate:"gte=0"`
}

// HistoryEntry is a completed study session owned by one user.
type HistoryEntry struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Sources   []Source   `json:"sources"`
	Summary   string     `json:"summary"`
	Quiz      []QuizItem `json:"quiz"`
	CreatedAt time.Time  `json:"createdAt"`
}
