package models

import (
	"encoding/json"
	"time"
)

// Attempt is an immutable record of one completed test-taking session.
// UserID and SetID are informational references without foreign keys: the
// referenced set may be deleted later, and a user id is not verified at
// insert time.
type Attempt struct {
	ID            int64              `json:"id"`
	UserID        string             `json:"userId"`
	SetID         string             `json:"setId"`
	SetTitle      string             `json:"setTitle"`
	BandScore     float64            `json:"bandScore"`
	SectionScores map[string]float64 `json:"sectionScores"`
	Feedback      json.RawMessage    `json:"feedback,omitempty"`
	TakenAt       time.Time          `json:"takenAt"`
}

// AttemptSummary is an attempt annotated for display: the referenced set's
// current title (or a fallback when the set is gone) and a formatted date.
type AttemptSummary struct {
	Attempt
	ResolvedTitle string `json:"resolvedTitle"`
	Date          string `json:"date"`
}
