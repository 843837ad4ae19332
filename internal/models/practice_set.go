package models

import "strings"

// Section types, matching the four skill areas a practice set can cover.
const (
	SectionReading   = "READING"
	SectionWriting   = "WRITING"
	SectionListening = "LISTENING"
	SectionSpeaking  = "SPEAKING"
)

// NormalizeSectionType maps a caller-supplied section type to its canonical
// form, returning "" when the type is unknown.
func NormalizeSectionType(t string) string {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case SectionReading:
		return SectionReading
	case SectionWriting:
		return SectionWriting
	case SectionListening:
		return SectionListening
	case SectionSpeaking:
		return SectionSpeaking
	}
	return ""
}

// PracticeSet is the root of a content tree. Saving a set always replaces
// the entire tree rooted at its ID.
type PracticeSet struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Published   bool      `json:"published"`
	Sections    []Section `json:"sections"`
}

// Section groups the parts of one skill area within a practice set
type Section struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Parts    []Part `json:"parts"`
}

// Part carries content plus either direct Questions or timed Segments,
// never both. The unused container is always an empty slice in responses.
type Part struct {
	ID           string     `json:"id"`
	Content      string     `json:"content"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	AudioURL     string     `json:"audioUrl,omitempty"`
	Instructions string     `json:"instructions"`
	TimerSeconds int        `json:"timerSeconds"`
	PrepSeconds  *int       `json:"prepSeconds,omitempty"`
	Position     int        `json:"position"`
	Questions    []Question `json:"questions"`
	Segments     []Segment  `json:"segments"`
}

// Segment is an independently timed sub-unit of a part, e.g. one audio
// track of a listening part
type Segment struct {
	ID           string     `json:"id"`
	Content      string     `json:"content"`
	AudioURL     string     `json:"audioUrl,omitempty"`
	PrepSeconds  *int       `json:"prepSeconds,omitempty"`
	TimerSeconds int        `json:"timerSeconds"`
	Position     int        `json:"position"`
	Questions    []Question `json:"questions"`
}

// Question is a leaf of the content tree. Options are stored as one opaque
// JSON value on the question row rather than normalized into their own table.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Weight        float64  `json:"weight"`
	AudioURL      string   `json:"audioUrl,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Position      int      `json:"position"`
}
