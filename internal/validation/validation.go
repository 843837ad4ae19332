package validation

import (
	"fmt"
	"regexp"
	"strings"

	"bandprep/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidatePracticeSet checks a full tree payload before it reaches the
// writer: ids present, section types known, and no part carrying both
// direct questions and segments. Section types are normalized in place.
func ValidatePracticeSet(set *models.PracticeSet) error {
	if strings.TrimSpace(set.ID) == "" {
		return ValidationError{Field: "id", Message: "practice set id is required"}
	}
	if strings.TrimSpace(set.Title) == "" {
		return ValidationError{Field: "title", Message: "practice set title is required"}
	}

	for i := range set.Sections {
		section := &set.Sections[i]
		if strings.TrimSpace(section.ID) == "" {
			return ValidationError{Field: "sections", Message: "section id is required"}
		}

		normalized := models.NormalizeSectionType(section.Type)
		if normalized == "" {
			return ValidationError{
				Field:   fmt.Sprintf("sections.%s.type", section.ID),
				Message: fmt.Sprintf("unknown section type %q", section.Type),
			}
		}
		section.Type = normalized

		for j := range section.Parts {
			if err := validatePart(&section.Parts[j]); err != nil {
				return err
			}
		}
	}

	return nil
}

func validatePart(part *models.Part) error {
	if strings.TrimSpace(part.ID) == "" {
		return ValidationError{Field: "parts", Message: "part id is required"}
	}

	// A part holds either direct questions or segments, never both.
	if len(part.Questions) > 0 && len(part.Segments) > 0 {
		return ValidationError{
			Field:   fmt.Sprintf("parts.%s", part.ID),
			Message: "part cannot carry both questions and segments",
		}
	}

	for i := range part.Questions {
		if err := validateQuestion(&part.Questions[i]); err != nil {
			return err
		}
	}

	for i := range part.Segments {
		segment := &part.Segments[i]
		if strings.TrimSpace(segment.ID) == "" {
			return ValidationError{Field: "segments", Message: "segment id is required"}
		}
		for j := range segment.Questions {
			if err := validateQuestion(&segment.Questions[j]); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateQuestion(q *models.Question) error {
	if strings.TrimSpace(q.ID) == "" {
		return ValidationError{Field: "questions", Message: "question id is required"}
	}
	if q.Weight < 0 {
		return ValidationError{
			Field:   fmt.Sprintf("questions.%s.weight", q.ID),
			Message: "weight cannot be negative",
		}
	}
	return nil
}
