package service

import (
	"context"
	"fmt"
	"strings"

	"bandprep/internal/models"
	"bandprep/internal/repository"
	"bandprep/internal/validation"
)

// AttemptService handles attempt recording and history
type AttemptService struct {
	attemptRepo *repository.AttemptRepository
	setRepo     *repository.SetRepository
}

// NewAttemptService creates a new attempt service
func NewAttemptService(attemptRepo *repository.AttemptRepository, setRepo *repository.SetRepository) *AttemptService {
	return &AttemptService{
		attemptRepo: attemptRepo,
		setRepo:     setRepo,
	}
}

// Record stores a completed attempt. The current title of the referenced
// practice set is snapshotted onto the attempt so history survives set
// deletion. The set is allowed to be missing already.
func (s *AttemptService) Record(ctx context.Context, attempt *models.Attempt) error {
	if strings.TrimSpace(attempt.UserID) == "" {
		return validation.ValidationError{Field: "userId", Message: "user id is required"}
	}
	if strings.TrimSpace(attempt.SetID) == "" {
		return validation.ValidationError{Field: "setId", Message: "set id is required"}
	}

	title, err := s.setRepo.GetTitle(ctx, attempt.SetID)
	if err != nil {
		return fmt.Errorf("failed to resolve set title: %w", err)
	}
	if title != "" {
		attempt.SetTitle = title
	}

	id, err := s.attemptRepo.Create(ctx, attempt)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	attempt.ID = id
	return nil
}

// ListByUser returns a user's attempts newest first, with display fields
// filled in
func (s *AttemptService) ListByUser(ctx context.Context, userID string) ([]models.AttemptSummary, error) {
	summaries, err := s.attemptRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	for i := range summaries {
		summaries[i].Date = summaries[i].TakenAt.Format("Jan 2, 2006")
	}
	return summaries, nil
}
