package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bandprep/internal/ai"
	"bandprep/internal/validation"
)

// ErrScoringUnavailable is returned when the scoring backend is not
// configured or fails to produce a result
var ErrScoringUnavailable = errors.New("scoring backend unavailable")

// EvaluationService scores free-form written or spoken answers
type EvaluationService struct {
	client *ai.Client
}

// NewEvaluationService creates a new evaluation service. A nil client means
// scoring is disabled.
func NewEvaluationService(client *ai.Client) *EvaluationService {
	return &EvaluationService{client: client}
}

// IsEnabled reports whether a scoring backend is configured
func (s *EvaluationService) IsEnabled() bool {
	return s.client != nil
}

// Evaluate scores one answer against its task prompt. Backend failures are
// reported as ErrScoringUnavailable with the cause attached.
func (s *EvaluationService) Evaluate(ctx context.Context, taskPrompt, answer string) (*ai.Evaluation, error) {
	if strings.TrimSpace(taskPrompt) == "" {
		return nil, validation.ValidationError{Field: "taskPrompt", Message: "task prompt is required"}
	}
	if strings.TrimSpace(answer) == "" {
		return nil, validation.ValidationError{Field: "answer", Message: "answer is required"}
	}
	if s.client == nil {
		return nil, ErrScoringUnavailable
	}

	eval, err := s.client.Evaluate(ctx, taskPrompt, answer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	return eval, nil
}
