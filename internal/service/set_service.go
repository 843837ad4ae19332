package service

import (
	"context"
	"fmt"

	"bandprep/internal/models"
	"bandprep/internal/repository"
	"bandprep/internal/validation"
)

// SetService handles practice set business logic
type SetService struct {
	setRepo *repository.SetRepository
}

// NewSetService creates a new set service
func NewSetService(setRepo *repository.SetRepository) *SetService {
	return &SetService{setRepo: setRepo}
}

// Save validates a practice set tree and stores it, replacing any existing
// tree with the same id
func (s *SetService) Save(ctx context.Context, set *models.PracticeSet) error {
	if err := validation.ValidatePracticeSet(set); err != nil {
		return err
	}
	if err := s.setRepo.Save(ctx, set); err != nil {
		return fmt.Errorf("failed to save practice set: %w", err)
	}
	return nil
}

// List returns every stored practice set with its full tree
func (s *SetService) List(ctx context.Context) ([]models.PracticeSet, error) {
	sets, err := s.setRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice sets: %w", err)
	}
	return sets, nil
}

// Get returns one practice set tree, or nil when it does not exist
func (s *SetService) Get(ctx context.Context, id string) (*models.PracticeSet, error) {
	set, err := s.setRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get practice set: %w", err)
	}
	return set, nil
}

// Delete removes a practice set and everything beneath it. Deleting a set
// that does not exist is not an error.
func (s *SetService) Delete(ctx context.Context, id string) error {
	if err := s.setRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete practice set: %w", err)
	}
	return nil
}
