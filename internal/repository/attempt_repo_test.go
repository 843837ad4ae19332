package repository

import (
	"context"
	"testing"
	"time"

	"bandprep/internal/models"
)

func TestAttemptRepositoryCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	setRepo := NewSetRepository(db)
	repo := NewAttemptRepository(db)
	ctx := context.Background()

	if err := setRepo.Save(ctx, sampleSet()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempts := []*models.Attempt{
		{UserID: "user-1", SetID: "set-1", SetTitle: "Academic Test 1", BandScore: 6.5,
			SectionScores: map[string]float64{"READING": 7.0, "LISTENING": 6.0},
			TakenAt:       base},
		{UserID: "user-1", SetID: "set-1", SetTitle: "Academic Test 1", BandScore: 7.0,
			TakenAt: base.Add(48 * time.Hour)},
		{UserID: "user-2", SetID: "set-1", SetTitle: "Academic Test 1", BandScore: 5.5,
			TakenAt: base.Add(24 * time.Hour)},
	}
	for _, a := range attempts {
		id, err := repo.Create(ctx, a)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if id == 0 {
			t.Error("Create() returned id 0")
		}
	}

	got, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d attempts for user-1, want 2", len(got))
	}

	// Newest first.
	if got[0].BandScore != 7.0 || got[1].BandScore != 6.5 {
		t.Errorf("attempts not newest first: %.1f then %.1f", got[0].BandScore, got[1].BandScore)
	}
	if got[0].ResolvedTitle != "Academic Test 1" {
		t.Errorf("resolved title = %q, want current set title", got[0].ResolvedTitle)
	}
	if got[1].SectionScores["READING"] != 7.0 {
		t.Errorf("section scores not round-tripped: %v", got[1].SectionScores)
	}
}

func TestAttemptRepositoryNewestFirstTiebreak(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	ctx := context.Background()

	// Identical timestamps fall back to insertion order, newest insert first.
	when := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, band := range []float64{5.0, 6.0, 7.0} {
		_, err := repo.Create(ctx, &models.Attempt{
			UserID: "user-1", SetID: "set-x", SetTitle: "X",
			BandScore: band, TakenAt: when,
		})
		if err != nil {
			t.Fatalf("Create() %d error = %v", i, err)
		}
	}

	got, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	want := []float64{7.0, 6.0, 5.0}
	for i := range want {
		if got[i].BandScore != want[i] {
			t.Errorf("attempt[%d].BandScore = %.1f, want %.1f", i, got[i].BandScore, want[i])
		}
	}
}

func TestAttemptRepositoryTitleFallbacks(t *testing.T) {
	db := setupTestDB(t)
	setRepo := NewSetRepository(db)
	repo := NewAttemptRepository(db)
	ctx := context.Background()

	if err := setRepo.Save(ctx, sampleSet()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// One attempt with a title snapshot, one without.
	if _, err := repo.Create(ctx, &models.Attempt{
		UserID: "user-1", SetID: "set-1", SetTitle: "Academic Test 1", BandScore: 6.0,
		TakenAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := repo.Create(ctx, &models.Attempt{
		UserID: "user-1", SetID: "set-1", BandScore: 6.5,
		TakenAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Deleting the set must not touch the attempts.
	if err := setRepo.Delete(ctx, "set-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d attempts after set deletion, want 2", len(got))
	}
	if got[0].ResolvedTitle != "Deleted practice set" {
		t.Errorf("resolved title without snapshot = %q, want fallback label", got[0].ResolvedTitle)
	}
	if got[1].ResolvedTitle != "Academic Test 1" {
		t.Errorf("resolved title with snapshot = %q, want snapshot title", got[1].ResolvedTitle)
	}
}

func TestAttemptRepositoryAcceptsUnknownUserAndSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	ctx := context.Background()

	// No users row and no practice_sets row exist; the insert still works.
	if _, err := repo.Create(ctx, &models.Attempt{
		UserID: "ghost", SetID: "never-existed", BandScore: 4.5,
	}); err != nil {
		t.Fatalf("Create() with unknown references error = %v", err)
	}

	count, err := repo.CountByUser(ctx, "ghost")
	if err != nil {
		t.Fatalf("CountByUser() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountByUser() = %d, want 1", count)
	}
}
