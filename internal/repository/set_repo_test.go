package repository

import (
	"context"
	"testing"

	"bandprep/internal/models"
)

func intPtr(n int) *int { return &n }

func sampleSet() *models.PracticeSet {
	return &models.PracticeSet{
		ID:          "set-1",
		Title:       "Academic Test 1",
		Description: "Full mock test",
		Published:   true,
		Sections: []models.Section{
			{
				ID:    "sec-1",
				Type:  models.SectionReading,
				Title: "Reading",
				Parts: []models.Part{
					{
						ID:           "p-1",
						Content:      "Passage about coral reefs",
						Instructions: "Answer the questions below.",
						TimerSeconds: 1200,
						Questions: []models.Question{
							{
								ID:            "q-1",
								Text:          "Coral is an animal.",
								Type:          "TRUE_FALSE",
								Options:       []string{"TRUE", "FALSE", "NOT GIVEN"},
								CorrectAnswer: "TRUE",
								Weight:        1,
							},
							{
								ID:     "q-2",
								Text:   "Summarize the main idea.",
								Type:   "SHORT_ANSWER",
								Weight: 2,
							},
						},
					},
				},
			},
			{
				ID:    "sec-2",
				Type:  models.SectionListening,
				Title: "Listening",
				Parts: []models.Part{
					{
						ID:      "p-2",
						Content: "Conversation recording",
						Segments: []models.Segment{
							{
								ID:           "seg-1",
								Content:      "Alice: Good morning.\nBen: Hello.",
								TimerSeconds: 300,
								PrepSeconds:  intPtr(30),
								Questions: []models.Question{
									{
										ID:            "q-3",
										Text:          "Who speaks first?",
										Type:          "MULTIPLE_CHOICE",
										Options:       []string{"Alice", "Ben"},
										CorrectAnswer: "Alice",
										Weight:        1,
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestSetRepositorySaveAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleSet()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "set-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByID() returned nil for existing set")
	}

	if got.Title != "Academic Test 1" || !got.Published {
		t.Errorf("root fields not round-tripped: %+v", got)
	}
	if len(got.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(got.Sections))
	}

	reading := got.Sections[0]
	if reading.ID != "sec-1" || reading.Type != models.SectionReading {
		t.Errorf("first section = %s/%s, want sec-1/%s", reading.ID, reading.Type, models.SectionReading)
	}
	if len(reading.Parts) != 1 {
		t.Fatalf("reading section has %d parts, want 1", len(reading.Parts))
	}

	part := reading.Parts[0]
	if len(part.Questions) != 2 {
		t.Fatalf("part p-1 has %d questions, want 2", len(part.Questions))
	}
	if part.Segments == nil || len(part.Segments) != 0 {
		t.Errorf("unused segments container should be an empty slice, got %v", part.Segments)
	}

	q1 := part.Questions[0]
	if q1.ID != "q-1" || q1.CorrectAnswer != "TRUE" || q1.Weight != 1 {
		t.Errorf("question q-1 not round-tripped: %+v", q1)
	}
	if len(q1.Options) != 3 {
		t.Errorf("q-1 options = %v, want 3 entries", q1.Options)
	}

	q2 := part.Questions[1]
	if q2.CorrectAnswer != "" {
		t.Errorf("q-2 correct answer = %q, want empty", q2.CorrectAnswer)
	}
	if q2.Options == nil || len(q2.Options) != 0 {
		t.Errorf("q-2 options should be an empty slice, got %v", q2.Options)
	}

	listening := got.Sections[1]
	segPart := listening.Parts[0]
	if segPart.Questions == nil || len(segPart.Questions) != 0 {
		t.Errorf("unused questions container should be an empty slice, got %v", segPart.Questions)
	}
	if len(segPart.Segments) != 1 {
		t.Fatalf("part p-2 has %d segments, want 1", len(segPart.Segments))
	}

	seg := segPart.Segments[0]
	if seg.PrepSeconds == nil || *seg.PrepSeconds != 30 {
		t.Errorf("segment prep seconds = %v, want 30", seg.PrepSeconds)
	}
	if len(seg.Questions) != 1 || seg.Questions[0].ID != "q-3" {
		t.Errorf("segment questions = %+v, want one question q-3", seg.Questions)
	}
}

func TestSetRepositoryGetByIDMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetRepository(db)

	got, err := repo.GetByID(context.Background(), "no-such-set")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetByID() = %+v, want nil for missing set", got)
	}
}

func TestSetRepositorySaveReplacesWholeTree(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleSet()); err != nil {
		t.Fatalf("initial Save() error = %v", err)
	}

	// Re-save with one section dropped and a question removed. Nothing from
	// the first save may survive the replacement.
	replacement := sampleSet()
	replacement.Title = "Academic Test 1 (revised)"
	replacement.Sections = replacement.Sections[:1]
	replacement.Sections[0].Parts[0].Questions = replacement.Sections[0].Parts[0].Questions[:1]

	if err := repo.Save(ctx, replacement); err != nil {
		t.Fatalf("replacement Save() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "set-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Academic Test 1 (revised)" {
		t.Errorf("title = %q, want revised title", got.Title)
	}
	if len(got.Sections) != 1 {
		t.Fatalf("got %d sections after replacement, want 1", len(got.Sections))
	}
	if len(got.Sections[0].Parts[0].Questions) != 1 {
		t.Errorf("got %d questions after replacement, want 1", len(got.Sections[0].Parts[0].Questions))
	}
}

func TestSetRepositorySaveIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Save(ctx, sampleSet()); err != nil {
			t.Fatalf("Save() attempt %d error = %v", i+1, err)
		}
	}

	sets, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(sets) != 1 {
		t.Errorf("got %d sets after repeated saves, want 1", len(sets))
	}
}

func TestSetRepositoryOrderingFollowsArrayOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetRepository(db)
	ctx := context.Background()

	// Caller-supplied position values are garbage on purpose; array order
	// is what counts.
	set := &models.PracticeSet{
		ID:    "set-ord",
		Title: "Ordering",
		Sections: []models.Section{
			{ID: "sec-b", Type: models.SectionWriting, Title: "B", Position: 99},
			{ID: "sec-a", Type: models.SectionReading, Title: "A", Position: 0},
			{ID: "sec-c", Type: models.SectionSpeaking, Title: "C", Position: -5},
		},
	}
	if err := repo.Save(ctx, set); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "set-ord")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	wantOrder := []string{"sec-b", "sec-a", "sec-c"}
	for i, want := range wantOrder {
		if got.Sections[i].ID != want {
			t.Errorf("section[%d] = %s, want %s", i, got.Sections[i].ID, want)
		}
		if got.Sections[i].Position != i {
			t.Errorf("section[%d].Position = %d, want %d", i, got.Sections[i].Position, i)
		}
	}
}

func TestSetRepositorySaveAtomicOnFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleSet()); err != nil {
		t.Fatalf("initial Save() error = %v", err)
	}

	// A duplicate question id deep in the tree violates the primary key
	// mid-transaction. The stored tree must be untouched.
	broken := sampleSet()
	broken.Title = "Broken"
	broken.Sections[1].Parts[0].Segments[0].Questions[0].ID = "q-1"

	if err := repo.Save(ctx, broken); err == nil {
		t.Fatal("Save() with duplicate question id should fail")
	}

	got, err := repo.GetByID(ctx, "set-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("original tree lost after failed save")
	}
	if got.Title != "Academic Test 1" {
		t.Errorf("title = %q, want original title after failed save", got.Title)
	}
	if len(got.Sections) != 2 {
		t.Errorf("got %d sections, want original 2 after failed save", len(got.Sections))
	}
}

func TestSetRepositoryReadTransactionSeesOneSnapshot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleSet()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A reader that has already started loading must not observe a Save
	// committing between its per-level queries.
	tx, err := db.BeginRead(ctx)
	if err != nil {
		t.Fatalf("BeginRead() error = %v", err)
	}
	defer tx.Rollback()

	before, err := loadTrees(ctx, tx, "set-1")
	if err != nil {
		t.Fatalf("loadTrees() error = %v", err)
	}
	if len(before) != 1 || len(before[0].Sections) != 2 {
		t.Fatalf("unexpected initial tree: %+v", before)
	}

	// Concurrent writer replaces the tree and commits.
	replacement := sampleSet()
	replacement.Title = "Replaced mid-read"
	replacement.Sections = replacement.Sections[:1]
	if err := repo.Save(ctx, replacement); err != nil {
		t.Fatalf("concurrent Save() error = %v", err)
	}

	// The open read transaction still sees the original tree in full.
	after, err := loadTrees(ctx, tx, "set-1")
	if err != nil {
		t.Fatalf("loadTrees() after concurrent save error = %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("got %d trees inside read transaction, want 1", len(after))
	}
	if after[0].Title != "Academic Test 1" {
		t.Errorf("title inside read transaction = %q, want original", after[0].Title)
	}
	if len(after[0].Sections) != 2 {
		t.Errorf("got %d sections inside read transaction, want original 2", len(after[0].Sections))
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	// A fresh read sees the replacement.
	got, err := repo.GetByID(ctx, "set-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Replaced mid-read" || len(got.Sections) != 1 {
		t.Errorf("fresh read = %q with %d sections, want replacement tree", got.Title, len(got.Sections))
	}
}

func TestSetRepositoryDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleSet()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Delete(ctx, "set-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "set-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != nil {
		t.Errorf("set still present after delete: %+v", got)
	}

	// The cascade must have emptied every child table.
	for _, table := range []string{"sections", "parts", "segments", "questions"} {
		var count int
		if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("table %s has %d orphaned rows after delete", table, count)
		}
	}

	// Deleting again is not an error.
	if err := repo.Delete(ctx, "set-1"); err != nil {
		t.Errorf("repeated Delete() error = %v", err)
	}
}

func TestSetRepositoryGetTitle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, sampleSet()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	title, err := repo.GetTitle(ctx, "set-1")
	if err != nil {
		t.Fatalf("GetTitle() error = %v", err)
	}
	if title != "Academic Test 1" {
		t.Errorf("GetTitle() = %q, want %q", title, "Academic Test 1")
	}

	title, err = repo.GetTitle(ctx, "no-such-set")
	if err != nil {
		t.Fatalf("GetTitle() error = %v", err)
	}
	if title != "" {
		t.Errorf("GetTitle() for missing set = %q, want empty", title)
	}
}
