package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"bandprep/internal/database"
	"bandprep/internal/models"
)

// SetRepository handles database operations for practice set content trees.
// A tree is only ever written as a whole: Save deletes the previous tree for
// the same id and inserts the supplied one inside a single transaction.
type SetRepository struct {
	db *database.DB
}

// NewSetRepository creates a new set repository
func NewSetRepository(db *database.DB) *SetRepository {
	return &SetRepository{db: db}
}

// Save atomically replaces the tree rooted at set.ID. Sibling order is taken
// from array position, not from any position values carried in the payload.
// On any failure the transaction rolls back and the previous tree survives
// untouched.
func (r *SetRepository) Save(ctx context.Context, set *models.PracticeSet) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Full replace: the cascade removes every section, part, segment and
	// question under the old tree. A first save deletes nothing.
	if _, err := tx.Exec(ctx, "DELETE FROM practice_sets WHERE id = ?", set.ID); err != nil {
		return fmt.Errorf("failed to delete existing tree: %w", err)
	}

	query := "INSERT INTO practice_sets (id, title, description, published) VALUES (?, ?, ?, ?)"
	if _, err := tx.Exec(ctx, query, set.ID, set.Title, set.Description, set.Published); err != nil {
		return fmt.Errorf("failed to insert practice set: %w", err)
	}

	for si, section := range set.Sections {
		query := "INSERT INTO sections (id, practice_set_id, section_type, title, position) VALUES (?, ?, ?, ?, ?)"
		if _, err := tx.Exec(ctx, query, section.ID, set.ID, section.Type, section.Title, si); err != nil {
			return fmt.Errorf("failed to insert section %s: %w", section.ID, err)
		}

		for pi, part := range section.Parts {
			query := `
				INSERT INTO parts (id, section_id, content, image_url, audio_url, instructions, timer_seconds, prep_seconds, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`
			if _, err := tx.Exec(ctx, query, part.ID, section.ID, part.Content, part.ImageURL,
				part.AudioURL, part.Instructions, part.TimerSeconds, part.PrepSeconds, pi); err != nil {
				return fmt.Errorf("failed to insert part %s: %w", part.ID, err)
			}

			for qi, question := range part.Questions {
				if err := insertQuestion(ctx, tx, part.ID, "", question, qi); err != nil {
					return err
				}
			}

			for gi, segment := range part.Segments {
				query := `
					INSERT INTO segments (id, part_id, content, audio_url, prep_seconds, timer_seconds, position)
					VALUES (?, ?, ?, ?, ?, ?, ?)
				`
				if _, err := tx.Exec(ctx, query, segment.ID, part.ID, segment.Content,
					segment.AudioURL, segment.PrepSeconds, segment.TimerSeconds, gi); err != nil {
					return fmt.Errorf("failed to insert segment %s: %w", segment.ID, err)
				}

				for qi, question := range segment.Questions {
					if err := insertQuestion(ctx, tx, "", segment.ID, question, qi); err != nil {
						return err
					}
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tree: %w", err)
	}
	return nil
}

// insertQuestion inserts one question under a part or a segment. Exactly one
// of partID and segmentID must be non-empty; the schema enforces the same.
func insertQuestion(ctx context.Context, tx *database.Tx, partID, segmentID string, q models.Question, position int) error {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to encode options for question %s: %w", q.ID, err)
	}

	var parentPart, parentSegment, correctAnswer interface{}
	if partID != "" {
		parentPart = partID
	}
	if segmentID != "" {
		parentSegment = segmentID
	}
	if q.CorrectAnswer != "" {
		correctAnswer = q.CorrectAnswer
	}

	query := `
		INSERT INTO questions (id, part_id, segment_id, question_text, question_type, options, correct_answer, weight, audio_url, image_url, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(ctx, query, q.ID, parentPart, parentSegment, q.Text, q.Type,
		string(optionsJSON), correctAnswer, q.Weight, q.AudioURL, q.ImageURL, position); err != nil {
		return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
	}
	return nil
}

// Delete removes the tree rooted at id. Deleting an absent id is not an error.
func (r *SetRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM practice_sets WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete practice set: %w", err)
	}
	return nil
}

// GetTitle returns the current title of a practice set, or ("", nil) when
// the set does not exist
func (r *SetRepository) GetTitle(ctx context.Context, id string) (string, error) {
	var title string
	err := r.db.QueryRow(ctx, "SELECT title FROM practice_sets WHERE id = ?", id).Scan(&title)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get practice set title: %w", err)
	}
	return title, nil
}

// GetAll reconstructs every practice set tree, every sibling list ordered by
// its position column. All queries run inside one snapshot-consistent read
// transaction, so a concurrent Save can never show through mid-read.
func (r *SetRepository) GetAll(ctx context.Context) ([]models.PracticeSet, error) {
	tx, err := r.db.BeginRead(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sets, err := loadTrees(ctx, tx, "")
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to finish read: %w", err)
	}
	return sets, nil
}

// GetByID reconstructs the tree rooted at id, or returns nil when absent
func (r *SetRepository) GetByID(ctx context.Context, id string) (*models.PracticeSet, error) {
	tx, err := r.db.BeginRead(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sets, err := loadTrees(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to finish read: %w", err)
	}

	if len(sets) == 0 {
		return nil, nil
	}
	return &sets[0], nil
}

// loadTrees reads and assembles practice set trees. With setID empty it loads
// the whole forest; otherwise just the one tree. Five queries, one per table,
// each ordered by parent then position so assembly preserves sibling order.
func loadTrees(ctx context.Context, tx database.DBTX, setID string) ([]models.PracticeSet, error) {
	sets, setOrder, err := loadRoots(ctx, tx, setID)
	if err != nil {
		return nil, err
	}
	if len(setOrder) == 0 {
		return []models.PracticeSet{}, nil
	}

	sectionsBySet, err := loadSections(ctx, tx, setID)
	if err != nil {
		return nil, err
	}
	partsBySection, err := loadParts(ctx, tx, setID)
	if err != nil {
		return nil, err
	}
	segmentsByPart, err := loadSegments(ctx, tx, setID)
	if err != nil {
		return nil, err
	}
	questionsByPart, questionsBySegment, err := loadQuestions(ctx, tx, setID)
	if err != nil {
		return nil, err
	}

	// Assemble bottom-up so every parent receives fully built children.
	attachSegmentQuestions := func(seg *models.Segment) {
		seg.Questions = questionsBySegment[seg.ID]
		if seg.Questions == nil {
			seg.Questions = []models.Question{}
		}
	}

	attachPartChildren := func(part *models.Part) {
		part.Questions = questionsByPart[part.ID]
		if part.Questions == nil {
			part.Questions = []models.Question{}
		}
		segments := segmentsByPart[part.ID]
		if segments == nil {
			segments = []models.Segment{}
		}
		for i := range segments {
			attachSegmentQuestions(&segments[i])
		}
		part.Segments = segments
	}

	result := make([]models.PracticeSet, 0, len(setOrder))
	for _, id := range setOrder {
		set := sets[id]
		sections := sectionsBySet[id]
		if sections == nil {
			sections = []models.Section{}
		}
		for i := range sections {
			parts := partsBySection[sections[i].ID]
			if parts == nil {
				parts = []models.Part{}
			}
			for j := range parts {
				attachPartChildren(&parts[j])
			}
			sections[i].Parts = parts
		}
		set.Sections = sections
		result = append(result, *set)
	}
	return result, nil
}

func loadRoots(ctx context.Context, tx database.DBTX, setID string) (map[string]*models.PracticeSet, []string, error) {
	query := "SELECT id, title, description, published FROM practice_sets"
	var args []interface{}
	if setID != "" {
		query += " WHERE id = ?"
		args = append(args, setID)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query practice sets: %w", err)
	}
	defer rows.Close()

	sets := make(map[string]*models.PracticeSet)
	var order []string
	for rows.Next() {
		var set models.PracticeSet
		if err := rows.Scan(&set.ID, &set.Title, &set.Description, &set.Published); err != nil {
			return nil, nil, fmt.Errorf("failed to scan practice set: %w", err)
		}
		sets[set.ID] = &set
		order = append(order, set.ID)
	}
	return sets, order, rows.Err()
}

func loadSections(ctx context.Context, tx database.DBTX, setID string) (map[string][]models.Section, error) {
	query := `
		SELECT id, practice_set_id, section_type, title, position
		FROM sections
	`
	var args []interface{}
	if setID != "" {
		query += " WHERE practice_set_id = ?"
		args = append(args, setID)
	}
	query += " ORDER BY practice_set_id, position ASC"

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	bySet := make(map[string][]models.Section)
	for rows.Next() {
		var section models.Section
		var parentID string
		if err := rows.Scan(&section.ID, &parentID, &section.Type, &section.Title, &section.Position); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		bySet[parentID] = append(bySet[parentID], section)
	}
	return bySet, rows.Err()
}

func loadParts(ctx context.Context, tx database.DBTX, setID string) (map[string][]models.Part, error) {
	query := `
		SELECT p.id, p.section_id, p.content, p.image_url, p.audio_url, p.instructions, p.timer_seconds, p.prep_seconds, p.position
		FROM parts p
	`
	var args []interface{}
	if setID != "" {
		query += " INNER JOIN sections s ON p.section_id = s.id WHERE s.practice_set_id = ?"
		args = append(args, setID)
	}
	query += " ORDER BY p.section_id, p.position ASC"

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parts: %w", err)
	}
	defer rows.Close()

	bySection := make(map[string][]models.Part)
	for rows.Next() {
		var part models.Part
		var parentID string
		var prepSeconds sql.NullInt64
		if err := rows.Scan(&part.ID, &parentID, &part.Content, &part.ImageURL, &part.AudioURL,
			&part.Instructions, &part.TimerSeconds, &prepSeconds, &part.Position); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		if prepSeconds.Valid {
			v := int(prepSeconds.Int64)
			part.PrepSeconds = &v
		}
		bySection[parentID] = append(bySection[parentID], part)
	}
	return bySection, rows.Err()
}

func loadSegments(ctx context.Context, tx database.DBTX, setID string) (map[string][]models.Segment, error) {
	query := `
		SELECT g.id, g.part_id, g.content, g.audio_url, g.prep_seconds, g.timer_seconds, g.position
		FROM segments g
	`
	var args []interface{}
	if setID != "" {
		query += `
			INNER JOIN parts p ON g.part_id = p.id
			INNER JOIN sections s ON p.section_id = s.id
			WHERE s.practice_set_id = ?
		`
		args = append(args, setID)
	}
	query += " ORDER BY g.part_id, g.position ASC"

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	byPart := make(map[string][]models.Segment)
	for rows.Next() {
		var segment models.Segment
		var parentID string
		var prepSeconds sql.NullInt64
		if err := rows.Scan(&segment.ID, &parentID, &segment.Content, &segment.AudioURL,
			&prepSeconds, &segment.TimerSeconds, &segment.Position); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		if prepSeconds.Valid {
			v := int(prepSeconds.Int64)
			segment.PrepSeconds = &v
		}
		byPart[parentID] = append(byPart[parentID], segment)
	}
	return byPart, rows.Err()
}

func loadQuestions(ctx context.Context, tx database.DBTX, setID string) (map[string][]models.Question, map[string][]models.Question, error) {
	query := `
		SELECT q.id, q.part_id, q.segment_id, q.question_text, q.question_type, q.options, q.correct_answer, q.weight, q.audio_url, q.image_url, q.position
		FROM questions q
	`
	var args []interface{}
	if setID != "" {
		query += `
			LEFT JOIN parts dp ON q.part_id = dp.id
			LEFT JOIN segments g ON q.segment_id = g.id
			LEFT JOIN parts gp ON g.part_id = gp.id
			INNER JOIN sections s ON COALESCE(dp.section_id, gp.section_id) = s.id
			WHERE s.practice_set_id = ?
		`
		args = append(args, setID)
	}
	query += " ORDER BY q.part_id, q.segment_id, q.position ASC"

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	byPart := make(map[string][]models.Question)
	bySegment := make(map[string][]models.Question)
	for rows.Next() {
		var q models.Question
		var partID, segmentID, correctAnswer sql.NullString
		var optionsJSON string
		if err := rows.Scan(&q.ID, &partID, &segmentID, &q.Text, &q.Type, &optionsJSON,
			&correctAnswer, &q.Weight, &q.AudioURL, &q.ImageURL, &q.Position); err != nil {
			return nil, nil, fmt.Errorf("failed to scan question: %w", err)
		}

		q.Options = []string{}
		if optionsJSON != "" {
			if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
				return nil, nil, fmt.Errorf("failed to decode options for question %s: %w", q.ID, err)
			}
			if q.Options == nil {
				q.Options = []string{}
			}
		}
		if correctAnswer.Valid {
			q.CorrectAnswer = correctAnswer.String
		}

		switch {
		case partID.Valid:
			byPart[partID.String] = append(byPart[partID.String], q)
		case segmentID.Valid:
			bySegment[segmentID.String] = append(bySegment[segmentID.String], q)
		}
	}
	return byPart, bySegment, rows.Err()
}
