package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/career-path/internal/types"
)

// UnknownCareer is stored when a saved learning path names no career.
const UnknownCareer = "Unknown"

const learningPathColumns = `id, career_path, progress, completed_phases, learning_path_data, created_at, updated_at`

func scanLearningPath(row rowScanner) (types.LearningPathEntry, error) {
	var (
		e      types.LearningPathEntry
		phases StringArray
		data   JSON
	)
	if err := row.Scan(&e.ID, &e.Career, &e.Progress, &phases, &data, &e.Date, &e.UpdatedAt); err != nil {
		return e, err
	}
	e.CompletedPhases = []string(phases)
	e.Data = json.RawMessage(data)
	return e, nil
}

// CareerOf returns the "career" field of a learning-path document, or
// UnknownCareer when it is missing or blank.
func CareerOf(data json.RawMessage) string {
	var doc struct {
		Career string `json:"career"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || strings.TrimSpace(doc.Career) == "" {
		return UnknownCareer
	}
	return doc.Career
}

// SaveLearningPath stores a learning-path document with zero progress and
// bumps the user's generated-path counter in one transaction.
func (s *Store) SaveLearningPath(ctx context.Context, userID int64, data json.RawMessage) (int64, error) {
	if !json.Valid(data) {
		return 0, fmt.Errorf("learning path data is not valid JSON")
	}

	var id int64
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO learning_path_history (user_id, career_path, learning_path_data, progress, completed_phases)
			 VALUES ($1, $2, $3, 0, $4)
			 RETURNING id`,
			userID, CareerOf(data), JSON(data), StringArray{},
		).Scan(&id); err != nil {
			return fmt.Errorf("failed to insert learning path: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE user_stats
			 SET total_learning_paths_generated = total_learning_paths_generated + 1, updated_at = NOW()
			 WHERE user_id = $1`,
			userID,
		); err != nil {
			return fmt.Errorf("failed to update learning path stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LearningPaths returns the user's saved learning paths, newest first.
func (s *Store) LearningPaths(ctx context.Context, userID int64, limit int) ([]types.LearningPathEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+learningPathColumns+`
		 FROM learning_path_history WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list learning paths: %w", err)
	}
	defer rows.Close()

	paths := []types.LearningPathEntry{}
	for rows.Next() {
		e, err := scanLearningPath(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan learning path: %w", err)
		}
		paths = append(paths, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list learning paths: %w", err)
	}
	return paths, nil
}

// UpdateLearningPathProgress sets progress and completed phases on a path
// owned by userID. A path owned by someone else reports ErrNotFound.
func (s *Store) UpdateLearningPathProgress(ctx context.Context, userID, pathID int64, progress int, completed []string) (*types.LearningPathEntry, error) {
	var entry types.LearningPathEntry
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		e, err := scanLearningPath(tx.QueryRowContext(ctx,
			`UPDATE learning_path_history
			 SET progress = $1, completed_phases = $2, updated_at = NOW()
			 WHERE id = $3 AND user_id = $4
			 RETURNING `+learningPathColumns,
			progress, StringArray(completed), pathID, userID,
		))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to update learning path progress: %w", err)
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteLearningPath removes a path owned by userID.
func (s *Store) DeleteLearningPath(ctx context.Context, userID, pathID int64) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM learning_path_history WHERE id = $1 AND user_id = $2`,
			pathID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete learning path: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete learning path: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
