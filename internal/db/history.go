package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jonathan/career-path/internal/types"
)

// RecordPrediction appends a career-history row and bumps the user's
// assessment counters in one transaction.
func (s *Store) RecordPrediction(ctx context.Context, userID int64, in *types.CareerInput, res *types.PredictionResult) (int64, error) {
	alternatives := res.AlternativeCareers
	if alternatives == nil {
		alternatives = []types.CareerScore{}
	}
	altJSON, err := marshalJSON(alternatives)
	if err != nil {
		return 0, err
	}
	var inputJSON JSON
	if in != nil {
		if inputJSON, err = marshalJSON(in); err != nil {
			return 0, err
		}
	}

	var id int64
	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO career_history (user_id, career_path, confidence, alternative_careers, input_data)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			userID, res.PrimaryCareer, res.Confidence, altJSON, inputJSON,
		).Scan(&id); err != nil {
			return fmt.Errorf("failed to insert career history: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE user_stats
			 SET total_assessments = total_assessments + 1, last_assessment_date = NOW(), updated_at = NOW()
			 WHERE user_id = $1`,
			userID,
		); err != nil {
			return fmt.Errorf("failed to update assessment stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CareerHistory returns the user's most recent predictions, newest first.
func (s *Store) CareerHistory(ctx context.Context, userID int64, limit int) ([]types.CareerHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, career_path, confidence, alternative_careers, input_data, created_at
		 FROM career_history WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list career history: %w", err)
	}
	defer rows.Close()

	entries := []types.CareerHistoryEntry{}
	for rows.Next() {
		var (
			e         types.CareerHistoryEntry
			altJSON   JSON
			inputJSON JSON
		)
		if err := rows.Scan(&e.ID, &e.Career, &e.Confidence, &altJSON, &inputJSON, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan career history: %w", err)
		}
		e.Alternatives = []types.CareerScore{}
		if len(altJSON) > 0 {
			if err := json.Unmarshal(altJSON, &e.Alternatives); err != nil {
				return nil, fmt.Errorf("failed to decode alternative careers: %w", err)
			}
		}
		if len(inputJSON) > 0 && string(inputJSON) != "null" {
			var in types.CareerInput
			if err := json.Unmarshal(inputJSON, &in); err != nil {
				return nil, fmt.Errorf("failed to decode career input: %w", err)
			}
			e.Input = &in
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list career history: %w", err)
	}
	return entries, nil
}
