package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonathan/career-path/internal/types"
)

// RecordResume stores an uploaded resume and bumps the user's upload
// counters in one transaction. The returned record carries the new id and
// upload time.
func (s *Store) RecordResume(ctx context.Context, userID int64, rec types.ResumeRecord) (*types.ResumeRecord, error) {
	var filePath sql.NullString
	if rec.FilePath != "" {
		filePath = sql.NullString{String: rec.FilePath, Valid: true}
	}

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO resumes (user_id, file_name, file_path, file_content, parsed_data)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, uploaded_at`,
			userID, rec.FileName, filePath, rec.Content, JSON(rec.ParsedData),
		).Scan(&rec.ID, &rec.UploadedAt); err != nil {
			return fmt.Errorf("failed to insert resume: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE user_stats
			 SET total_resumes_uploaded = total_resumes_uploaded + 1, last_resume_upload_date = NOW(), updated_at = NOW()
			 WHERE user_id = $1`,
			userID,
		); err != nil {
			return fmt.Errorf("failed to update resume stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
