package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonathan/career-path/internal/types"
)

// GetStats returns the user's activity counters. A user without a stats
// row gets zero counters.
func (s *Store) GetStats(ctx context.Context, userID int64) (*types.UserStats, error) {
	var (
		st             types.UserStats
		lastAssessment sql.NullTime
		lastUpload     sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT total_assessments, total_resumes_uploaded, total_learning_paths_generated,
		        last_assessment_date, last_resume_upload_date
		 FROM user_stats WHERE user_id = $1`,
		userID,
	).Scan(&st.TotalAssessments, &st.TotalResumesUploaded, &st.TotalLearningPathsGenerated,
		&lastAssessment, &lastUpload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &types.UserStats{}, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	st.LastAssessmentDate = nullTime(lastAssessment)
	st.LastResumeUploadDate = nullTime(lastUpload)
	return &st, nil
}
