package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/jonathan/career-path/internal/db"
	"github.com/jonathan/career-path/internal/events"
	"github.com/jonathan/career-path/internal/server/middleware"
	"github.com/jonathan/career-path/internal/types"
)

// List sizes for the account endpoints.
const (
	historyLimit   = 50
	dashboardLimit = 5
)

// ---------------------------------------------------------------------
// Learning paths
// ---------------------------------------------------------------------

func (s *Server) handleSaveLearningPath(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var data json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		s.handleError(w, r, &ErrValidation{Message: "Invalid request body: " + err.Error()})
		return
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		s.handleError(w, r, &ErrValidation{Message: "Learning path must be a JSON object"})
		return
	}

	pathID, err := s.db.SaveLearningPath(r.Context(), userID, data)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.publish(r.Context(), events.TypeLearningPathSaved, userID, map[string]any{
		"path_id": pathID,
		"career":  db.CareerOf(data),
	})

	s.jsonResponse(w, http.StatusOK, types.SaveLearningPathResponse{
		Success: true,
		Message: "Learning path saved successfully",
		PathID:  pathID,
	})
}

func (s *Server) handleListLearningPaths(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	paths, err := s.db.LearningPaths(r.Context(), userID, historyLimit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"learning_paths": paths})
}

// handleUpdateProgress records progress on one of the caller's paths.
// Paths owned by someone else are reported as not found.
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	pathID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req types.ProgressUpdateRequest
	if err := decodeJSON(r, &req, req.Validate); err != nil {
		s.handleError(w, r, err)
		return
	}
	if req.CompletedPhases == nil {
		req.CompletedPhases = []string{}
	}

	entry, err := s.db.UpdateLearningPathProgress(r.Context(), userID, pathID, req.Progress, req.CompletedPhases)
	if err != nil {
		s.handleError(w, r, notFoundAs(err, "learning path"))
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteLearningPath(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	pathID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteLearningPath(r.Context(), userID, pathID); err != nil {
		s.handleError(w, r, notFoundAs(err, "learning path"))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Learning path deleted successfully",
	})
}

// ---------------------------------------------------------------------
// History and dashboard
// ---------------------------------------------------------------------

func (s *Server) handleCareerHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	history, err := s.db.CareerHistory(r.Context(), userID, historyLimit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"career_history": history})
}

// handleDashboard summarises the caller's recent activity.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	user, err := s.userService.Profile(ctx, userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	history, err := s.db.CareerHistory(ctx, userID, dashboardLimit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	paths, err := s.db.LearningPaths(ctx, userID, dashboardLimit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	stats, err := s.db.GetStats(ctx, userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	for i := range history {
		history[i].Input = nil
	}
	for i := range paths {
		paths[i].Data = nil
	}

	s.jsonResponse(w, http.StatusOK, types.Dashboard{
		UserInfo:         user,
		CareerHistory:    history,
		LearningPaths:    paths,
		QuizStats:        types.QuizStats{TopicsCovered: []string{}},
		Stats:            *stats,
		TotalAssessments: stats.TotalAssessments,
		LastActivity:     stats.LastAssessmentDate,
	})
}

// ---------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	user, err := s.userService.Profile(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

// handleDeleteProfile deletes the account together with its history,
// résumés, learning paths and stats.
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	if err := s.userService.Delete(r.Context(), userID); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.publish(r.Context(), events.TypeUserDeleted, userID, nil)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Account deleted successfully",
	})
}

// ---------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------

func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return 0, false
	}
	return userID, true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.handleError(w, r, &ErrValidation{Message: "Invalid learning path ID"})
		return 0, false
	}
	return id, true
}

// notFoundAs converts db.ErrNotFound into a typed ErrNotFound for resource.
func notFoundAs(err error, resource string) error {
	if errors.Is(err, db.ErrNotFound) {
		return &ErrNotFound{Resource: resource}
	}
	return err
}
