package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/career-path/internal/events"
	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/resume"
	"github.com/jonathan/career-path/internal/server/middleware"
	"github.com/jonathan/career-path/internal/types"
)

// APIVersion is reported by the root endpoint.
const APIVersion = "2.0"

// multipartOverhead is allowed on top of the résumé size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

var publicEndpoints = []string{
	"/predict",
	"/predict-from-resume",
	"/generate-path",
	"/generate-quiz",
	"/search-resources/{career}",
	"/career-roadmap/{career}",
	"/career-info/{career}",
	"/save-learning-path",
	"/learning-paths",
	"/career-history",
	"/dashboard",
	"/user/profile",
	"/careers",
	"/health",
}

// handleRoot returns the service banner.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message":   "Career Path Recommendation API",
		"version":   APIVersion,
		"endpoints": publicEndpoints,
	})
}

// handleHealth returns server health status. It always answers 200; a
// missing model or database only shows in the body.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "ok"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("database ping failed", zap.Error(err))
		database = "unavailable"
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"model_loaded":  s.predictor.Available(),
		"llm_providers": s.learning.Providers(),
		"database":      database,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCareers(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string][]string{"careers": s.predictor.Careers()})
}

// handlePredict runs a prediction. Authenticated callers also get the
// result recorded in their history.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var in types.CareerInput
	if err := decodeJSON(r, &in, in.Validate); err != nil {
		s.handleError(w, r, err)
		return
	}

	result, err := s.predict(r.Context(), &in)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		s.recordPrediction(r.Context(), id.UserID, &in, result)
	}

	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) predict(ctx context.Context, in *types.CareerInput) (*types.PredictionResult, error) {
	result, err := s.predictor.Predict(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}
	mode := "model"
	if result.Fallback {
		mode = "fallback"
	}
	observability.PredictionsTotal.WithLabelValues(mode).Inc()
	return result, nil
}

// recordPrediction stores a served prediction. A failure is logged and the
// prediction is still returned to the caller.
func (s *Server) recordPrediction(ctx context.Context, userID int64, in *types.CareerInput, result *types.PredictionResult) {
	historyID, err := s.db.RecordPrediction(ctx, userID, in, result)
	if err != nil {
		s.logger.Error("failed to record prediction",
			zap.Int64("user_id", userID),
			zap.String("request_id", middleware.RequestIDFrom(ctx)),
			zap.Error(err))
		return
	}
	s.publish(ctx, events.TypePredictionMade, userID, map[string]any{
		"history_id": historyID,
		"career":     result.PrimaryCareer,
		"confidence": result.Confidence,
	})
}

// handlePredictFromResume parses an uploaded résumé, stores it and predicts
// from the extracted skills.
func (s *Server) handlePredictFromResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	maxBytes := s.intake.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Resume must be at most %d bytes", maxBytes))
			return
		}
		s.handleError(w, r, &ErrValidation{Message: "A resume file is required in the \"file\" field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		s.handleError(w, r, &ErrValidation{Message: "Failed to read uploaded file"})
		return
	}

	upload, err := s.intake.Process(r.Context(), userID, header.Filename, data)
	switch {
	case errors.Is(err, resume.ErrTooLarge):
		s.errorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Resume must be at most %d bytes", maxBytes))
		return
	case errors.Is(err, resume.ErrUnsupportedFormat):
		s.handleError(w, r, &ErrUnsupportedMedia{Message: "Only PDF and DOCX files are supported"})
		return
	case err != nil:
		s.logger.Warn("failed to parse resume", zap.String("file", header.Filename), zap.Error(err))
		s.handleError(w, r, &ErrValidation{Message: "Could not read resume: " + err.Error()})
		return
	}

	parsed, err := json.Marshal(upload.Parsed)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	record, err := s.db.RecordResume(r.Context(), userID, types.ResumeRecord{
		FileName:   upload.FileName,
		FilePath:   upload.FilePath,
		Content:    upload.Text,
		ParsedData: parsed,
	})
	if err != nil {
		s.handleError(w, r, fmt.Errorf("failed to store resume: %w", err))
		return
	}
	s.publish(r.Context(), events.TypeResumeUploaded, userID, map[string]any{
		"resume_id": record.ID,
		"format":    string(upload.Format),
		"skills":    upload.Parsed.Skills,
	})

	in := upload.Parsed.CareerInput()
	result, err := s.predict(r.Context(), in)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.recordPrediction(r.Context(), userID, in, result)

	s.jsonResponse(w, http.StatusOK, result)
}

// handleCareerInfo returns catalog information for a career, or a
// synthesized default for unknown names.
func (s *Server) handleCareerInfo(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.learning.CareerInfo(r.PathValue("career")))
}

func (s *Server) handleCareerRoadmap(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.learning.Roadmap(r.PathValue("career")))
}

// handleGeneratePath always answers 200: when every provider fails the
// template path is returned.
func (s *Server) handleGeneratePath(w http.ResponseWriter, r *http.Request) {
	var req types.LearningPathRequest
	if err := decodeJSON(r, &req, req.Validate); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.learning.GeneratePath(r.Context(), req))
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req types.QuizRequest
	if err := decodeJSON(r, &req, req.Validate); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.learning.GenerateQuiz(r.Context(), req))
}

func (s *Server) handleSearchResources(w http.ResponseWriter, r *http.Request) {
	career := r.PathValue("career")
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"career":    career,
		"resources": s.search.ForCareer(r.Context(), career),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
