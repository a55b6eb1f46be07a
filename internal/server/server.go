package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/events"
	"github.com/jonathan/career-path/internal/learning"
	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/prediction"
	"github.com/jonathan/career-path/internal/resume"
	"github.com/jonathan/career-path/internal/search"
	"github.com/jonathan/career-path/internal/server/middleware"
	"github.com/jonathan/career-path/internal/server/ratelimit"
)

// DefaultShutdownTimeout bounds graceful shutdown when Options leaves it unset.
const DefaultShutdownTimeout = 30 * time.Second

// Options holds the server's collaborators.
type Options struct {
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	Predictor *prediction.Predictor
	Learning  *learning.Service
	Search    *search.Service
	Intake    *resume.Intake
	DB        DBClient
	JWT       *JWTService
	Password  *config.PasswordConfig

	// RateLimiter defaults to an in-process limiter with the default
	// endpoint budgets.
	RateLimiter *ratelimit.Limiter
	// Publisher defaults to events.Noop.
	Publisher events.Publisher
	Logger    *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	corsOrigins     []string

	predictor   *prediction.Predictor
	learning    *learning.Service
	search      *search.Service
	intake      *resume.Intake
	db          DBClient
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	rateLimiter *ratelimit.Limiter
	publisher   events.Publisher
	logger      *zap.Logger
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	switch {
	case opts.Predictor == nil:
		return nil, errors.New("predictor is required")
	case opts.Learning == nil:
		return nil, errors.New("learning service is required")
	case opts.Search == nil:
		return nil, errors.New("search service is required")
	case opts.Intake == nil:
		return nil, errors.New("resume intake is required")
	case opts.DB == nil:
		return nil, errors.New("database client is required")
	case opts.JWT == nil:
		return nil, errors.New("JWT service is required")
	case opts.Password == nil:
		return nil, errors.New("password config is required")
	}

	s := &Server{
		shutdownTimeout: opts.ShutdownTimeout,
		corsOrigins:     opts.CORSOrigins,
		predictor:       opts.Predictor,
		learning:        opts.Learning,
		search:          opts.Search,
		intake:          opts.Intake,
		db:              opts.DB,
		jwtService:      opts.JWT,
		rateLimiter:     opts.RateLimiter,
		publisher:       opts.Publisher,
		logger:          opts.Logger,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = DefaultShutdownTimeout
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig(nil))
	}
	if s.publisher == nil {
		s.publisher = events.Noop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	s.userService = NewUserService(s.db, opts.Password)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, s)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Learning paths wait on up to two provider timeouts plus search.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes registers every endpoint on a new mux.
func (s *Server) routes() *http.ServeMux {
	validator := s.jwtService.AsTokenValidator(s.db)
	optional := middleware.OptionalAuth(validator)
	required := middleware.RequireAuth(validator)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Authentication
	mux.HandleFunc("POST /auth/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.HandleFunc("GET /auth/verify", s.authHandler.Verify)
	mux.HandleFunc("GET /auth/health", s.authHandler.Health)

	// Prediction
	mux.Handle("POST /predict", optional(http.HandlerFunc(s.handlePredict)))
	mux.Handle("POST /predict-from-resume", required(http.HandlerFunc(s.handlePredictFromResume)))
	mux.HandleFunc("GET /careers", s.handleCareers)
	mux.HandleFunc("GET /career-info/{career}", s.handleCareerInfo)

	// Learning
	mux.HandleFunc("POST /generate-path", s.handleGeneratePath)
	mux.HandleFunc("POST /generate-quiz", s.handleGenerateQuiz)
	mux.HandleFunc("GET /search-resources/{career}", s.handleSearchResources)
	mux.HandleFunc("GET /career-roadmap/{career}", s.handleCareerRoadmap)

	// User data
	mux.Handle("POST /save-learning-path", required(http.HandlerFunc(s.handleSaveLearningPath)))
	mux.Handle("GET /learning-paths", required(http.HandlerFunc(s.handleListLearningPaths)))
	mux.Handle("PATCH /learning-paths/{id}/progress", required(http.HandlerFunc(s.handleUpdateProgress)))
	mux.Handle("DELETE /learning-paths/{id}", required(http.HandlerFunc(s.handleDeleteLearningPath)))
	mux.Handle("GET /career-history", required(http.HandlerFunc(s.handleCareerHistory)))
	mux.Handle("GET /dashboard", required(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("GET /user/profile", required(http.HandlerFunc(s.handleGetProfile)))
	mux.Handle("DELETE /user/profile", required(http.HandlerFunc(s.handleDeleteProfile)))

	return mux
}

// Handler returns the routed mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	h = s.withRateLimit(h)
	h = middleware.CORS(s.corsOrigins)(h)
	h = middleware.Metrics(h)
	h = middleware.Logging(s.logger)(h)
	return middleware.RequestID(h)
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then
// drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.rateLimiter.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("failed to close event publisher", zap.Error(err))
	}

	s.logger.Info("server stopped")
	return nil
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientID(r)

		allowed, info := s.rateLimiter.Allow(r.Context(), clientID, r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			observability.RateLimitedTotal.WithLabelValues(r.URL.Path).Inc()
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		if !info.ResetTime.IsZero() {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     errorCode(http.StatusTooManyRequests),
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		retry := int(info.RetryAfter.Seconds() + 0.5)
		response["retry_after"] = retry
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}

	s.logger.Info("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, errorBody{Error: errorCode(status), Message: message})
}

// handleError maps err to its status. Internal errors are logged and
// reported with a generic message.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestIDFrom(r.Context())),
			zap.Error(err))
		s.errorResponse(w, status, "An internal error occurred")
		return
	}

	body := errorBody{Error: errorCode(status), Message: err.Error()}
	var invalid *ErrValidation
	if errors.As(err, &invalid) {
		body.Message = invalid.Message
		body.Fields = invalid.Fields
	}
	s.jsonResponse(w, status, body)
}

// decodeJSON reads the request body into dst and runs validate. Failures
// are returned as *ErrValidation.
func decodeJSON(r *http.Request, dst any, validate func() error) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Message: "Invalid request body: " + err.Error()}
	}
	if validate == nil {
		return nil
	}
	if err := validate(); err != nil {
		return newValidationError(err)
	}
	return nil
}

// publish sends an activity event. Failures are logged and never reach the
// caller.
func (s *Server) publish(ctx context.Context, eventType string, userID int64, data any) {
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, userID, data)); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("type", eventType),
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}
