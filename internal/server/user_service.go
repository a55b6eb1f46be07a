package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/db"
	"github.com/jonathan/career-path/internal/types"
)

// DBClient is the persistence surface used by the handlers. *db.Store
// implements it.
type DBClient interface {
	CreateUserWithStats(ctx context.Context, name, email, passwordHash string) (*db.User, error)
	GetUserByID(ctx context.Context, id int64) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	UpdateLastLogin(ctx context.Context, id int64) error
	DeleteUser(ctx context.Context, id int64) error

	RecordPrediction(ctx context.Context, userID int64, in *types.CareerInput, res *types.PredictionResult) (int64, error)
	CareerHistory(ctx context.Context, userID int64, limit int) ([]types.CareerHistoryEntry, error)
	RecordResume(ctx context.Context, userID int64, rec types.ResumeRecord) (*types.ResumeRecord, error)

	SaveLearningPath(ctx context.Context, userID int64, data json.RawMessage) (int64, error)
	LearningPaths(ctx context.Context, userID int64, limit int) ([]types.LearningPathEntry, error)
	UpdateLearningPathProgress(ctx context.Context, userID, pathID int64, progress int, completed []string) (*types.LearningPathEntry, error)
	DeleteLearningPath(ctx context.Context, userID, pathID int64) error

	GetStats(ctx context.Context, userID int64) (*types.UserStats, error)
	Ping(ctx context.Context) error
}

var _ DBClient = (*db.Store)(nil)

// UserService provides business logic for user authentication operations
type UserService struct {
	db             DBClient
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db DBClient, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// Register creates an account and its stats row. A taken email yields
// ErrEmailAlreadyExists.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.db.CreateUserWithStats(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrEmailAlreadyExists) {
			return nil, &ErrEmailAlreadyExists{Email: req.Email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u.User, nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	u, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		// Security: unknown email and wrong password are indistinguishable
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrInvalidCredentials{}
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !s.passwordConfig.VerifyPassword(req.Password, u.PasswordHash) || !u.IsActive {
		return nil, &ErrInvalidCredentials{}
	}

	if err := s.db.UpdateLastLogin(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	return &u.User, nil
}

// Profile returns the account for userID.
func (s *UserService) Profile(ctx context.Context, userID int64) (*types.User, error) {
	u, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrUserNotFound{UserID: userID}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u.User, nil
}

// Delete removes the account and everything it owns.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if err := s.db.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrUserNotFound{UserID: userID}
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
