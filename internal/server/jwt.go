package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/db"
	"github.com/jonathan/career-path/internal/server/middleware"
)

// Claims are the signed token claims. The subject is the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return id, nil
}

// UserLookup resolves the account named by a token subject.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*db.User, error)
}

// errUnknownAccount rejects tokens whose account was deleted or deactivated.
var errUnknownAccount = errors.New("account not found or inactive")

// AsTokenValidator returns a TokenValidator adapter for this JWTService.
// This allows the JWTService to be used with middleware without creating import cycles.
// When users is non-nil, tokens are only accepted for existing, active accounts.
func (s *JWTService) AsTokenValidator(users UserLookup) middleware.TokenValidator {
	return &jwtServiceValidator{service: s, users: users}
}

// jwtServiceValidator adapts JWTService to middleware.TokenValidator interface.
type jwtServiceValidator struct {
	service *JWTService
	users   UserLookup
}

func (v *jwtServiceValidator) ValidateToken(ctx context.Context, tokenString string) (middleware.Identity, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return middleware.Identity{}, err
	}
	id, err := claims.UserID()
	if err != nil {
		return middleware.Identity{}, err
	}
	if v.users != nil {
		user, err := v.users.GetUserByID(ctx, id)
		switch {
		case errors.Is(err, db.ErrNotFound):
			return middleware.Identity{}, errUnknownAccount
		case err != nil:
			return middleware.Identity{}, fmt.Errorf("%w: %v", middleware.ErrIdentityUnavailable, err)
		case !user.IsActive:
			return middleware.Identity{}, errUnknownAccount
		}
	}
	return middleware.Identity{UserID: id, Email: claims.Email}, nil
}

// JWTService provides JWT token generation and validation functionality.
type JWTService struct {
	config *config.JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		config: cfg,
		now:    time.Now,
	}
}

// Algorithm is the signing algorithm name.
func (s *JWTService) Algorithm() string {
	return jwt.SigningMethodHS256.Alg()
}

// Expiration is how long issued tokens stay valid.
func (s *JWTService) Expiration() time.Duration {
	return time.Duration(s.config.ExpirationMinutes) * time.Minute
}

// GenerateToken generates a JWT token for the given user.
func (s *JWTService) GenerateToken(userID int64, email string) (string, error) {
	now := s.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.Expiration())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{s.Algorithm()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	return claims, nil
}
