package server

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/db"
	"github.com/jonathan/career-path/internal/server/middleware"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationMinutes int) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:            testJWTSecret,
		ExpirationMinutes: expirationMinutes,
	})
}

func TestJWTService_GenerateToken(t *testing.T) {
	service := setupTestJWTService(t, 60)

	token, err := service.GenerateToken(42, "ada@example.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	assert.Len(t, parts, 3, "JWT should have 3 parts separated by dots")

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := setupTestJWTService(t, 1)
	service.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	token, err := service.GenerateToken(1, "a@example.com")
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	other := NewJWTService(&config.JWTConfig{Secret: "another-secret-another-secret-another", ExpirationMinutes: 60})
	token, err := other.GenerateToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 60).ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTService_ValidateToken_Malformed(t *testing.T) {
	service := setupTestJWTService(t, 60)

	_, err := service.ValidateToken("")
	assert.Error(t, err)

	_, err = service.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 60).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_BadSubject(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 60).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 60)
	token, err := service.GenerateToken(9, "x@example.com")
	require.NoError(t, err)

	id, err := service.AsTokenValidator(nil).ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id.UserID)
	assert.Equal(t, "x@example.com", id.Email)

	_, err = service.AsTokenValidator(nil).ValidateToken(context.Background(), "garbage")
	assert.Error(t, err)
}

func TestJWTService_AsTokenValidator_ChecksAccount(t *testing.T) {
	service := setupTestJWTService(t, 60)
	fdb := newFakeDB()
	user, err := fdb.CreateUserWithStats(context.Background(), "Ada", "ada@example.com", "hash")
	require.NoError(t, err)
	token, err := service.GenerateToken(user.ID, user.Email)
	require.NoError(t, err)

	validator := service.AsTokenValidator(fdb)
	ctx := context.Background()

	id, err := validator.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)

	fdb.users[user.ID].IsActive = false
	_, err = validator.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, errUnknownAccount)

	require.NoError(t, fdb.DeleteUser(ctx, user.ID))
	_, err = validator.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, errUnknownAccount)

	_, err = service.AsTokenValidator(brokenLookup{}).ValidateToken(ctx, token)
	assert.ErrorIs(t, err, middleware.ErrIdentityUnavailable)
}

type brokenLookup struct{}

func (brokenLookup) GetUserByID(context.Context, int64) (*db.User, error) {
	return nil, errors.New("connection reset")
}

func TestJWTService_Metadata(t *testing.T) {
	service := setupTestJWTService(t, 30)
	assert.Equal(t, "HS256", service.Algorithm())
	assert.Equal(t, 30*time.Minute, service.Expiration())
}
