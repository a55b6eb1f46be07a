package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/db"
	"github.com/jonathan/career-path/internal/types"
)

func newTestUserService(t *testing.T) (*UserService, *fakeDB) {
	t.Helper()
	fdb := newFakeDB()
	return NewUserService(fdb, &config.PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "pepper"}), fdb
}

func TestUserService_Register(t *testing.T) {
	svc, fdb := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.True(t, user.IsActive)

	stored := fdb.users[user.ID].PasswordHash
	assert.NotEqual(t, "password123", stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("password123pepper")))

	_, err = svc.Register(ctx, &types.CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"})
	var exists *ErrEmailAlreadyExists
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "ada@example.com", exists.Email)
}

func TestUserService_Login(t *testing.T) {
	svc, fdb := newTestUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &types.CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(ctx, &types.LoginRequest{Email: "ada@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.NotNil(t, fdb.users[registered.ID].LastLogin)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &types.LoginRequest{Email: "ada@example.com", Password: "nope"})
		var bad *ErrInvalidCredentials
		assert.ErrorAs(t, err, &bad)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &types.LoginRequest{Email: "nobody@example.com", Password: "password123"})
		var bad *ErrInvalidCredentials
		assert.ErrorAs(t, err, &bad)
	})

	t.Run("inactive account", func(t *testing.T) {
		fdb.users[registered.ID].IsActive = false
		defer func() { fdb.users[registered.ID].IsActive = true }()

		_, err := svc.Login(ctx, &types.LoginRequest{Email: "ada@example.com", Password: "password123"})
		var bad *ErrInvalidCredentials
		assert.ErrorAs(t, err, &bad)
	})
}

func TestUserService_ProfileAndDelete(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &types.CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)

	got, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	require.NoError(t, svc.Delete(ctx, user.ID))

	_, err = svc.Profile(ctx, user.ID)
	var missing *ErrUserNotFound
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, user.ID, missing.UserID)

	err = svc.Delete(ctx, user.ID)
	assert.ErrorAs(t, err, &missing)
}

type brokenDB struct{ *fakeDB }

func (brokenDB) GetUserByEmail(context.Context, string) (*db.User, error) {
	return nil, errors.New("connection reset")
}

func TestUserService_Login_StoreFailureIsInternal(t *testing.T) {
	svc := NewUserService(brokenDB{newFakeDB()}, &config.PasswordConfig{BcryptCost: bcrypt.MinCost})

	_, err := svc.Login(context.Background(), &types.LoginRequest{Email: "ada@example.com", Password: "x"})
	require.Error(t, err)
	var bad *ErrInvalidCredentials
	assert.False(t, errors.As(err, &bad))
	assert.Equal(t, 500, HTTPStatus(err))
}
