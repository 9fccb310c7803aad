package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/synthage/internal/entities"
)

func TestService_CreateUser(t *testing.T) {
	ta := setupAuth(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{name: "missing username", username: "", email: "a@example.com", password: testPassword, wantErr: ErrUsernameRequired},
		{name: "missing email", username: "alice", email: "", password: testPassword, wantErr: ErrEmailRequired},
		{name: "missing password", username: "alice", email: "a@example.com", password: "", wantErr: ErrPasswordRequired},
		{name: "username too short", username: "ab", email: "a@example.com", password: testPassword, wantErr: ErrUsernameInvalid},
		{name: "username with spaces", username: "al ice", email: "a@example.com", password: testPassword, wantErr: ErrUsernameInvalid},
		{name: "bad email", username: "alice", email: "not-an-email", password: testPassword, wantErr: ErrEmailInvalid},
		{name: "short password", username: "alice", email: "a@example.com", password: "short", wantErr: ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := ta.svc.CreateUser(ctx, tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, user)
		})
	}

	t.Run("valid user", func(t *testing.T) {
		user, err := ta.svc.CreateUser(ctx, "  alice  ", "alice@example.com", testPassword)
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.NotEqual(t, testPassword, user.PasswordHash)
		assert.NoError(t, CheckPassword(testPassword, user.PasswordHash))
	})

	var count int64
	ta.db.Model(&entities.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestService_CreateUser_Duplicate(t *testing.T) {
	ta := setupAuth(t)
	ctx := context.Background()
	ta.createUser(t, "alice")

	_, err := ta.svc.CreateUser(ctx, "alice", "other@example.com", testPassword)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = ta.svc.CreateUser(ctx, "bob", "alice@example.com", testPassword)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Authenticate(t *testing.T) {
	ta := setupAuth(t)
	ctx := context.Background()
	created := ta.createUser(t, "alice")

	t.Run("by username", func(t *testing.T) {
		user, err := ta.svc.Authenticate(ctx, "alice", testPassword)
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("by email", func(t *testing.T) {
		user, err := ta.svc.Authenticate(ctx, "alice@example.com", testPassword)
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := ta.svc.Authenticate(ctx, "alice", "wrong-password-123")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := ta.svc.Authenticate(ctx, "nobody", testPassword)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_Authenticate_Lockout(t *testing.T) {
	ta := setupAuth(t)
	ctx := context.Background()
	created := ta.createUser(t, "alice")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ta.svc.now = func() time.Time { return now }

	for i := 0; i < ta.cfg.MaxLoginAttempts; i++ {
		_, err := ta.svc.Authenticate(ctx, "alice", "wrong-password-123")
		require.ErrorIs(t, err, ErrInvalidPassword)
	}

	stored, err := ta.users.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ta.cfg.MaxLoginAttempts, stored.FailedLoginCount)
	require.NotNil(t, stored.LockedUntil)

	// Correct password is refused while locked
	_, err = ta.svc.Authenticate(ctx, "alice", testPassword)
	assert.ErrorIs(t, err, ErrAccountLocked)

	now = now.Add(ta.cfg.LockoutDuration + time.Minute)
	user, err := ta.svc.Authenticate(ctx, "alice", testPassword)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	stored, err = ta.users.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedLoginCount)
	assert.Nil(t, stored.LockedUntil)
}

func TestService_GetUserByID(t *testing.T) {
	ta := setupAuth(t)
	ctx := context.Background()
	created := ta.createUser(t, "alice")

	user, err := ta.svc.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = ta.svc.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
