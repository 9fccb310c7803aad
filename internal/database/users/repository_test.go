package users

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/synthage/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "users.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func createUser(t *testing.T, repo *Repository, username, email string) *entities.User {
	t.Helper()
	user := &entities.User{Username: username, Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	user := createUser(t, repo, "alice", "alice@example.com")
	assert.NotZero(t, user.ID)

	t.Run("by id", func(t *testing.T) {
		found, err := repo.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
	})

	t.Run("by username", func(t *testing.T) {
		found, err := repo.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("by login accepts email", func(t *testing.T) {
		found, err := repo.GetUserByLogin(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.GetUserByID(ctx, 999)
		assert.ErrorIs(t, err, ErrUserNotFound)
		_, err = repo.GetUserByLogin(ctx, "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRepository_UniqueUsername(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	createUser(t, repo, "bob", "bob@example.com")

	err := repo.CreateUser(context.Background(), &entities.User{Username: "bob", Email: "other@example.com"})
	assert.Error(t, err)
}

func TestRepository_Exists(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	createUser(t, repo, "carol", "carol@example.com")

	exists, err := repo.Exists(ctx, "carol", "new@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "dave", "carol@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "dave", "dave@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_LoginState(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	user := createUser(t, repo, "erin", "erin@example.com")

	lockedUntil := time.Now().Add(time.Hour)
	require.NoError(t, repo.RecordLoginFailure(ctx, user.ID, 5, &lockedUntil))

	found, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.FailedLoginCount)
	require.NotNil(t, found.LockedUntil)

	require.NoError(t, repo.RecordLoginSuccess(ctx, user.ID, time.Now()))

	found, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, found.FailedLoginCount)
	assert.Nil(t, found.LockedUntil)
	assert.NotNil(t, found.LastLoginAt)
}

func TestRepository_Count(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	createUser(t, repo, "frank", "frank@example.com")

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
