package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/synthage/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(dbPath, Options{LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, model := range []any{&entities.User{}, &entities.Preset{}, &entities.Knob{}, &entities.AuditEvent{}} {
		assert.True(t, db.DB.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.DB.Migrator().HasColumn(&entities.Knob{}, "sort_order"))
	assert.NoError(t, db.Ping())
}

func TestNewDatabase_EnforcesForeignKeys(t *testing.T) {
	db := setupTestDB(t)

	err := db.DB.Create(&entities.Knob{PresetID: 999, Channel: 1, Max: 127}).Error
	assert.Error(t, err, "knob without a preset must be rejected")
}

func TestNewDatabase_CascadesKnobDeletion(t *testing.T) {
	db := setupTestDB(t)

	preset := &entities.Preset{Name: "Cascade", KeysChannel: 1, NumberOfKnobs: 2}
	require.NoError(t, db.DB.Create(preset).Error)
	require.NoError(t, db.DB.Create(&[]entities.Knob{
		{PresetID: preset.ID, Channel: 1, CC: 1, Max: 127},
		{PresetID: preset.ID, Channel: 1, CC: 2, Max: 127},
	}).Error)

	require.NoError(t, db.DB.Delete(&entities.Preset{}, preset.ID).Error)

	var count int64
	require.NoError(t, db.DB.Model(&entities.Knob{}).Where("preset_id = ?", preset.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "app.db?_foreign_keys=on&_busy_timeout=5000", dsn("app.db"))
	assert.Equal(t, "app.db?_journal=WAL&_foreign_keys=on&_busy_timeout=5000", dsn("app.db?_journal=WAL"))
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Info, gormLogLevel("INFO"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}
