package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8000), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultFirmwareDir, cfg.Firmware.Dir)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
	assert.Equal(t, "30 3 * * *", cfg.Cleanup.Schedule)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.True(t, cfg.Auth.SecureCookies)
	assert.False(t, cfg.Validation.RejectMinAboveMax)
	assert.False(t, cfg.Validation.RequireKnobs)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FIRMWARE_DIR", "/var/lib/synthage/firmware")
	t.Setenv("VALIDATION_REJECT_DUPLICATE_CC", "true")
	t.Setenv("AUTH_SECURE_COOKIES", "false")
	t.Setenv("AUTH_LOCKOUT_DURATION", "5m")
	t.Setenv("TASKS_ENABLED", "false")

	cfg := NewConfig()

	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, "/var/lib/synthage/firmware", cfg.Firmware.Dir)
	assert.True(t, cfg.Validation.RejectDuplicateCC)
	assert.False(t, cfg.Auth.SecureCookies)
	assert.Equal(t, 5*time.Minute, cfg.Auth.LockoutDuration)
	assert.False(t, cfg.Tasks.Enabled)
}
