package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ats_test")
	t.Setenv("PORT", "")
	t.Setenv("MATCH_THRESHOLD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0.70, cfg.MatchThreshold)
	assert.False(t, cfg.LogJSON)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_MatchThreshold(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ats_test")
	t.Setenv("MATCH_THRESHOLD", "0.85")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.85, cfg.MatchThreshold)
}

func TestLoad_MatchThresholdOutOfRange(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ats_test")

	for _, bad := range []string{"0", "1.5", "-0.3", "abc"} {
		t.Setenv("MATCH_THRESHOLD", bad)
		_, err := Load()
		assert.Error(t, err, "threshold %q should be rejected", bad)
	}
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours)
}

func TestNewJWTConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := NewJWTConfig()
	require.Error(t, err)
}

func TestNewJWTConfig_InvalidExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "0")

	_, err := NewJWTConfig()
	require.Error(t, err)
}
