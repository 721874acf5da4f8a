package config

import (
	"testing"
	"time"

	"flashq/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.CloseButton)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)

	mode, err := cfg.PresentationMode()
	require.NoError(t, err)
	assert.Equal(t, model.ModeToastr, mode)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("FLASHQ_MODE", "bootstrap")
	t.Setenv("FLASHQ_CLOSE_BUTTON", "false")
	t.Setenv("FLASHQ_SESSION_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	mode, err := cfg.PresentationMode()
	require.NoError(t, err)
	assert.Equal(t, model.ModeBootstrapAlert, mode)
	assert.False(t, cfg.CloseButton)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestPresentationMode_Invalid(t *testing.T) {
	cfg := &Config{Mode: "marquee"}
	_, err := cfg.PresentationMode()
	assert.Error(t, err)
}
