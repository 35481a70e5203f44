package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("UNCERTAINTY_THRESHOLD", "")
	t.Setenv("SEVERITY_BEFORE_GATE", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("CLASSIFIER_BACKEND", "")
	t.Setenv("OVERLAY_ALPHA", "")
	t.Setenv("SESSION_TTL_HOURS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 50.0, cfg.UncertaintyThreshold)
	require.Equal(t, 75.0, cfg.ModerateThreshold)
	require.True(t, cfg.SeverityBeforeGate)
	require.Equal(t, 0.4, cfg.OverlayAlpha)
	require.Equal(t, "onnx", cfg.ClassifierBackend)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.True(t, cfg.HTTPEnabled())
	require.Empty(t, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("UNCERTAINTY_THRESHOLD", "40")
	t.Setenv("SEVERITY_BEFORE_GATE", "false")
	t.Setenv("HTTP_ADDR", "-")
	t.Setenv("CLASSIFIER_BACKEND", "GoCV")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 40.0, cfg.UncertaintyThreshold)
	require.False(t, cfg.SeverityBeforeGate)
	require.False(t, cfg.HTTPEnabled())
	require.Equal(t, "gocv", cfg.ClassifierBackend)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("UNCERTAINTY_THRESHOLD", "high")
	t.Setenv("EXPLAIN", "maybe")

	_, err := Load()
	require.ErrorContains(t, err, "UNCERTAINTY_THRESHOLD")
	require.ErrorContains(t, err, "EXPLAIN")

	t.Setenv("UNCERTAINTY_THRESHOLD", "140")
	t.Setenv("EXPLAIN", "")
	_, err = Load()
	require.ErrorContains(t, err, "within [0,100]")

	t.Setenv("UNCERTAINTY_THRESHOLD", "")
	t.Setenv("OVERLAY_ALPHA", "0")
	_, err = Load()
	require.ErrorContains(t, err, "OVERLAY_ALPHA must be within (0,1]")

	t.Setenv("OVERLAY_ALPHA", "")
	t.Setenv("CLASSIFIER_BACKEND", "tflite")
	_, err = Load()
	require.ErrorContains(t, err, "CLASSIFIER_BACKEND")
}
