package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootcalc/rootcalc-api/internal/config"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"uppercase level", "INFO"},
		{"invalid level falls back to info", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{LogLevel: tt.logLevel})
			require.NoError(t, err)
			require.NotNil(t, logger)

			// Setup installs the logger as the process default.
			assert.Equal(t, logger, slog.Default())
		})
	}
}

func TestFromContextFallback(t *testing.T) {
	// Without a stored logger, FromContext returns the default.
	got := FromContext(context.Background())
	assert.Equal(t, slog.Default(), got)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "test")

	ctx := WithLogger(context.Background(), custom)
	got := FromContext(ctx)
	assert.Equal(t, custom, got)

	// The original context is unchanged.
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
