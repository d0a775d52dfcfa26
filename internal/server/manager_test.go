package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManagerStartAndShutdown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	m := NewManager(http.NotFoundHandler(), cfg, zap.NewNop())
	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())

	// Starting twice is an error.
	assert.Error(t, m.Start())

	require.NoError(t, m.Shutdown(context.Background()))
	assert.False(t, m.IsRunning())

	// Shutdown is idempotent.
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestManagerStartAfterCloseFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	m := NewManager(http.NotFoundHandler(), cfg, zap.NewNop())
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Error(t, m.Start())
}
