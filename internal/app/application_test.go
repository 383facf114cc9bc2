package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"mentorlink/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 5000},
		WebSocket: config.WebSocketConfig{
			PingInterval:   30 * time.Second,
			PongWait:       60 * time.Second,
			WriteWait:      10 * time.Second,
			MaxMessageSize: 65536,
		},
		Storage: config.StorageConfig{Backend: "memory"},
		Log:     config.LogConfig{Level: "info"},
	}
}

func TestNew_WiresComponents(t *testing.T) {
	req := require.New(t)

	app, err := New(testConfig(t), zerolog.Nop())
	req.NoError(err)
	req.Equal("127.0.0.1:5000", app.Addr())

	req.NoError(app.Stop(context.Background()))
}

func TestNew_SQLiteBackend(t *testing.T) {
	req := require.New(t)

	cfg := testConfig(t)
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "rooms.db")

	app, err := New(cfg, zerolog.Nop())
	req.NoError(err)
	req.NoError(app.Stop(context.Background()))
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	req := require.New(t)

	cfg := testConfig(t)
	cfg.Server.Port = 0
	_, err := New(cfg, zerolog.Nop())
	req.Error(err)

	cfg = testConfig(t)
	cfg.Storage.Backend = "postgres"
	_, err = New(cfg, zerolog.Nop())
	req.Error(err)
}
