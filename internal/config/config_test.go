package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "studychat", cfg.AppName)
	assert.Equal(t, "/ws/chat", cfg.Server.WebSocketPath)
	assert.Equal(t, "8081", cfg.APIServer.Port)
	assert.Equal(t, "chat-notifications", cfg.Kafka.NotificationsTopic)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 60, cfg.WebSocket.PongWaitSeconds)
	assert.Less(t, cfg.WebSocket.PingPeriodSeconds, cfg.WebSocket.PongWaitSeconds)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := []byte(`
API_SERVER:
  PORT: "9000"
KAFKA:
  NOTIFICATIONS_TOPIC: other-topic
`)
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.APIServer.Port)
	assert.Equal(t, "other-topic", cfg.Kafka.NotificationsTopic)
	// Unset keys keep their defaults.
	assert.Equal(t, "8080", cfg.Server.Port)
}
