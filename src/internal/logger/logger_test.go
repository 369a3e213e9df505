package logger

import (
	"os"
	"path/filepath"
	"testing"
	"whisp-chat-svc/src/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})

	path := filepath.Join(t.TempDir(), "logs", "whisp.log")
	cfg := &config.Configuration{}
	cfg.Logs.Level = "debug"
	cfg.Logs.Path = path
	cfg.Logs.EnableJSONOutput = true

	Init(cfg)
	logrus.WithField("user_id", "alice").Info("hello")

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"user_id":"alice"`)
}

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { logrus.SetLevel(logrus.InfoLevel) })

	cfg := &config.Configuration{}
	cfg.Logs.Level = "chatty"

	Init(cfg)
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}
