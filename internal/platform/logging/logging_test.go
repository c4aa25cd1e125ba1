package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hrms/internal/platform/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrms.log")
	logger, err := New(config.Config{LogLevel: "debug", LogFile: path, Environment: "test"})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	logger.Info("ledger generated", zap.Int64("ledgerId", 42))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"ledger generated"`)
	assert.Contains(t, string(data), `"ledgerId":42`)
	assert.Contains(t, string(data), `"service":"hrms"`)
}
