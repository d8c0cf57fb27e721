package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"stoic-notes/notes/config"
)

func TestNew(t *testing.T) {
	logger, err := New(config.Config{AppEnv: "test", LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.log")
	logger, err := New(config.Config{AppEnv: "test", LogLevel: "info", LogFile: path})
	require.NoError(t, err)

	logger.Info("note saved", zap.String("noteId", "abc"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"note saved"`)
	assert.Contains(t, string(data), `"timestamp":`)
	assert.Contains(t, string(data), `"env":"test"`)
}

func TestLogDuration(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})
	LogDuration(ctx, logger, "ReadNote")()

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "ReadNote", fields["func"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Contains(t, fields, "duration_ms")
}

func TestLogDurationWithoutLambdaContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	LogDuration(context.Background(), zap.New(core), "ReadNote")()

	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "request_id")
}
