package adapter_test

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mateusmacedo/go-users/pkg/application"
	"github.com/mateusmacedo/go-users/pkg/infrastructure/zaplogger/adapter"
)

func TestZapAppLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := adapter.NewZapAppLoggerFrom(zap.New(core))
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	logger.Info(ctx, "info", map[string]interface{}{"user_id": "u-1"})
	logger.Warn(ctx, "warn", nil)
	logger.Trace(context.Background(), "trace", nil)
	application.LogError(ctx, logger, "error", assert.AnError, nil)

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, map[string]interface{}{"requestID": "req-1", "user_id": "u-1"}, entries[0].ContextMap())
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Empty(t, entries[2].ContextMap())
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, assert.AnError.Error(), entries[3].ContextMap()["error"])
}

func TestNewZapAppLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := adapter.NewZapAppLogger(adapter.Config{AppName: "users-service", Level: "loud"})
	assert.Error(t, err)

	logger, err := adapter.NewZapAppLogger(adapter.Config{AppName: "users-service", Level: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
