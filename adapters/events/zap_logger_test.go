package events

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLoggerAdapter(zap.New(core)).With(watermill.LogFields{"topic": LogoutTopic})

	logger.Info("published", watermill.LogFields{"uuid": "abc"})
	logger.Trace("sending", nil)
	logger.Error("publish failed", errors.New("broker down"), watermill.LogFields{"attempt": 2})

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, LogoutTopic, entries[0].ContextMap()["topic"])
	assert.Equal(t, "abc", entries[0].ContextMap()["uuid"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "broker down", entries[2].ContextMap()["error"])
	assert.EqualValues(t, 2, entries[2].ContextMap()["attempt"])
}
