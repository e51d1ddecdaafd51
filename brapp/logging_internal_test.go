package brapp

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEnv struct {
	level   zapcore.Level
	otelExp string
	timeout time.Duration
}

func (e testEnv) port() int                     { return 8080 }
func (e testEnv) serviceName() string           { return "test" }
func (e testEnv) healthCheckPath() string       { return "/health" }
func (e testEnv) logLevel() zapcore.Level       { return e.level }
func (e testEnv) responseBufferLimit() int      { return -1 }
func (e testEnv) logHandledErrors() bool        { return true }
func (e testEnv) requestTimeout() time.Duration { return e.timeout }
func (e testEnv) otelExporter() string {
	if e.otelExp == "" {
		return ExporterStdout
	}

	return e.otelExp
}

func TestNewLogger(t *testing.T) {
	for _, lvl := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
		t.Run(lvl.String(), func(t *testing.T) {
			logger, err := NewLogger(testEnv{level: lvl})
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.True(t, logger.Core().Enabled(lvl))
			if lvl > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(lvl-1))
			}
		})
	}
}

func TestZapServerLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := newZapServerLogger(zap.New(core))

	l.LogUnhandledServeError(errors.New("boom"))
	l.LogImplicitFlushError(errors.New("broken pipe"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, "unhandled server error", entries[0].Message)
	assert.Equal(t, "bresult.brapp", entries[0].LoggerName)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])

	assert.Equal(t, "error while flushing implicitly", entries[1].Message)
	assert.Equal(t, "broken pipe", entries[1].ContextMap()["error"])
}

func TestZapErrorLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapErrorLogger(zap.New(core))

	l.Error("HANDLED ERROR: ", errors.New("See ya!"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "HANDLED ERROR", entries[0].Message)
	assert.Equal(t, "handler", entries[0].LoggerName)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "See ya!", entries[0].ContextMap()["error"])
}
