package bresult

import (
	"log"
	"sync"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states of the server.
type Logger interface {
	LogUnhandledServeError(err error)
	LogImplicitFlushError(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.Logger.Printf("bresult: unhandled server error: %s", err)
}

func (l stdLogger) LogImplicitFlushError(err error) {
	l.Logger.Printf("bresult: error while flushing implicitly: %s", err)
}

func (l stdLogger) Error(tag string, err error) {
	l.Logger.Printf("bresult: %s%s", tag, err)
}

// NewStdLogger returns a server [Logger] that prints to l, or to the standard logger if l is nil.
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}

	return stdLogger{l}
}

// NewStdErrorLogger returns an [ErrorLogger] that prints to l, or to the standard logger if l is nil.
func NewStdErrorLogger(l *log.Logger) ErrorLogger {
	if l == nil {
		l = log.Default()
	}

	return stdLogger{l}
}

// TestLogger implements both [Logger] and [ErrorLogger] by logging to a test and counting calls.
type TestLogger struct {
	tb testing.TB

	NumLogUnhandledServeError int64
	NumLogImplicitFlushError  int64
	NumError                  int64

	mu      sync.Mutex
	handled []HandledError
}

// HandledError is one call to [TestLogger.Error].
type HandledError struct {
	Tag string
	Err error
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledServeError, 1)
	l.tb.Logf("bresult: unhandled server error: %s", err)
}

func (l *TestLogger) LogImplicitFlushError(err error) {
	atomic.AddInt64(&l.NumLogImplicitFlushError, 1)
	l.tb.Logf("bresult: error while flushing implicitly: %s", err)
}

func (l *TestLogger) Error(tag string, err error) {
	atomic.AddInt64(&l.NumError, 1)
	l.tb.Logf("bresult: %s%s", tag, err)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.handled = append(l.handled, HandledError{tag, err})
}

// Handled returns the errors passed to Error so far, in order.
func (l *TestLogger) Handled() []HandledError {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]HandledError(nil), l.handled...)
}

var (
	_ Logger      = &TestLogger{}
	_ ErrorLogger = &TestLogger{}
)
