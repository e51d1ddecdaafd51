package brapptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [brapp.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [brapp.BaseEnvironment] env vars to test defaults.
// Port is required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BR_SERVICE_NAME: "test"
//   - BR_HEALTH_CHECK_PATH: "/health"
//   - BR_OTEL_EXPORTER: "none"
//   - BR_LOG_LEVEL: "error"
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BR_PORT", strconv.Itoa(port))
	t.Setenv("BR_SERVICE_NAME", "test")
	t.Setenv("BR_HEALTH_CHECK_PATH", "/health")
	t.Setenv("BR_OTEL_EXPORTER", "none")
	t.Setenv("BR_LOG_LEVEL", "error")

	return &Env{t: t}
}

// ServiceName overrides BR_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_SERVICE_NAME", name)

	return e
}

// HealthCheckPath overrides BR_HEALTH_CHECK_PATH.
func (e *Env) HealthCheckPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_HEALTH_CHECK_PATH", path)

	return e
}

// OtelExporter overrides BR_OTEL_EXPORTER.
func (e *Env) OtelExporter(exporter string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_OTEL_EXPORTER", exporter)

	return e
}

// ResponseBufferLimit overrides BR_RESPONSE_BUFFER_LIMIT.
func (e *Env) ResponseBufferLimit(limit int) *Env {
	e.t.Helper()
	e.t.Setenv("BR_RESPONSE_BUFFER_LIMIT", strconv.Itoa(limit))

	return e
}

// LogHandledErrors overrides BR_LOG_HANDLED_ERRORS.
func (e *Env) LogHandledErrors(enabled bool) *Env {
	e.t.Helper()
	e.t.Setenv("BR_LOG_HANDLED_ERRORS", strconv.FormatBool(enabled))

	return e
}

// RequestTimeout overrides BR_REQUEST_TIMEOUT.
func (e *Env) RequestTimeout(d string) *Env {
	e.t.Helper()
	e.t.Setenv("BR_REQUEST_TIMEOUT", d)

	return e
}
