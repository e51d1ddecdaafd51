package brapp

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	healthCheckPath() string
	logLevel() zapcore.Level
	otelExporter() string
	responseBufferLimit() int
	logHandledErrors() bool
	requestTimeout() time.Duration
}

// BaseEnvironment contains the environment variables every app reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port            int           `env:"BR_PORT,required"`
	ServiceName     string        `env:"BR_SERVICE_NAME,required"`
	HealthCheckPath string        `env:"BR_HEALTH_CHECK_PATH" envDefault:"/health"`
	LogLevel        zapcore.Level `env:"BR_LOG_LEVEL" envDefault:"info"`
	OtelExporter    string        `env:"BR_OTEL_EXPORTER" envDefault:"stdout"`
	// ResponseBufferLimit caps how many bytes a route may buffer before it flushes, -1 means no limit.
	ResponseBufferLimit int  `env:"BR_RESPONSE_BUFFER_LIMIT" envDefault:"-1"`
	LogHandledErrors    bool `env:"BR_LOG_HANDLED_ERRORS" envDefault:"true"`
	// RequestTimeout bounds every request. Zero disables the deadline.
	RequestTimeout time.Duration `env:"BR_REQUEST_TIMEOUT" envDefault:"30s"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) healthCheckPath() string {
	return e.HealthCheckPath
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) otelExporter() string {
	return e.OtelExporter
}

func (e BaseEnvironment) responseBufferLimit() int {
	return e.ResponseBufferLimit
}

func (e BaseEnvironment) logHandledErrors() bool {
	return e.LogHandledErrors
}

func (e BaseEnvironment) requestTimeout() time.Duration {
	return e.RequestTimeout
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}

		switch e.otelExporter() {
		case ExporterStdout, ExporterXRayUDP, ExporterNone:
		default:
			return e, errors.Newf("unsupported BR_OTEL_EXPORTER: %q (supported: %s, %s, %s)",
				e.otelExporter(), ExporterStdout, ExporterXRayUDP, ExporterNone)
		}

		return e, nil
	}
}
