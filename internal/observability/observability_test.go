package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerPrefersServerLogger(t *testing.T) {
	prevCLI, prevServer := CLILogger, ServerLogger
	t.Cleanup(func() { CLILogger, ServerLogger = prevCLI, prevServer })

	CLILogger, ServerLogger = nil, nil
	require.Nil(t, Logger())

	InitCLILogger("namefinder-test", true)
	require.NotNil(t, CLILogger)
	require.Same(t, CLILogger, Logger())
	Logger().Debug("cli logger ready", zap.String("component", "test"))

	InitServerLogger("namefinder-test", "warn", "namefinder")
	require.NotNil(t, ServerLogger)
	require.Same(t, ServerLogger, Logger())
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "TRACE",
		"debug":   "DEBUG",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"loud":    "INFO",
	}
	for in, want := range cases {
		require.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestResolvePort(t *testing.T) {
	port, err := resolvePort("[::]:9090")
	require.NoError(t, err)
	require.Equal(t, 9090, port)

	_, err = resolvePort("no-port")
	require.Error(t, err)
}

func TestMetricsLifecycle(t *testing.T) {
	prevSys, prevExp := TelemetrySystem, PrometheusExporter
	t.Cleanup(func() { TelemetrySystem, PrometheusExporter = prevSys, prevExp })

	require.NoError(t, InitMetrics("namefinder_test", 0))
	require.NotNil(t, TelemetrySystem)
	require.NotNil(t, PrometheusExporter)
	require.NotZero(t, GetMetricsPort())

	require.NoError(t, ShutdownMetrics())
	require.Nil(t, TelemetrySystem)
	require.Nil(t, PrometheusExporter)
	require.Zero(t, GetMetricsPort())
	require.NoError(t, ShutdownMetrics())
}
