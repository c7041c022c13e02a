package observability

import (
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
)

var (
	// CLILogger writes human-readable output for one-shot commands.
	CLILogger *logging.Logger

	// ServerLogger writes JSON lines for serve and mcp.
	ServerLogger *logging.Logger
)

var logLevels = map[string]string{
	"trace":   logging.TRACE.String(),
	"debug":   logging.DEBUG.String(),
	"info":    logging.INFO.String(),
	"warn":    logging.WARN.String(),
	"warning": logging.WARN.String(),
	"error":   logging.ERROR.String(),
}

// InitCLILogger sets CLILogger. Verbose lowers the level to debug.
func InitCLILogger(serviceName string, verbose bool) {
	logger, err := logging.NewCLI(serviceName)
	if err != nil {
		fatal("Failed to initialize CLI logger", err)
	}
	if verbose {
		logger.SetLevel(logging.DEBUG)
	}
	CLILogger = logger
}

// InitServerLogger sets ServerLogger to a structured stderr logger tagged
// with namespace and a correlation middleware.
func InitServerLogger(serviceName, logLevel, namespace string) {
	static := map[string]any{}
	if namespace != "" {
		static["namespace"] = namespace
	}

	logger, err := logging.New(&logging.LoggerConfig{
		Profile:      logging.ProfileStructured,
		DefaultLevel: parseLogLevel(logLevel),
		Service:      serviceName,
		Environment:  "production",
		StaticFields: static,
		Middleware: []logging.MiddlewareConfig{
			{Name: "correlation", Enabled: true, Order: 100, Config: map[string]any{}},
		},
		Sinks: []logging.SinkConfig{{
			Type:    "console",
			Format:  "json",
			Console: &logging.ConsoleSinkConfig{Stream: "stderr"},
		}},
		EnableCaller:     true,
		EnableStacktrace: true,
	})
	if err != nil {
		fatal("Failed to initialize server logger", err)
	}
	ServerLogger = logger
}

// Logger returns the server logger when serving, otherwise the CLI logger.
// It returns nil before either is initialized.
func Logger() *logging.Logger {
	if ServerLogger != nil {
		return ServerLogger
	}
	return CLILogger
}

// parseLogLevel maps config spellings to gofulmen severities; unknown values
// fall back to INFO.
func parseLogLevel(level string) string {
	if sev, ok := logLevels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return sev
	}
	return logging.INFO.String()
}

// fatal exits with the config-invalid code. No logger exists yet, so the
// message goes straight to stderr.
func fatal(msg string, err error) {
	code := foundry.ExitConfigInvalid
	fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	if info, ok := foundry.GetExitCodeInfo(code); ok {
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}
	os.Exit(int(code))
}
