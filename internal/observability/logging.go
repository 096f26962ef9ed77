// Package observability holds the process-wide loggers. Commands log
// through CLILogger (console encoding, stderr); the HTTP server logs
// through ServerLogger (JSON encoding).
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger for command-line output. It is a no-op until
// Init runs, so packages may log unconditionally.
var CLILogger = zap.NewNop()

// ServerLogger is the structured logger for the HTTP server.
var ServerLogger = zap.NewNop()

// Init builds both loggers at the given level ("debug", "info", "warn",
// "error").
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cliCfg := zap.NewDevelopmentConfig()
	cliCfg.Level = zap.NewAtomicLevelAt(lvl)
	cliCfg.OutputPaths = []string{"stderr"}
	cli, err := cliCfg.Build()
	if err != nil {
		return fmt.Errorf("build cli logger: %w", err)
	}

	srvCfg := zap.NewProductionConfig()
	srvCfg.Level = zap.NewAtomicLevelAt(lvl)
	srv, err := srvCfg.Build()
	if err != nil {
		return fmt.Errorf("build server logger: %w", err)
	}

	CLILogger = cli
	ServerLogger = srv
	return nil
}

// Sync flushes both loggers. Safe to call on the no-op loggers.
func Sync() {
	_ = CLILogger.Sync()
	_ = ServerLogger.Sync()
}
