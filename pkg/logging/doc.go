// Package logging provides a structured logging system for lisa with unified
// log handling and level filtering.
//
// This package implements a logging system built on Go's standard slog package,
// providing consistent logging behavior with structured output and level filtering.
//
// # Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// All log entries include a timestamp, the log level, a subsystem identifier
// for categorization, the message content with optional formatting, and
// optional error information.
//
// # Usage
//
//	import "github.com/pierregondois/lisa/pkg/logging"
//
//	// Initialize with Info level logging to stdout
//	logging.Init(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "Application starting up")
//	logging.Debug("Config", "Loaded configuration from %s", configPath)
//	logging.Error("ConfigFS", err, "Failed to create configuration %s", name)
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Bootstrap**: Application initialization and startup
//   - **Config**: Configuration file loading
//   - **ConfigFS**: Virtual filesystem and configuration lifecycle
//   - **Features**: Feature catalog and activation
//   - **Bridge**: Host directory mirroring
//   - **MCP**: MCP tool server operations
//   - **Shell**: Interactive shell
//
// # Thread Safety
//
// All logging functions are safe for concurrent use; thread safety is
// delegated to the underlying slog handler.
package logging
