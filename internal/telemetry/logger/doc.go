// Package logger wraps log/slog for structured logging:
//
//   - logger.go: handler setup and the Logger interface
//   - context.go: context-aware logging with request/trace IDs
//
// Features:
//
//   - JSON and text output formats
//   - Dynamic log level filtering
//   - Context propagation for request tracing
package logger
