// Package logger builds configured log/slog loggers for the access-control
// services.
//
// Every component in this module accepts an optional *slog.Logger; this
// package is where the process constructs the one it hands out:
//
//	log := logger.New(
//	    logger.WithService("accesskit"),
//	    logger.WithLevel(slog.LevelDebug),
//	)
//	logger.SetAsDefault(log)
//
// Defaults are production-safe: JSON output at INFO level on stdout. Use
// WithFormat(logger.FormatText) for readable local output.
package logger
