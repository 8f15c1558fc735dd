// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output, debug level
//
// The level can be changed at runtime with SetLevel. Components that only need a
// *zap.Logger receive logger.Logger.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
//	logger.Info("Server starting", zap.String("port", cfg.Server.Port))
package logging
