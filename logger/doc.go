// Package logger provides structured logging for the watchdog packages
// using zerolog.
//
// Logs go to stderr by default so that a supervised command's stdout can be
// passed through untouched.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "watchdog").WithComponent("process")
//	log.Info("child started", logger.Fields(logger.FieldPID, pid))
package logger
