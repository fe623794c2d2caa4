// Package errors provides the structured error type shared by the watchdog
// packages. Every AppError carries a machine-readable code, a retryable flag
// and the exit status the CLI should terminate with when the error reaches it.
package errors
