// Package logger wraps zap to give every binary in this repository:
//   - a global sugared logger with a compact console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the log_level input and the --log-level flag,
//   - leveled convenience functions (Infof, WarnKV, ErrorKV, etc.).
//
// Services never hold a logger field; they take a context and log through it,
// so a logger name set at the entry point follows the whole run.
package logger
