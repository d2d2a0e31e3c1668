// Package logger wraps zap for the packaging pipeline:
//   - a global sugared console logger writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing and configuration,
//   - a LineWriter that turns external tool output into log lines.
//
// Every stage receives a context and logs through the logger stored in it.
package logger
