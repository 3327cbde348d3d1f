// Package logx configures feedcaster's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//
// A scheduled daemon and a one-shot CI run share the same logger; only the
// sinks differ.
package logx
