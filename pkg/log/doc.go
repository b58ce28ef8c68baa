// Package log provides a structured event trace for codec devices.
//
// The trace records what a device observed: feedback value changes,
// usage start/end edges and isolated failures (producer errors, usage
// tracker errors). It is separate from operational logging (slog) and is
// meant for post-mortem analysis of call and mute state over time.
//
// # Basic Usage
//
//	// For development: write events to the console via slog
//	opts = append(opts, codec.WithEventLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For production: append events to a binary file
//	fl, _ := log.NewFileLogger("/var/log/codec/room-101.clog")
//
//	// Both
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys,
// conventionally using the .clog extension. Reader iterates a file with
// optional filtering.
package log
