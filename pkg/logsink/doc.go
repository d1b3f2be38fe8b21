// Package logsink provides ports.LogSink implementations that write run narration
// to terminals, NDJSON streams and slog loggers, plus a fan-out sink.
package logsink
