package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.log(ctx, slog.LevelDebug, "HTTP request started", fields)
}

// LogHTTPEnd logs the completion of an HTTP request
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.log(ctx, level, "HTTP request completed", fields)
}

// LogDatasetLoaded logs a successful load.
func (sl *StructuredLogger) LogDatasetLoaded(ctx context.Context, loadID, source, trigger string, rowsRead, dropped, invalidCells, records int, took time.Duration) {
	fields := NewFields().
		WithLoad(loadID, source, rowsRead, dropped, invalidCells).
		WithDuration(took).
		WithOperation(OpLoad).
		WithComponent(ComponentDataset)
	fields[FieldRecords] = records
	fields[FieldTrigger] = trigger

	sl.log(ctx, slog.LevelInfo, "Dataset loaded", fields)
}

// LogLoadFailed logs a fatal load error together with its category.
func (sl *StructuredLogger) LogLoadFailed(ctx context.Context, source, trigger, kind string, err error, took time.Duration) {
	fields := NewFields().
		WithError(err).
		WithErrorKind(kind).
		WithDuration(took).
		WithOperation(OpLoad).
		WithComponent(ComponentDataset)
	fields[FieldSource] = source
	fields[FieldTrigger] = trigger

	sl.log(ctx, slog.LevelError, "Dataset load failed", fields)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.log(ctx, slog.LevelError, msg, allFields)
}

// log writes one record. A component in fields replaces the logger's own,
// so the record carries a single component key.
func (sl *StructuredLogger) log(ctx context.Context, level slog.Level, msg string, fields LogFields) {
	component := sl.logger.component
	if c, ok := fields[FieldComponent].(string); ok && c != "" {
		component = c
	}
	delete(fields, FieldComponent)
	sl.logger.Logger.Log(ctx, level, msg, append([]any{FieldComponent, component}, fields.ToSlice()...)...)
}
