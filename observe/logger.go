package observe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// CallMeta carries per-call context attached to log entries.
type CallMeta struct {
	Namespace string
	Model     string
	Key       string
}

// logLevel represents the severity of a log entry.
type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

func (l logLevel) String() string {
	switch l {
	case levelDebug:
		return "debug"
	case levelInfo:
		return "info"
	case levelWarn:
		return "warn"
	case levelError:
		return "error"
	default:
		return "unknown"
	}
}

func parseLevel(s string) logLevel {
	switch s {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// structuredLogger emits JSON log lines to stderr.
type structuredLogger struct {
	mu   *sync.Mutex
	min  logLevel
	meta *CallMeta
	out  io.Writer
}

// NewLogger creates a structured JSON logger filtering below the given level.
func NewLogger(level string) Logger {
	return &structuredLogger{
		mu:  &sync.Mutex{},
		min: parseLevel(level),
		out: os.Stderr,
	}
}

// NewLoggerWriter is like NewLogger but writes to the given writer.
// Used by tests to capture output.
func NewLoggerWriter(level string, w io.Writer) Logger {
	return &structuredLogger{
		mu:  &sync.Mutex{},
		min: parseLevel(level),
		out: w,
	}
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, levelInfo, msg, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, levelWarn, msg, fields)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, levelError, msg, fields)
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, levelDebug, msg, fields)
}

// WithCall returns a logger that attaches the call metadata to every entry.
func (l *structuredLogger) WithCall(meta CallMeta) Logger {
	return &structuredLogger{
		mu:   l.mu,
		min:  l.min,
		meta: &meta,
		out:  l.out,
	}
}

func (l *structuredLogger) log(ctx context.Context, level logLevel, msg string, fields []Field) {
	if level < l.min {
		return
	}

	entry := map[string]any{
		"time":  time.Now().UTC().Format(time.RFC3339Nano),
		"level": level.String(),
		"msg":   msg,
	}

	if l.meta != nil {
		entry["namespace"] = l.meta.Namespace
		entry["model"] = l.meta.Model
		entry["key"] = l.meta.Key
	}

	// Attach trace context when a span is recording.
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		entry["trace_id"] = span.SpanContext().TraceID().String()
		entry["span_id"] = span.SpanContext().SpanID().String()
	}

	for _, f := range fields {
		if isRedacted(f.Key) {
			entry[f.Key] = "[REDACTED]"
			continue
		}
		entry[f.Key] = f.Value
	}

	data, err := json.Marshal(entry)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"level":"error","msg":"log entry marshal failed: %s"}`, err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, string(data))
}

func isRedacted(key string) bool {
	for _, r := range RedactedFields {
		if key == r {
			return true
		}
	}
	return false
}
