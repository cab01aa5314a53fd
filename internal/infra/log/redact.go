package logs

import (
	"context"
	"log/slog"
	"strings"
)

// Redaction replaces the value of every sensitive attribute.
const Redaction = "***"

// SensitiveKeys are the attribute keys whose values are masked before a record
// is written. Matching is case-insensitive and by substring, so "sessionToken"
// and "reset_token" are both caught by "token".
var SensitiveKeys = []string{"password", "token", "secret"}

// redactingHandler wraps another slog.Handler and masks sensitive attribute
// values before delegating. Group structure and all other attributes pass
// through untouched.
type redactingHandler struct {
	inner slog.Handler
	keys  []string
}

// NewRedactingHandler wraps inner so that any attribute whose key contains one
// of the given fragments (case-insensitive) is logged as Redaction.
func NewRedactingHandler(inner slog.Handler, keys ...string) slog.Handler {
	lowered := make([]string, 0, len(keys))
	for _, k := range keys {
		lowered = append(lowered, strings.ToLower(k))
	}

	return &redactingHandler{inner: inner, keys: lowered}
}

// Enabled reports whether the wrapped handler handles records at the given level.
func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle masks sensitive attributes on the record and delegates to the wrapped handler.
func (h *redactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(h.redact(attr))

		return true
	})

	return h.inner.Handle(ctx, clean)
}

// WithAttrs returns a new handler whose wrapped handler carries the redacted attributes.
func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		redacted = append(redacted, h.redact(attr))
	}

	return &redactingHandler{inner: h.inner.WithAttrs(redacted), keys: h.keys}
}

// WithGroup returns a new handler with the given group opened on the wrapped handler.
func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{inner: h.inner.WithGroup(name), keys: h.keys}
}

func (h *redactingHandler) redact(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		redacted := make([]slog.Attr, 0, len(members))
		for _, member := range members {
			redacted = append(redacted, h.redact(member))
		}

		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(redacted...)}
	}

	key := strings.ToLower(attr.Key)
	for _, fragment := range h.keys {
		if strings.Contains(key, fragment) {
			return slog.String(attr.Key, Redaction)
		}
	}

	return attr
}
