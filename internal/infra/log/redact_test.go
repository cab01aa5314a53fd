package logs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logLine captures one record through a redacting JSON handler.
func logLine(t *testing.T, log func(logger *slog.Logger)) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	handler := NewRedactingHandler(slog.NewJSONHandler(&buf, nil), SensitiveKeys...)
	log(slog.New(handler))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	return record
}

func TestRedactingHandler_MasksSensitiveKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"Plain password", "password"},
		{"Camel-cased token", "sessionToken"},
		{"Snake-cased token", "reset_token"},
		{"Upper-cased secret", "CLIENT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := logLine(t, func(logger *slog.Logger) {
				logger.Info("msg", slog.String(tt.key, "sensitive-value"))
			})

			assert.Equal(t, Redaction, record[tt.key])
		})
	}
}

func TestRedactingHandler_PassesOtherAttrsThrough(t *testing.T) {
	record := logLine(t, func(logger *slog.Logger) {
		logger.Info("msg", slog.String("email", "a@b.com"), slog.Int64("userID", 7))
	})

	assert.Equal(t, "a@b.com", record["email"])
	assert.Equal(t, float64(7), record["userID"])
	assert.Equal(t, "msg", record["msg"])
}

func TestRedactingHandler_RedactsInsideGroups(t *testing.T) {
	record := logLine(t, func(logger *slog.Logger) {
		logger.Info("msg", slog.Group("auth",
			slog.String("token", "abc"),
			slog.String("email", "a@b.com"),
		))
	})

	group, ok := record["auth"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, Redaction, group["token"])
	assert.Equal(t, "a@b.com", group["email"])
}

func TestRedactingHandler_RedactsWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewRedactingHandler(slog.NewJSONHandler(&buf, nil), SensitiveKeys...)
	logger := slog.New(handler).With(slog.String("apiToken", "abc"))

	logger.Info("msg")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, Redaction, record["apiToken"])
}
