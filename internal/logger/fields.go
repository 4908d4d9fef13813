package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Keys shared by collection and scoring log lines, so a single run can be
// grepped by board or by scoring backend.
const (
	FieldSource   = "source"
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
)

// StringField is a key/value pair that only becomes a zap field when both
// sides are non-blank.
type StringField struct {
	Key   string
	Value string
}

// StringFields drops blank pairs. Adapters with no region or scorers with
// no model configured then log nothing instead of an empty string.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		key, value := strings.TrimSpace(f.Key), strings.TrimSpace(f.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields tolerates a nil logger; adapters built in tests often pass one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// CommonFields identifies the scoring backend on every scoring log line.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// ForSource scopes a logger to one job board adapter.
func ForSource(logger *zap.Logger, source string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldSource, Value: source})...)
}
