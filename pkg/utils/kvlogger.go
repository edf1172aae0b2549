package utils

import "go.uber.org/zap"

// KVLogger adapts a zap.Logger to the key-value logging interfaces used by
// the application and dispatcher layers.
type KVLogger struct {
	base *zap.Logger
}

// NewKVLogger wraps a zap logger
func NewKVLogger(base *zap.Logger) *KVLogger {
	return &KVLogger{base: base}
}

func (l *KVLogger) Info(msg string, keysAndValues ...interface{}) {
	l.base.Info(msg, toFields(keysAndValues...)...)
}

func (l *KVLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.base.Warn(msg, toFields(keysAndValues...)...)
}

func (l *KVLogger) Error(msg string, keysAndValues ...interface{}) {
	l.base.Error(msg, toFields(keysAndValues...)...)
}

// toFields converts key-value pairs to zap fields, skipping malformed keys
func toFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
