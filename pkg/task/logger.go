package task

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/charmbracelet/log"
)

// wmLogger adapts a charm logger to watermill.
type wmLogger struct {
	logger *log.Logger
}

var _ watermill.LoggerAdapter = wmLogger{}

func keyvals(fields watermill.LogFields) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}

// Error logs an error condition.
func (l wmLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error(msg, append(keyvals(fields), "err", err)...)
}

// Info logs routine messages. They are demoted to debug.
func (l wmLogger) Info(msg string, fields watermill.LogFields) {
	l.logger.Debug(msg, keyvals(fields)...)
}

// Debug is dropped.
func (l wmLogger) Debug(msg string, fields watermill.LogFields) {}

// Trace is dropped.
func (l wmLogger) Trace(msg string, fields watermill.LogFields) {}

// With returns a logger carrying fields.
func (l wmLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return wmLogger{l.logger.With(keyvals(fields)...)}
}
