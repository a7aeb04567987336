package logger

import (
	"go.uber.org/zap/zapcore"
)

// Field keys the DB core lifts out of structured fields.
const (
	FieldIP        = "ip"
	FieldUserID    = "user_id"
	FieldRequestID = "request_id"
)

// DBCore tees every entry it accepts into a DBLogWriter.
type DBCore struct {
	zapcore.Core
	writer *DBLogWriter
	fields []zapcore.Field
}

// NewDBCore wraps an existing core (like console logger) and adds DB logging
func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps fields attached through logger.With so they reach the DB record too.
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &DBCore{
		Core:   c.Core.With(fields),
		writer: c.writer,
		fields: merged,
	}
}

func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	e := LogEntry{
		Level:   entry.Level,
		Message: entry.Message,
		Caller:  entry.Caller.Function,
	}

	for _, group := range [][]zapcore.Field{c.fields, fields} {
		for _, f := range group {
			if f.Type != zapcore.StringType {
				continue
			}
			switch f.Key {
			case FieldIP:
				e.IpAddress = f.String
			case FieldUserID:
				e.UserID = f.String
			case FieldRequestID:
				e.RequestID = f.String
			}
		}
	}

	c.writer.AddLog(e)

	return c.Core.Write(entry, fields)
}

func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
