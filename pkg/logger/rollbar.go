package logger

import (
	"github.com/rollbar/rollbar-go"
	"go.uber.org/zap/zapcore"
)

// Reporter receives error entries forwarded from zap
type Reporter interface {
	Report(level, msg string, extras map[string]interface{})
}

type rollbarReporter struct {
	client *rollbar.Client
}

// NewRollbarReporter creates a Reporter backed by a dedicated rollbar client
func NewRollbarReporter(token, environment string) Reporter {
	return &rollbarReporter{client: rollbar.New(token, environment, "", "", "")}
}

func (r *rollbarReporter) Report(level, msg string, extras map[string]interface{}) {
	r.client.MessageWithExtras(level, msg, extras)
}

// rollbarCore a zapcore.Core that forwards entries at or above minLevel to a Reporter
type rollbarCore struct {
	zapcore.LevelEnabler
	reporter Reporter
	fields   []zapcore.Field
}

// NewRollbarCore builds the forwarding core
func NewRollbarCore(reporter Reporter, minLevel zapcore.Level) zapcore.Core {
	return &rollbarCore{LevelEnabler: minLevel, reporter: reporter}
}

func (c *rollbarCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &rollbarCore{LevelEnabler: c.LevelEnabler, reporter: c.reporter, fields: merged}
}

func (c *rollbarCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *rollbarCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	if entry.Caller.Defined {
		enc.Fields["caller"] = entry.Caller.TrimmedPath()
	}
	c.reporter.Report(rollbarLevel(entry.Level), entry.Message, enc.Fields)
	return nil
}

func (c *rollbarCore) Sync() error { return nil }

func rollbarLevel(l zapcore.Level) string {
	switch {
	case l >= zapcore.DPanicLevel:
		return rollbar.CRIT
	case l == zapcore.ErrorLevel:
		return rollbar.ERR
	case l == zapcore.WarnLevel:
		return rollbar.WARN
	default:
		return rollbar.INFO
	}
}
