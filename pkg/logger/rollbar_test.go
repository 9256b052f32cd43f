package logger

import (
	"errors"
	"testing"

	"github.com/rollbar/rollbar-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ourcodingkiddos/backend/config"
)

type captured struct {
	level  string
	msg    string
	extras map[string]interface{}
}

type fakeReporter struct {
	got []captured
}

func (f *fakeReporter) Report(level, msg string, extras map[string]interface{}) {
	f.got = append(f.got, captured{level: level, msg: msg, extras: extras})
}

func TestRollbarCore_ForwardsErrorsOnly(t *testing.T) {
	rep := &fakeReporter{}
	log := zap.New(NewRollbarCore(rep, zapcore.ErrorLevel))

	log.Info("ignored")
	log.Warn("ignored too")
	log.With(zap.String("module", "payments")).Error("webhook failed", zap.Error(errors.New("boom")))

	require.Len(t, rep.got, 1)
	assert.Equal(t, rollbar.ERR, rep.got[0].level)
	assert.Equal(t, "webhook failed", rep.got[0].msg)
	assert.Equal(t, "payments", rep.got[0].extras["module"])
	assert.Equal(t, "boom", rep.got[0].extras["error"])
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&config.LogConfig{Level: "verbose", Format: "json"})
	assert.Error(t, err)
}
