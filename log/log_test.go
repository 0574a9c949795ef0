package log_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/gadget-wasmapi/igtest"
	"github.com/wippyai/gadget-wasmapi/log"
)

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "error", log.ErrorLevel.String())
	assert.Equal(t, "trace", log.TraceLevel.String())
	assert.Equal(t, "level(9)", log.Level(9).String())
	assert.Equal(t, uint32(0), uint32(log.ErrorLevel))
	assert.Equal(t, uint32(4), uint32(log.TraceLevel))
}

func TestLogf(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := igtest.New(t, igtest.WithLogger(zap.New(core)))
	env := h.Env()

	log.Errorf(env, "map %s: %d", "events", 3)
	log.Warnf(env, "warn")
	log.Infof(env, "info")
	log.Debugf(env, "debug")
	log.Tracef(env, "trace")
	log.Log(env, log.InfoLevel, "")

	assert.Equal(t, []igtest.LogLine{
		{Level: log.ErrorLevel, Msg: "map events: 3"},
		{Level: log.WarnLevel, Msg: "warn"},
		{Level: log.InfoLevel, Msg: "info"},
		{Level: log.DebugLevel, Msg: "debug"},
		{Level: log.TraceLevel, Msg: "trace"},
		{Level: log.InfoLevel, Msg: ""},
	}, h.Host().Logs())

	errs := logs.FilterMessage("map events: 3").All()
	require.Len(t, errs, 1)
	assert.Equal(t, zapcore.ErrorLevel, errs[0].Level)
	assert.Equal(t, "gadget", errs[0].ContextMap()["source"])
	assert.Zero(t, h.InUse())
}

func TestFromZap(t *testing.T) {
	tests := []struct {
		in   zapcore.Level
		want log.Level
	}{
		{zapcore.DebugLevel - 1, log.TraceLevel},
		{zapcore.DebugLevel, log.DebugLevel},
		{zapcore.InfoLevel, log.InfoLevel},
		{zapcore.WarnLevel, log.WarnLevel},
		{zapcore.ErrorLevel, log.ErrorLevel},
		{zapcore.DPanicLevel, log.ErrorLevel},
		{zapcore.FatalLevel, log.ErrorLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, log.FromZap(tt.in), tt.in.String())
	}
}

func TestNewLogger(t *testing.T) {
	h := igtest.New(t)
	logger := log.NewLogger(h.Env()).Named("gadget").With(zap.String("map", "events"))

	logger.Info("started", zap.Int("readers", 2))
	logger.Warn("slow")

	lines := h.Host().Logs()
	require.Len(t, lines, 2)
	assert.Equal(t, log.InfoLevel, lines[0].Level)
	assert.Equal(t, `gadget started {"map": "events", "readers": 2}`, lines[0].Msg)
	assert.Equal(t, log.WarnLevel, lines[1].Level)
	assert.Equal(t, `gadget slow {"map": "events"}`, lines[1].Msg)
}

func TestNewCore_LevelFilter(t *testing.T) {
	h := igtest.New(t)
	logger := zap.New(log.NewCore(h.Env(), zapcore.WarnLevel))

	logger.Info("dropped")
	logger.Error("kept")

	lines := h.Host().Logs()
	require.Len(t, lines, 1)
	assert.Equal(t, igtest.LogLine{Level: log.ErrorLevel, Msg: "kept"}, lines[0])
}
