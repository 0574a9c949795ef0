package log

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/gadget-wasmapi/host"
)

// FromZap maps a zap level onto the host levels. Levels below debug
// become trace; panic and fatal become error.
func FromZap(l zapcore.Level) Level {
	switch {
	case l < zapcore.DebugLevel:
		return TraceLevel
	case l == zapcore.DebugLevel:
		return DebugLevel
	case l == zapcore.InfoLevel:
		return InfoLevel
	case l == zapcore.WarnLevel:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

type core struct {
	zapcore.LevelEnabler
	env *host.Env
	enc zapcore.Encoder
}

// NewCore returns a zapcore.Core writing each entry as one host log line:
// the logger name, the message, then the fields as JSON.
func NewCore(env *host.Env, enab zapcore.LevelEnabler) zapcore.Core {
	return &core{
		LevelEnabler: enab,
		env:          env,
		enc: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			NameKey:          "logger",
			MessageKey:       "msg",
			ConsoleSeparator: " ",
		}),
	}
}

// NewLogger returns a zap logger writing to the host at debug and above.
func NewLogger(env *host.Env, opts ...zap.Option) *zap.Logger {
	return zap.New(NewCore(env, zapcore.DebugLevel), opts...)
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	clone := &core{LevelEnabler: c.LevelEnabler, env: c.env, enc: c.enc.Clone()}
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return clone
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	msg := strings.TrimSuffix(buf.String(), zapcore.DefaultLineEnding)
	buf.Free()

	Log(c.env, FromZap(ent.Level), msg)
	return nil
}

func (c *core) Sync() error {
	return nil
}
