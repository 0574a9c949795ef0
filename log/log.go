package log

import (
	"fmt"

	"github.com/wippyai/gadget-wasmapi/host"
)

// Level is the severity understood by the host.
type Level uint32

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

func (l Level) String() string {
	switch l {
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	case TraceLevel:
		return "trace"
	default:
		return fmt.Sprintf("level(%d)", uint32(l))
	}
}

// Log sends msg to the host at level.
func Log(env *host.Env, level Level, msg string) {
	loan, err := env.LendString(msg)
	if err != nil {
		return
	}
	defer loan.Release()

	env.Imports().GadgetLog(uint32(level), loan.Ref().Word())
}

func Errorf(env *host.Env, format string, args ...any) {
	Log(env, ErrorLevel, fmt.Sprintf(format, args...))
}

func Warnf(env *host.Env, format string, args ...any) {
	Log(env, WarnLevel, fmt.Sprintf(format, args...))
}

func Infof(env *host.Env, format string, args ...any) {
	Log(env, InfoLevel, fmt.Sprintf(format, args...))
}

func Debugf(env *host.Env, format string, args ...any) {
	Log(env, DebugLevel, fmt.Sprintf(format, args...))
}

func Tracef(env *host.Env, format string, args ...any) {
	Log(env, TraceLevel, fmt.Sprintf(format, args...))
}
