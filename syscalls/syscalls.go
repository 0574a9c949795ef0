package syscalls

import (
	"fmt"
	"math"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/host"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// MaxNameLen is the size of the name buffers used by the host.
const MaxNameLen = 32

// Synthesize returns the name used for a syscall number without a known
// name.
func Synthesize(id uint16) string {
	return fmt.Sprintf("syscall_%x", id)
}

// Name returns the name of syscall id.
func Name(env *host.Env, id uint16) (string, error) {
	dst, err := env.Scratch(MaxNameLen)
	if err != nil {
		return "", err
	}
	defer dst.Release()

	n, ok := wire.Count(env.Imports().GetSyscallName(uint32(id), dst.Ref().Word()))
	if !ok {
		return "", errors.New(errors.OpSyscallName, errors.KindNotFound).
			Value(id).
			Detail("no syscall with number %d", id).
			Build()
	}
	b, err := dst.Bytes(n)
	if err != nil {
		return "", err
	}
	return cString(b), nil
}

// ID returns the number of the named syscall.
func ID(env *host.Env, name string) (uint16, error) {
	loan, err := env.LendString(name)
	if err != nil {
		return 0, err
	}
	defer loan.Release()

	ret := env.Imports().GetSyscallID(loan.Ref().Word())
	if ret < 0 {
		return 0, errors.NotFound(errors.OpSyscallID, name)
	}
	if ret > math.MaxUint16 {
		return 0, errors.New(errors.OpSyscallID, errors.KindNotFound).
			Name(name).
			Value(ret).
			Detail("host returned out of range number %d", ret).
			Build()
	}
	return uint16(ret), nil
}
