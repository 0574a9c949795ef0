// Package params reads the gadget's named parameters.
package params

import (
	"bytes"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/host"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// Value returns the value of parameter key, truncated to maxSize bytes
// and at the first NUL byte.
func Value(env *host.Env, key string, maxSize uint32) (string, error) {
	k, err := env.LendString(key)
	if err != nil {
		return "", err
	}
	defer k.Release()

	dst, err := env.Scratch(maxSize)
	if err != nil {
		return "", err
	}
	defer dst.Release()

	n, ok := wire.Count(env.Imports().GetParamValue(k.Ref().Word(), dst.Ref().Word()))
	if !ok {
		return "", errors.NotFound(errors.OpParamValue, key)
	}
	b, err := dst.Bytes(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}
