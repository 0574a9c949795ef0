package syscalls

import (
	"bytes"
	"encoding/binary"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/host"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// MaxParams is the number of parameter slots in a declaration.
const MaxParams = 6

const (
	paramSize       = MaxNameLen + 4
	paramsOffset    = MaxNameLen + 4
	declarationSize = paramsOffset + MaxParams*paramSize

	flagPointer = 1 << 0
)

// Param is one syscall parameter.
type Param struct {
	Name      string
	IsPointer bool
}

// Declaration is the signature of a syscall, parameters in call order.
type Declaration struct {
	Name   string
	Params []Param
}

// DeclarationOf returns the declaration of the named syscall.
func DeclarationOf(env *host.Env, name string) (Declaration, error) {
	loan, err := env.LendString(name)
	if err != nil {
		return Declaration{}, err
	}
	defer loan.Release()

	dst, err := env.Scratch(declarationSize)
	if err != nil {
		return Declaration{}, err
	}
	defer dst.Release()

	if !wire.Status(env.Imports().GetSyscallDeclaration(loan.Ref().Word(), dst.Ref().Word())).OK() {
		return Declaration{}, errors.NotFound(errors.OpSyscallDecl, name)
	}
	b, err := dst.Bytes(declarationSize)
	if err != nil {
		return Declaration{}, err
	}
	return decodeDeclaration(b)
}

// decodeDeclaration reads the host layout:
//
//	0  name       [32]byte, NUL padded
//	32 paramCount u8
//	33 padding    [3]byte
//	36 params     [6]{name [32]byte, flags u32}
func decodeDeclaration(b []byte) (Declaration, error) {
	if len(b) < declarationSize {
		return Declaration{}, errors.BufferAccess(errors.OpSyscallDecl, "short declaration")
	}
	count := int(b[MaxNameLen])
	if count > MaxParams {
		return Declaration{}, errors.New(errors.OpSyscallDecl, errors.KindBufferAccess).
			Value(count).
			Detail("declaration has %d parameters, at most %d fit", count, MaxParams).
			Build()
	}

	d := Declaration{
		Name:   cString(b[:MaxNameLen]),
		Params: make([]Param, count),
	}
	for i := range d.Params {
		p := b[paramsOffset+i*paramSize:]
		d.Params[i] = Param{
			Name:      cString(p[:MaxNameLen]),
			IsPointer: binary.LittleEndian.Uint32(p[MaxNameLen:])&flagPointer != 0,
		}
	}
	return d, nil
}

// EncodeDeclaration is the inverse of the layout read by DeclarationOf.
// Host implementations use it to answer the lookup.
func EncodeDeclaration(d Declaration) ([]byte, error) {
	if len(d.Params) > MaxParams {
		return nil, errors.New(errors.OpSyscallDecl, errors.KindBufferAccess).
			Name(d.Name).
			Detail("%d parameters, at most %d fit", len(d.Params), MaxParams).
			Build()
	}
	b := make([]byte, declarationSize)
	copy(b[:MaxNameLen-1], d.Name)
	b[MaxNameLen] = uint8(len(d.Params))
	for i, p := range d.Params {
		slot := b[paramsOffset+i*paramSize:]
		copy(slot[:MaxNameLen-1], p.Name)
		var flags uint32
		if p.IsPointer {
			flags |= flagPointer
		}
		binary.LittleEndian.PutUint32(slot[MaxNameLen:], flags)
	}
	return b, nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
