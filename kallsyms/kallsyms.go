// Package kallsyms checks the kernel symbol table.
package kallsyms

import (
	"github.com/wippyai/gadget-wasmapi/host"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// SymbolExists reports whether the kernel exports name. Unknown names,
// and names that cannot be passed to the host, report false.
func SymbolExists(env *host.Env, name string) bool {
	loan, err := env.LendString(name)
	if err != nil {
		return false
	}
	defer loan.Release()

	return wire.FromBool(uint64(env.Imports().KallsymsSymbolExists(loan.Ref().Word())))
}
