package kallsyms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wippyai/gadget-wasmapi/igtest"
	"github.com/wippyai/gadget-wasmapi/kallsyms"
)

func TestSymbolExists(t *testing.T) {
	h := igtest.New(t, igtest.WithSymbols("security_bprm_check"))

	assert.True(t, kallsyms.SymbolExists(h.Env(), "socket_file_ops"))
	assert.True(t, kallsyms.SymbolExists(h.Env(), "security_bprm_check"))
	assert.False(t, kallsyms.SymbolExists(h.Env(), "abcde_bad_name"))
	assert.False(t, kallsyms.SymbolExists(h.Env(), ""))
	assert.Zero(t, h.InUse())
}
