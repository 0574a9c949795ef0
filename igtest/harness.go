package igtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/gadget-wasmapi/host"
	"github.com/wippyai/gadget-wasmapi/memory"
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory" (6 bytes + string)
	0x02, 0x00, // kind: memory, index 0
}

const (
	guestModule  = "guest"
	callerModule = "gadget"
)

type config struct {
	intercept func(host.Imports) host.Imports
	logger    *zap.Logger
	fixtures  []*Fixture
	params    map[string]string
	symbols   []string
	defaults  bool
	leakCheck bool
}

// Option configures a Harness.
type Option func(*config)

// WithLogger sets the logger of both the host and the guest Env.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithFixture loads f after the defaults.
func WithFixture(f *Fixture) Option {
	return func(c *config) { c.fixtures = append(c.fixtures, f) }
}

// WithParams sets gadget parameters.
func WithParams(params map[string]string) Option {
	return func(c *config) {
		for k, v := range params {
			c.params[k] = v
		}
	}
}

// WithSymbols adds kernel symbols.
func WithSymbols(names ...string) Option {
	return func(c *config) { c.symbols = append(c.symbols, names...) }
}

// WithInterceptor wraps the host functions the Env calls, for injecting
// host replies the in-memory host never produces.
func WithInterceptor(wrap func(host.Imports) host.Imports) Option {
	return func(c *config) { c.intercept = wrap }
}

// WithoutDefaults starts from an empty host.
func WithoutDefaults() Option {
	return func(c *config) { c.defaults = false }
}

// WithoutLeakCheck lets Close succeed with guest-owned maps or readers
// still live.
func WithoutLeakCheck() Option {
	return func(c *config) { c.leakCheck = false }
}

// Harness runs a Host behind real wazero host modules and hands out an
// Env whose calls cross the wasm value boundary.
type Harness struct {
	ctx    context.Context
	rt     wazero.Runtime
	mem    api.Memory
	heap   *memory.Heap
	host   *Host
	env    *host.Env
	check  bool
	closed bool
}

// NewHarness builds a harness.
func NewHarness(ctx context.Context, opts ...Option) (*Harness, error) {
	cfg := config{
		logger:    zap.NewNop(),
		params:    make(map[string]string),
		defaults:  true,
		leakCheck: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	hs := NewHost(cfg.logger)
	if cfg.defaults {
		def, err := ParseFixture(defaultFixture)
		if err != nil {
			return nil, err
		}
		cfg.fixtures = append([]*Fixture{def}, cfg.fixtures...)
	}
	for _, f := range cfg.fixtures {
		if err := f.Apply(hs); err != nil {
			return nil, fmt.Errorf("apply fixture: %w", err)
		}
	}
	for k, v := range cfg.params {
		hs.SetParam(k, v)
	}
	hs.AddSymbol(cfg.symbols...)

	rt := wazero.NewRuntime(ctx)
	guest, err := rt.InstantiateWithConfig(ctx, memoryWASM, wazero.NewModuleConfig().WithName(guestModule))
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("instantiate guest memory: %w", err), rt.Close(ctx))
	}
	mem := guest.ExportedMemory("memory")

	mods := []hostModule{
		{name: host.ModuleName, funcs: hs.exports()},
		{name: host.LogModuleName, funcs: hs.logExports()},
	}
	for _, m := range mods {
		if _, err := instantiate(ctx, rt, m.name, mem, m.funcs); err != nil {
			return nil, multierr.Append(fmt.Errorf("instantiate %s: %w", m.name, err), rt.Close(ctx))
		}
	}
	calls, err := rt.InstantiateWithConfig(ctx, trampoline(guestModule, mods), wazero.NewModuleConfig().WithName(callerModule))
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("instantiate %s: %w", callerModule, err), rt.Close(ctx))
	}

	var imports host.Imports = newBoundary(ctx, calls)
	if cfg.intercept != nil {
		imports = cfg.intercept(imports)
	}
	heap := memory.NewHeap(mem)
	env := host.New(imports, memory.WrapMemory(mem), heap, host.WithLogger(cfg.logger))

	return &Harness{
		ctx:   ctx,
		rt:    rt,
		mem:   mem,
		heap:  heap,
		host:  hs,
		env:   env,
		check: cfg.leakCheck,
	}, nil
}

// New builds a harness closed at the end of the test. Leaks are reported
// as test errors.
func New(tb testing.TB, opts ...Option) *Harness {
	tb.Helper()
	h, err := NewHarness(context.Background(), opts...)
	if err != nil {
		tb.Fatalf("igtest: %v", err)
	}
	tb.Cleanup(func() {
		if err := h.Close(); err != nil {
			tb.Errorf("igtest: %v", err)
		}
	})
	return h
}

// Env returns the guest environment.
func (h *Harness) Env() *host.Env {
	return h.env
}

// Host returns the host state.
func (h *Harness) Host() *Host {
	return h.host
}

// Memory returns the guest linear memory.
func (h *Harness) Memory() api.Memory {
	return h.mem
}

// InUse returns the number of guest allocations not yet freed. Every API
// call frees what it lends, so this is 0 between calls.
func (h *Harness) InUse() int {
	return h.heap.InUse()
}

// Close tears the runtime down and reports leaked guest resources.
// Calling Close twice is a no-op.
func (h *Harness) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	var err error
	if h.check {
		err = multierr.Combine(h.host.leaks()...)
		if n := h.heap.InUse(); n != 0 {
			err = multierr.Append(err, fmt.Errorf("%d guest allocations not freed", n))
		}
	}
	return multierr.Append(err, h.rt.Close(h.ctx))
}
