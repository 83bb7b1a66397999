package offheap

import (
	"context"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/internal/abi"
	"github.com/wippyai/fasttuple/internal/wasmbin"
)

const (
	// DefaultWasmPages is the linear memory size used when WasmConfig.Pages
	// is not set (1 MiB).
	DefaultWasmPages = 16
	// MaxWasmPages keeps the memory size addressable by a uint32.
	MaxWasmPages = wasmbin.MaxPages - 1

	memoryExport = "memory"
)

// WasmConfig holds configuration for Wasm arena creation
type WasmConfig struct {
	// Runtime hosts the arena's memory module. Nil creates a private
	// runtime that the arena closes with itself; a shared runtime is left
	// open.
	Runtime wazero.Runtime
	// Logger receives chunk and leak events. Nil uses the package logger.
	Logger *zap.Logger
	// ModuleName names the memory module inside the runtime. Empty keeps it
	// anonymous, so several arenas can share a runtime.
	ModuleName string
	// Pages is the fixed linear memory size in 64 KiB pages.
	Pages uint32
}

// WasmArena allocates blocks inside a wazero linear memory, so tuple
// storage is directly addressable by guest code in the same runtime.
//
// The memory is declared with equal minimum and maximum sizes and never
// grows; block slices therefore stay valid for the arena's lifetime.
type WasmArena struct {
	*slab
	rt      wazero.Runtime
	mod     api.Module
	mem     api.Memory
	closed  atomic.Bool
	ownsRun bool
}

// NewWasmArena instantiates a memory-only module and carves blocks from its
// exported memory.
func NewWasmArena(ctx context.Context, cfg *WasmConfig) (*WasmArena, error) {
	if cfg == nil {
		cfg = &WasmConfig{}
	}
	pages := cfg.Pages
	if pages == 0 {
		pages = DefaultWasmPages
	}
	if pages > MaxWasmPages {
		return nil, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(pages).
			Detail("wasm arena of %d pages exceeds the %d page limit", pages, MaxWasmPages).
			Build()
	}

	rt, owns := cfg.Runtime, false
	if rt == nil {
		rt, owns = wazero.NewRuntime(ctx), true
	}

	mod, err := rt.InstantiateWithConfig(ctx, wasmbin.MemoryModule(pages, memoryExport),
		wazero.NewModuleConfig().WithName(cfg.ModuleName))
	if err != nil {
		if owns {
			_ = rt.Close(ctx)
		}
		return nil, errors.Wrap(errors.PhaseAlloc, errors.KindAllocation, err, "instantiate wasm arena memory")
	}

	mem := mod.ExportedMemory(memoryExport)
	view, ok := mem.Read(0, mem.Size())
	if !ok {
		_ = mod.Close(ctx)
		if owns {
			_ = rt.Close(ctx)
		}
		return nil, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("cannot view wasm arena memory").
			Build()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = Logger()
	}
	logger.Debug("wasm arena created", zap.Uint32("pages", pages), zap.Uint32("bytes", mem.Size()))

	return &WasmArena{
		slab:    newSlab("wasm arena", &fixedSource{data: view, start: abi.WordAlign}, logger),
		rt:      rt,
		mod:     mod,
		mem:     mem,
		ownsRun: owns,
	}, nil
}

// Memory returns the linear memory blocks live in.
func (a *WasmArena) Memory() api.Memory {
	return a.mem
}

// Module returns the instantiated memory module.
func (a *WasmArena) Module() api.Module {
	return a.mod
}

// Offset returns the guest address of a live block. Guest code in the same
// runtime can read the tuple at this address.
func (a *WasmArena) Offset(b Block) (uint32, error) {
	off, ok := a.offset(b.Handle)
	if !ok {
		return 0, errors.UseAfterFree("")
	}
	return off, nil
}

// Close releases the memory module, and the runtime when the arena
// created it.
func (a *WasmArena) Close() error {
	if a.closed.Swap(true) {
		return nil
	}
	err := a.slab.Close()
	ctx := context.Background()
	err = multierr.Append(err, a.mod.Close(ctx))
	if a.ownsRun {
		err = multierr.Append(err, a.rt.Close(ctx))
	}
	return err
}

// fixedSource yields one chunk: the whole memory. Address zero is kept
// unused so no block has a null guest pointer.
type fixedSource struct {
	data  []byte
	start uint32
	used  bool
}

func (f *fixedSource) next(uint32) ([]byte, uint32, error) {
	if f.used {
		return nil, 0, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Value(len(f.data)).
			Detail("wasm arena memory of %d bytes exhausted", len(f.data)).
			Build()
	}
	f.used = true
	return f.data, f.start, nil
}

func (f *fixedSource) release([]byte) error {
	return nil
}
