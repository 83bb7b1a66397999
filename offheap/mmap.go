package offheap

import (
	"go.uber.org/zap"

	"github.com/wippyai/fasttuple/errors"
)

// DefaultChunkSize is the mapping size used when MmapConfig.ChunkSize is
// not set.
const DefaultChunkSize = 1 << 20

// MmapConfig holds configuration for mmap arena creation
type MmapConfig struct {
	// Logger receives chunk and leak events. Nil uses the package logger.
	Logger *zap.Logger
	// ChunkSize is the size of each mapping, rounded up to the page size.
	ChunkSize int
	// MaxBytes caps the total mapped size. Zero means no limit.
	MaxBytes int64
}

// MmapArena allocates blocks from anonymous private memory mappings.
type MmapArena struct {
	*slab
	src *mmapSource
}

// NewMmapArena creates an arena. A nil config uses defaults.
func NewMmapArena(cfg *MmapConfig) *MmapArena {
	if cfg == nil {
		cfg = &MmapConfig{}
	}
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	src := &mmapSource{
		chunkSize: roundPage(chunk),
		maxBytes:  cfg.MaxBytes,
	}
	return &MmapArena{
		slab: newSlab("mmap arena", src, cfg.Logger),
		src:  src,
	}
}

// Mapped returns the number of bytes currently mapped.
func (a *MmapArena) Mapped() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.src.mapped
}

func roundPage(n int) int {
	p := pageSize()
	return (n + p - 1) / p * p
}

// mmapSource maps chunks on demand. Calls are serialized by the slab lock.
type mmapSource struct {
	chunkSize int
	maxBytes  int64
	mapped    int64
}

func (m *mmapSource) next(min uint32) ([]byte, uint32, error) {
	n := m.chunkSize
	if int(min) > n {
		n = roundPage(int(min))
	}
	if m.maxBytes > 0 && m.mapped+int64(n) > m.maxBytes {
		return nil, 0, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Value(m.maxBytes).
			Detail("arena limit of %d bytes reached", m.maxBytes).
			Build()
	}
	chunk, err := mapChunk(n)
	if err != nil {
		return nil, 0, err
	}
	m.mapped += int64(n)
	return chunk, 0, nil
}

func (m *mmapSource) release(chunk []byte) error {
	m.mapped -= int64(len(chunk))
	return unmapChunk(chunk)
}
