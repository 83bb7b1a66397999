package offheap

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/fasttuple/errors"
	"github.com/wippyai/fasttuple/internal/abi"
)

// Arena hands out blocks of memory outside the Go heap. Implementations
// are safe for concurrent use.
type Arena interface {
	// Alloc returns a zeroed block of size bytes whose address is a
	// multiple of align.
	Alloc(size, align uint32) (Block, error)
	// Free releases a block. Freeing a block twice fails with a
	// double-free error.
	Free(b Block) error
	// Live returns the number of allocated blocks.
	Live() int
	// Close releases all memory. Blocks still live are reported as a leak.
	Close() error
}

// Block is one allocation. Data stays valid until the block is freed or
// the arena is closed.
type Block struct {
	Data   []byte
	Handle Handle
}

// span locates a block inside a chunk. size is the rounded size class.
type span struct {
	chunk int
	off   uint32
	size  uint32
}

// chunkSource supplies the memory a slab carves blocks from.
type chunkSource interface {
	// next returns a chunk whose usable bytes begin at start. Growable
	// sources make at least min bytes usable.
	next(min uint32) (chunk []byte, start uint32, err error)
	release(chunk []byte) error
}

// slab is a bump allocator over chunks with per-size-class free lists.
// Blocks are never moved, so slices handed out stay valid until freed.
type slab struct {
	src     chunkSource
	logger  *zap.Logger
	free    map[uint32][]span
	name    string
	chunks  [][]byte
	used    []uint32
	handles handleTable
	onClose []func()
	mu      sync.Mutex
	closed  bool
}

func newSlab(name string, src chunkSource, logger *zap.Logger) *slab {
	if logger == nil {
		logger = Logger()
	}
	return &slab{
		name:   name,
		src:    src,
		logger: logger,
		free:   make(map[uint32][]span),
	}
}

func (s *slab) Alloc(size, align uint32) (Block, error) {
	if size == 0 {
		return Block{}, errors.InvalidInput(errors.PhaseAlloc, "block size must be positive")
	}
	if align == 0 {
		align = 1
	}
	if !abi.IsPowerOfTwo(align) {
		return Block{}, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(align).
			Detail("alignment %d is not a power of two", align).
			Build()
	}
	if _, ok := abi.SafeAddU32(size, abi.WordAlign-1); !ok {
		return Block{}, errors.AllocationFailed(size, align, nil)
	}
	class := abi.AlignTo(size, abi.WordAlign)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Block{}, errors.Closed(errors.PhaseAlloc, s.name)
	}

	sp, ok := s.reuse(class, align)
	if !ok {
		var err error
		if sp, err = s.bump(class, align); err != nil {
			return Block{}, errors.AllocationFailed(size, align, err)
		}
	}

	data := s.chunks[sp.chunk][sp.off : sp.off+size : sp.off+size]
	clear(data)
	return Block{Data: data, Handle: s.handles.add(sp)}, nil
}

func (s *slab) reuse(class, align uint32) (span, bool) {
	list := s.free[class]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].off%align != 0 {
			continue
		}
		sp := list[i]
		list[i] = list[len(list)-1]
		s.free[class] = list[:len(list)-1]
		return sp, true
	}
	return span{}, false
}

func (s *slab) bump(class, align uint32) (span, error) {
	if n := len(s.chunks); n > 0 {
		if sp, ok := s.carve(n-1, class, align); ok {
			return sp, nil
		}
	}

	want, ok := abi.SafeAddU32(class, align-1)
	if !ok {
		return span{}, errors.InvalidInput(errors.PhaseAlloc, "block size overflows")
	}
	chunk, start, err := s.src.next(want)
	if err != nil {
		return span{}, err
	}
	s.chunks = append(s.chunks, chunk)
	s.used = append(s.used, start)
	s.logger.Debug("arena chunk added",
		zap.String("arena", s.name),
		zap.Int("chunk", len(s.chunks)-1),
		zap.Int("bytes", len(chunk)))

	sp, ok := s.carve(len(s.chunks)-1, class, align)
	if !ok {
		return span{}, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("block of %d bytes does not fit in a %d byte chunk", class, len(chunk)).
			Build()
	}
	return sp, nil
}

func (s *slab) carve(idx int, class, align uint32) (span, bool) {
	off := uint64(abi.AlignTo(s.used[idx], align))
	end := off + uint64(class)
	if end > uint64(len(s.chunks[idx])) {
		return span{}, false
	}
	s.used[idx] = uint32(end)
	return span{chunk: idx, off: uint32(off), size: class}, true
}

func (s *slab) Free(b Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.Closed(errors.PhaseAlloc, s.name)
	}
	sp, ok := s.handles.remove(b.Handle)
	if !ok {
		return errors.DoubleFree("block")
	}
	s.free[sp.size] = append(s.free[sp.size], sp)
	return nil
}

func (s *slab) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles.live
}

// offset returns the chunk-relative address of a live block.
func (s *slab) offset(h Handle) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.handles.lookup(h)
	if !ok {
		return 0, false
	}
	return e.span.off, true
}

// OnClose registers fn to run when the arena closes, before its memory is
// released. Factories use it to detach tuples that were never freed.
func (s *slab) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.onClose = append(s.onClose, fn)
}

func (s *slab) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	hooks := s.onClose
	s.onClose = nil
	s.mu.Unlock()

	// Hooks run unlocked; Alloc and Free already fail with closed errors.
	for _, fn := range hooks {
		fn()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if live := s.handles.live; live > 0 {
		s.logger.Warn("arena closed with live blocks",
			zap.String("arena", s.name),
			zap.Int("live", live))
		err = errors.Leak(live)
	}
	for _, c := range s.chunks {
		err = multierr.Append(err, s.src.release(c))
	}
	s.chunks, s.used, s.free = nil, nil, nil
	s.handles = handleTable{}
	return err
}
