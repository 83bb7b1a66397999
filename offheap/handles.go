package offheap

// Handle identifies one live block. The low 32 bits hold the slot index
// plus one and the high 32 bits its generation, so a handle that has been
// freed never matches the slot's next occupant. Zero is never valid.
type Handle uint64

func makeHandle(idx, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(idx+1))
}

func (h Handle) slot() (uint32, bool) {
	lo := uint32(h)
	if lo == 0 {
		return 0, false
	}
	return lo - 1, true
}

func (h Handle) generation() uint32 {
	return uint32(h >> 32)
}

type handleEntry struct {
	span  span
	gen   uint32
	valid bool
}

// handleTable tracks live blocks. Callers hold the arena lock.
type handleTable struct {
	entries  []handleEntry
	freeList []uint32
	live     int
}

func (t *handleTable) add(s span) Handle {
	t.live++
	if n := len(t.freeList); n > 0 {
		idx := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		e := &t.entries[idx]
		e.span = s
		e.valid = true
		return makeHandle(idx, e.gen)
	}

	t.entries = append(t.entries, handleEntry{span: s, gen: 1, valid: true})
	return makeHandle(uint32(len(t.entries)-1), 1)
}

func (t *handleTable) lookup(h Handle) (*handleEntry, bool) {
	idx, ok := h.slot()
	if !ok || int(idx) >= len(t.entries) {
		return nil, false
	}
	e := &t.entries[idx]
	if !e.valid || e.gen != h.generation() {
		return nil, false
	}
	return e, true
}

func (t *handleTable) remove(h Handle) (span, bool) {
	e, ok := t.lookup(h)
	if !ok {
		return span{}, false
	}
	s := e.span
	e.valid = false
	e.span = span{}
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	idx, _ := h.slot()
	t.freeList = append(t.freeList, idx)
	t.live--
	return s, true
}
