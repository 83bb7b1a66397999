// Package offheap provides unmanaged tuples whose storage lives outside the
// Go heap.
//
// # Arenas
//
// An Arena hands out blocks identified by generation-tagged handles, so a
// stale or repeated free is always detected rather than silently releasing
// someone else's block. Two arenas are provided:
//
//   - MmapArena maps anonymous private memory in chunks and carves blocks
//     from them with a bump pointer and per-size-class free lists. Chunks
//     are unmapped when the arena closes.
//   - WasmArena carves blocks from the linear memory of a wazero module, so
//     guest code in the same runtime can address tuples directly. The
//     memory has a fixed size and never grows.
//
// # Lifetime
//
// Unmanaged tuples must be freed explicitly with Tuple.Free, With, a Scope,
// or a pool. A freed tuple is detached from its storage: further accesses
// fail with a use-after-free error and a second free fails with a
// double-free error.
//
//	err := f.With(s, func(t *tuple.Tuple) error {
//		return t.SetInt64ByName("id", 42)
//	})
//
// Tuples are laid out with at least eight-byte alignment, matching what
// external consumers of the storage expect.
package offheap
