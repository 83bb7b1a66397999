// Package fasttuple stores fixed-schema records of primitive fields in
// dense byte layouts and reads them through cached, schema-specialized
// accessors.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	fasttuple/           Root package wiring a cache with both factories
//	├── schema/          Ordered (name, kind) field lists
//	├── layout/          Byte layouts: packed or declaration order
//	├── accessor/        Per-layout load and store specializations
//	├── cache/           Concurrent specialization cache
//	├── tuple/           Heap tuples, typed accessors, heap factory
//	├── offheap/         Arenas (mmap, Wasm linear memory) and unmanaged tuples
//	├── pool/            Generic batch-loading object pool
//	├── eval/            Compiled expressions over tuple fields
//	├── witschema/       Conversion between schemas and WIT records
//	└── errors/          Structured error types
//
// # Quick Start
//
//	tt, err := fasttuple.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tt.Close()
//
//	s := schema.NewBuilder().
//	    MustAdd("flag", schema.KindBool).
//	    MustAdd("id", schema.KindInt64).
//	    MustAdd("score", schema.KindFloat32).
//	    MustBuild()
//
//	t, _ := tt.Heap.Create(s)
//	_ = t.SetInt64ByName("id", 42)
//	fmt.Println(t) // (flag=false, id=42, score=0)
//
// # Managed and Unmanaged Tuples
//
// Heap tuples are reclaimed by the garbage collector. Off-heap tuples live
// in an arena and must be freed; the offheap package reports double frees,
// use after free and leaks as errors rather than corrupting memory.
//
//	u, _ := tt.OffHeap.Allocate(s)
//	defer u.Free()
//
// # Thread Safety
//
// The cache and factories are safe for concurrent use. A tuple is not: it
// has a single writer, and callers synchronize shared tuples themselves.
package fasttuple
