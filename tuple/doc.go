// Package tuple provides tuple instances and the managed (heap) factory.
//
// A Tuple pairs a shared accessor specialization with the bytes that hold
// one record. The bytes may come from the Go heap, an mmap'd arena or Wasm
// linear memory; the Tuple does not care. Once storage is released the
// tuple is detached and every accessor fails with a use-after-free error.
//
// Tuples are not safe for concurrent mutation. Callers that share a tuple
// between goroutines must synchronize access themselves.
package tuple
