// Package accessor turns a layout into a reusable set of typed field
// readers and writers.
//
// A Specialization is built once per (schema, layout options) pair and then
// shared by every tuple of that schema. It is stateless: each call takes the
// tuple's backing bytes explicitly, so the same specialization serves heap
// buffers, mmap'd blocks and Wasm linear memory alike.
//
// Typed accessors check the declared kind and fail with a type-mismatch
// error instead of converting. Value and SetValue are the boxed, converting
// variants used by diagnostics and expression evaluation.
package accessor
