// Package cache memoizes accessor specializations.
//
// Computing a layout and binding accessors costs far more than a field
// access, so every tuple of a schema shares one specialization. The cache
// keys entries by the schema's canonical key together with the layout
// options; structurally equal schemas built independently hit the same
// entry.
//
// At most one build runs per key. Concurrent callers asking for the same
// key wait for that build; callers asking for different keys never block
// each other.
package cache
