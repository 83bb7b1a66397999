// Package pool recycles preallocated values.
//
// A Pool loads its items in batches from a Loader the first time it is
// checked out, and again whenever an expanding pool runs dry. Released
// items go back on a free list after the configured Reset hook runs;
// Init runs on every checkout. Closing the pool hands every loaded item,
// checked out or not, back to the Loader for destruction.
//
// Tuple factories use pools for both heap tuples, which are zeroed on
// release, and arena-backed tuples, whose blocks are freed on Close.
package pool
