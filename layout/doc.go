// Package layout computes byte layouts for schemas.
//
// # Layout Rules
//
// Every field is naturally aligned: its offset is a multiple of its width.
// The packed strategy visits fields from widest to narrowest (declaration
// order breaks ties), which removes nearly all interior padding:
//
//	schema [flag bool, id int64, score float32]
//
//	offset  field  size
//	──────────────────
//	0       id     8
//	8       score  4
//	12      flag   1
//	13      pad    3
//	size 16, align 8
//
// The declared strategy keeps declaration order; it matches the canonical
// ABI record layout and is used when tuple storage is shared with Wasm
// guests.
//
// The total size is rounded up to the layout alignment, which is the
// widest field or Options.MinAlign, whichever is larger.
//
// Layouts are deterministic: the same schema and options always yield the
// same layout.
package layout
