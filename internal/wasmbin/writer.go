// Package wasmbin encodes the small WebAssembly modules the runtime
// instantiates for its own use.
package wasmbin

import (
	"bytes"
	"encoding/binary"
)

const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100
	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01

	SectionMemory byte = 5
	SectionExport byte = 7

	KindMemory byte = 2

	LimitsHasMax byte = 0x01

	// PageSize is the size of one linear memory page.
	PageSize = 65536
	// MaxPages is the page limit of a 32-bit linear memory.
	MaxPages = 65536
)

// Writer provides buffered writing utilities for WASM binary encoding.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteU32 writes an unsigned LEB128 encoded uint32.
func (w *Writer) WriteU32(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// WriteName writes a UTF-8 encoded name (length-prefixed).
func (w *Writer) WriteName(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf.WriteString(s)
}

// WriteU32LE writes a little-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32LE(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

func (w *Writer) section(id byte, body *Writer) {
	w.Byte(id)
	w.WriteU32(uint32(body.buf.Len()))
	w.buf.Write(body.Bytes())
}
