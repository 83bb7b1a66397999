package wasmbin

import (
	"bytes"
	"testing"
)

func TestWriteU32(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
		{65536, []byte{0x80, 0x80, 0x04}},
	}
	for _, tc := range tests {
		var w Writer
		w.WriteU32(tc.v)
		if !bytes.Equal(w.Bytes(), tc.want) {
			t.Errorf("WriteU32(%d) = % x, want % x", tc.v, w.Bytes(), tc.want)
		}
	}
}

func TestMemoryModule(t *testing.T) {
	got := MemoryModule(2, "memory")
	want := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
		0x05, 0x04, 0x01, 0x01, 0x02, 0x02, // memory: 1 entry, has max, min 2, max 2
		0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // export "memory" -> memory 0
	}
	if !bytes.Equal(got, want) {
		t.Errorf("MemoryModule =\n% x\nwant\n% x", got, want)
	}
}
