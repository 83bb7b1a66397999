//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package offheap

import "os"

// Platforms without anonymous mmap fall back to heap chunks.

func mapChunk(n int) ([]byte, error) {
	return make([]byte, n), nil
}

func unmapChunk([]byte) error {
	return nil
}

func pageSize() int {
	return os.Getpagesize()
}
