//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package offheap

import "golang.org/x/sys/unix"

func mapChunk(n int) ([]byte, error) {
	return unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmapChunk(b []byte) error {
	return unix.Munmap(b)
}

func pageSize() int {
	return unix.Getpagesize()
}
