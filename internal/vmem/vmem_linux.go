// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package vmem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux implementation: memfd_create + two adjoining MAP_FIXED mmaps of
// the same fd, grounded on SnellerInc/sneller's vm/malloc_linux.go mmap
// use, extended with MAP_FIXED placement (not needed by sneller's flat
// VMM scheme, but required here to make the second mapping immediately
// follow the first in address space).

func create(n int) (*Region, error) {
	gran := unix.Getpagesize()
	size := roundUp(n, gran)
	if size <= 0 {
		size = gran
	}

	fd, err := unix.MemfdCreate("cler-vmem", 0)
	if err != nil {
		return nil, ErrUnsupported
	}
	closeFd := true
	defer func() {
		if closeFd {
			unix.Close(fd)
		}
	}()

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		return nil, ErrAllocationFailed
	}

	// Reserve 2*size of contiguous address space to place both mappings into.
	resv, err := unix.Mmap(-1, 0, 2*size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, ErrAllocationFailed
	}
	base := uintptr(unsafe.Pointer(&resv[0]))

	if _, err := mmapFixed(base, uintptr(size), fd, 0); err != nil {
		unix.Munmap(resv)
		return nil, ErrAllocationFailed
	}
	if _, err := mmapFixed(base+uintptr(size), uintptr(size), fd, 0); err != nil {
		unix.Munmap(resv)
		return nil, ErrAllocationFailed
	}

	full := unsafe.Slice((*byte)(unsafe.Pointer(base)), 2*size)
	closeFd = false

	r := &Region{
		data:  full[:size:size],
		twice: full,
	}
	r.close = func() error {
		unix.Munmap(full)
		return unix.Close(fd)
	}
	return r, nil
}

func mmapFixed(addr, length uintptr, fd int, offset int64) (uintptr, error) {
	ret, _, errno := unix.Syscall6(unix.SYS_MMAP, addr, length,
		uintptr(unix.PROT_READ|unix.PROT_WRITE),
		uintptr(unix.MAP_SHARED|unix.MAP_FIXED),
		uintptr(fd), uintptr(offset))
	if errno != 0 {
		return 0, errno
	}
	return ret, nil
}

func roundUp(n, gran int) int {
	if n <= 0 {
		return gran
	}
	return (n + gran - 1) / gran * gran
}
