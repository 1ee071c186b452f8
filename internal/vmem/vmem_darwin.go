// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build darwin

package vmem

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// darwin implementation: anonymous memfd_create is unavailable, so an
// unlinked temp file backs the shared mapping instead — the same
// file-descriptor-backed-anonymous-memory approach spec.md §4.A calls
// out as an acceptable alternative to memfd_create, grounded on
// SnellerInc/sneller's vm/malloc_darwin.go use of syscall.Mmap.

func create(n int) (*Region, error) {
	gran := unix.Getpagesize()
	size := roundUp(n, gran)
	if size <= 0 {
		size = gran
	}

	f, err := os.CreateTemp("", "cler-vmem-*")
	if err != nil {
		return nil, ErrUnsupported
	}
	unix.Unlink(f.Name())
	fd := int(f.Fd())
	closeF := true
	defer func() {
		if closeF {
			f.Close()
		}
	}()

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		return nil, ErrAllocationFailed
	}

	resv, err := unix.Mmap(-1, 0, 2*size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
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
	closeF = false

	r := &Region{
		data:  full[:size:size],
		twice: full,
	}
	r.close = func() error {
		unix.Munmap(full)
		return f.Close()
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
