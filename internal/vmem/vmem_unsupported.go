// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin

package vmem

// Stub for platforms lacking the double-mmap primitives this package
// needs (e.g. Windows requires CreateFileMapping/MapViewOfFileEx, which
// is left unimplemented here). Mirrors [code.hybscloud.com/lfq]'s
// internal/asm stub-for-unsupported-architecture pattern: Create always
// fails with [ErrUnsupported], and a caller that asked for doubly-mapped
// storage gets that error back; it may then choose inline storage itself.
func create(n int) (*Region, error) {
	return nil, ErrUnsupported
}
