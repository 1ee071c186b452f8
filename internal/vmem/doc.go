// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package vmem allocates anonymous memory regions whose bytes are mapped
// twice consecutively, so any contiguous window into the region is a
// single pointer/length pair regardless of wrap position ("magic ring
// buffer" / doubly-mapped buffer).
//
// Platform support is split by build tag, mirroring
// [code.hybscloud.com/lfq]'s internal/asm stub pattern: linux and darwin
// have real implementations (grounded on SnellerInc/sneller's
// vm/malloc_linux.go and vm/malloc_darwin.go mmap use); every other
// platform gets a stub that returns [ErrUnsupported], letting callers
// fall back to non-doubly-mapped (inline) channel storage.
package vmem
