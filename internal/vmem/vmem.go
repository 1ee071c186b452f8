// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vmem

import "errors"

// ErrUnsupported is returned by Create when the current platform lacks
// the primitives needed for a doubly-mapped region.
var ErrUnsupported = errors.New("vmem: doubly-mapped memory unsupported on this platform")

// ErrAllocationFailed is returned by Create on resource exhaustion.
var ErrAllocationFailed = errors.New("vmem: allocation failed")

// Region is an anonymous memory region of Size() bytes whose
// contents are visible twice in a contiguous virtual range of
// 2*Size() bytes: Second() immediately follows Data() in the
// address space and refers to the same physical bytes.
type Region struct {
	data  []byte // first mapping, len == effective size
	twice []byte // full 2x mapping (data is twice[:n], Second is twice[n:])
	close func() error
}

// Create allocates a doubly-mapped region of at least n bytes. n is
// rounded up to the platform's mapping granularity; callers must use
// Size() for the effective size rather than assuming n was honored
// exactly.
func Create(n int) (*Region, error) {
	return create(n)
}

// Data returns the start of the first mapping.
func (r *Region) Data() []byte {
	return r.data
}

// Second returns the start of the second mapping, equal to
// Data()[Size():Size()] in address terms — i.e. the byte immediately
// following Data() refers to the same backing byte as Data()[0].
func (r *Region) Second() []byte {
	return r.twice[len(r.data):]
}

// Size returns the effective (rounded-up) size of one mapping.
func (r *Region) Size() int {
	return len(r.data)
}

// Close unmaps both views and releases the backing memory. The
// underlying OS resource is released exactly once even if Close is
// called more than once.
func (r *Region) Close() error {
	if r.close == nil {
		return nil
	}
	closeFn := r.close
	r.close = nil
	return closeFn()
}
