// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import (
	"fmt"
	"unsafe"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/cler/internal/vmem"
)

// DBFChannel is the doubly-mapped [Channel] storage variant: its backing
// bytes are mapped twice consecutively in the address space, so
// ReadWindow/WriteWindow always return a single contiguous slice covering
// the full available region, regardless of where the ring's head or tail
// currently sits ("wrap transparency", spec.md §4.B).
//
// Capacity is not restricted to a power of two (unlike [InlineChannel]):
// index arithmetic uses plain modular reduction by Capacity(), which the
// double mapping makes safe to slice across without an explicit
// wraparound copy.
type DBFChannel[T any] struct {
	region *vmem.Region

	_          pad
	head       atomix.Uint64
	_          pad
	cachedTail uint64
	_          pad
	tail       atomix.Uint64
	_          pad
	cachedHead uint64
	_          pad

	els      []T // length 2*capacity, els[:capacity] and els[capacity:] alias the same bytes
	capacity uint64

	pendingWrite uint64
	pendingRead  uint64
}

// NewDBFChannel creates a doubly-mapped channel of at least capacity
// samples. capacity*sizeof(T) is rounded up to the platform's mapping
// granularity and the actual capacity (which may be larger) is published
// via Capacity(). Returns an error wrapping [vmem.ErrUnsupported] on
// platforms without double-mapping support, or [vmem.ErrAllocationFailed]
// on resource exhaustion.
func NewDBFChannel[T any](capacity int) (*DBFChannel[T], error) {
	if capacity < 2 {
		panic("cler: capacity must be >= 2")
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		panic("cler: zero-sized sample type")
	}

	region, err := vmem.Create(capacity * elemSize)
	if err != nil {
		return nil, NewError(classifyVMemErr(err), err)
	}
	if region.Size()%elemSize != 0 {
		region.Close()
		return nil, NewError(KindUnsupportedPlatform,
			fmt.Errorf("cler: sample size %d does not divide platform page size", elemSize))
	}

	effCapacity := uint64(region.Size() / elemSize)
	base := unsafe.Pointer(unsafe.SliceData(region.Data()))
	els := unsafe.Slice((*T)(base), 2*effCapacity)

	return &DBFChannel[T]{
		region:   region,
		els:      els,
		capacity: effCapacity,
	}, nil
}

func classifyVMemErr(err error) Kind {
	if err == vmem.ErrUnsupported {
		return KindUnsupportedPlatform
	}
	return KindAllocation
}

// Close releases the underlying virtual-memory region. The channel must
// not be used afterward.
func (c *DBFChannel[T]) Close() error {
	return c.region.Close()
}

// Push writes one sample if Space() >= 1.
func (c *DBFChannel[T]) Push(v T) bool {
	tail := c.tail.LoadRelaxed()
	if tail-c.cachedHead >= c.capacity {
		c.cachedHead = c.head.LoadAcquire()
		if tail-c.cachedHead >= c.capacity {
			return false
		}
	}
	c.els[tail%c.capacity] = v
	c.tail.StoreRelease(tail + 1)
	return true
}

// TryPop reads one sample if Size() >= 1.
func (c *DBFChannel[T]) TryPop() (T, bool) {
	head := c.head.LoadRelaxed()
	if head >= c.cachedTail {
		c.cachedTail = c.tail.LoadAcquire()
		if head >= c.cachedTail {
			var zero T
			return zero, false
		}
	}
	idx := head % c.capacity
	elem := c.els[idx]
	var zero T
	c.els[idx] = zero
	c.head.StoreRelease(head + 1)
	return elem, true
}

// WriteN bulk-writes up to min(len(src), Space()) samples.
func (c *DBFChannel[T]) WriteN(src []T) int {
	k := uint64(len(src))
	if k == 0 {
		return 0
	}
	tail := c.tail.LoadRelaxed()
	space := c.capacity - (tail - c.cachedHead)
	if space < k {
		c.cachedHead = c.head.LoadAcquire()
		space = c.capacity - (tail - c.cachedHead)
	}
	n := k
	if space < n {
		n = space
	}
	if n == 0 {
		return 0
	}
	start := tail % c.capacity
	copy(c.els[start:start+n], src[:n])
	c.tail.StoreRelease(tail + n)
	return int(n)
}

// ReadN bulk-reads up to min(len(dst), Size()) samples.
func (c *DBFChannel[T]) ReadN(dst []T) int {
	k := uint64(len(dst))
	if k == 0 {
		return 0
	}
	head := c.head.LoadRelaxed()
	size := c.cachedTail - head
	if size < k {
		c.cachedTail = c.tail.LoadAcquire()
		size = c.cachedTail - head
	}
	n := k
	if size < n {
		n = size
	}
	if n == 0 {
		return 0
	}
	start := head % c.capacity
	copy(dst[:n], c.els[start:start+n])
	c.head.StoreRelease(head + n)
	return int(n)
}

// WriteWindow returns a single contiguous write window of up to Space()
// samples, regardless of wrap position.
func (c *DBFChannel[T]) WriteWindow() []T {
	tail := c.tail.LoadRelaxed()
	c.cachedHead = c.head.LoadAcquire()
	space := c.capacity - (tail - c.cachedHead)
	start := tail % c.capacity
	c.pendingWrite = space
	return c.els[start : start+space]
}

// CommitWrite publishes m <= len(last WriteWindow()) samples as written.
func (c *DBFChannel[T]) CommitWrite(m int) {
	mm := uint64(m)
	if mm > c.pendingWrite {
		mm = c.pendingWrite
	}
	c.pendingWrite = 0
	if mm == 0 {
		return
	}
	c.tail.StoreRelease(c.tail.LoadRelaxed() + mm)
}

// ReadWindow returns a single contiguous read window of up to Size()
// samples, regardless of wrap position.
func (c *DBFChannel[T]) ReadWindow() []T {
	head := c.head.LoadRelaxed()
	c.cachedTail = c.tail.LoadAcquire()
	size := c.cachedTail - head
	start := head % c.capacity
	c.pendingRead = size
	return c.els[start : start+size]
}

// CommitRead consumes m <= len(last ReadWindow()) samples.
func (c *DBFChannel[T]) CommitRead(m int) {
	mm := uint64(m)
	if mm > c.pendingRead {
		mm = c.pendingRead
	}
	c.pendingRead = 0
	if mm == 0 {
		return
	}
	c.head.StoreRelease(c.head.LoadRelaxed() + mm)
}

// PeekRead returns all currently readable samples as a single contiguous
// slice (second is always nil — the doubly-mapped region makes the
// two-slice split [Channel.PeekRead] documents for the inline variant
// unnecessary here).
func (c *DBFChannel[T]) PeekRead() (first, second []T) {
	head := c.head.LoadRelaxed()
	c.cachedTail = c.tail.LoadAcquire()
	size := c.cachedTail - head
	if size == 0 {
		return nil, nil
	}
	start := head % c.capacity
	return c.els[start : start+size], nil
}

// Size returns a conservative lower bound on readable samples.
func (c *DBFChannel[T]) Size() int {
	return int(c.tail.LoadAcquire() - c.head.LoadAcquire())
}

// Space returns a conservative lower bound on writable slots.
func (c *DBFChannel[T]) Space() int {
	return int(c.capacity) - c.Size()
}

// Capacity returns the channel's effective (rounded-up) capacity.
func (c *DBFChannel[T]) Capacity() int {
	return int(c.capacity)
}
