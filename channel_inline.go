// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import (
	"code.hybscloud.com/atomix"
)

// InlineChannel is the default [Channel] storage variant: a fixed-size
// buffer owned by the channel itself.
//
// Based on Lamport's ring buffer with cached-index optimization, the same
// algorithm [code.hybscloud.com/lfq]'s SPSC queue uses: the producer caches
// the consumer's read index and vice versa, reducing cross-core cache line
// traffic on the hot path.
//
// ReadWindow/WriteWindow on InlineChannel return a slice that does not
// wrap — when the available region straddles the end of the backing
// array, the window is clamped to the tail of the array and a second call
// after the matching commit exposes the rest. Use [WithDBF] when a single
// contiguous window covering the whole available region is required
// regardless of wrap position.
type InlineChannel[T any] struct {
	_          pad
	head       atomix.Uint64 // published read index
	_          pad
	cachedTail uint64 // consumer's cached view of tail
	_          pad
	tail       atomix.Uint64 // published write index
	_          pad
	cachedHead uint64 // producer's cached view of head
	_          pad
	buffer     []T
	mask       uint64

	pendingWrite uint64 // length of the outstanding WriteWindow, for CommitWrite clamping
	pendingRead  uint64 // length of the outstanding ReadWindow, for CommitRead clamping
}

// NewInlineChannel creates an inline-storage channel of the given capacity,
// rounded up to the next power of 2. Panics if capacity < 2.
func NewInlineChannel[T any](capacity int) *InlineChannel[T] {
	if capacity < 2 {
		panic("cler: capacity must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	return &InlineChannel[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// Push writes one sample if Space() >= 1.
func (c *InlineChannel[T]) Push(v T) bool {
	tail := c.tail.LoadRelaxed()
	if tail-c.cachedHead > c.mask {
		c.cachedHead = c.head.LoadAcquire()
		if tail-c.cachedHead > c.mask {
			return false
		}
	}
	c.buffer[tail&c.mask] = v
	c.tail.StoreRelease(tail + 1)
	return true
}

// TryPop reads one sample if Size() >= 1.
func (c *InlineChannel[T]) TryPop() (T, bool) {
	head := c.head.LoadRelaxed()
	if head >= c.cachedTail {
		c.cachedTail = c.tail.LoadAcquire()
		if head >= c.cachedTail {
			var zero T
			return zero, false
		}
	}
	elem := c.buffer[head&c.mask]
	var zero T
	c.buffer[head&c.mask] = zero
	c.head.StoreRelease(head + 1)
	return elem, true
}

// WriteN bulk-writes up to min(len(src), Space()) samples, returning the
// count actually written. A partial write is never interrupted mid-element
// ("no tear"): the returned count is always the number of whole samples
// copied.
func (c *InlineChannel[T]) WriteN(src []T) int {
	k := uint64(len(src))
	if k == 0 {
		return 0
	}
	tail := c.tail.LoadRelaxed()
	space := c.mask + 1 - (tail - c.cachedHead)
	if space < k {
		c.cachedHead = c.head.LoadAcquire()
		space = c.mask + 1 - (tail - c.cachedHead)
	}
	n := k
	if space < n {
		n = space
	}
	if n == 0 {
		return 0
	}
	c.copyIn(tail, src[:n])
	c.tail.StoreRelease(tail + n)
	return int(n)
}

// ReadN bulk-reads up to min(len(dst), Size()) samples, returning the
// count actually read.
func (c *InlineChannel[T]) ReadN(dst []T) int {
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
	c.copyOut(head, dst[:n])
	c.head.StoreRelease(head + n)
	return int(n)
}

// WriteWindow returns a contiguous write window. The window is limited to
// the tail of the backing array when the available space wraps, so its
// length may be less than Space(); a zero-length window means none is
// available right now (never an error).
func (c *InlineChannel[T]) WriteWindow() []T {
	tail := c.tail.LoadRelaxed()
	space := c.mask + 1 - (tail - c.cachedHead)
	if space == 0 {
		c.cachedHead = c.head.LoadAcquire()
		space = c.mask + 1 - (tail - c.cachedHead)
	}
	start := tail & c.mask
	toEnd := uint64(len(c.buffer)) - start
	n := space
	if toEnd < n {
		n = toEnd
	}
	c.pendingWrite = n
	return c.buffer[start : start+n]
}

// CommitWrite publishes m <= len(last WriteWindow()) samples as written.
func (c *InlineChannel[T]) CommitWrite(m int) {
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

// ReadWindow returns a contiguous read window, clamped to the tail of the
// backing array when the readable region wraps.
func (c *InlineChannel[T]) ReadWindow() []T {
	head := c.head.LoadRelaxed()
	size := c.cachedTail - head
	if size == 0 {
		c.cachedTail = c.tail.LoadAcquire()
		size = c.cachedTail - head
	}
	start := head & c.mask
	toEnd := uint64(len(c.buffer)) - start
	n := size
	if toEnd < n {
		n = toEnd
	}
	c.pendingRead = n
	return c.buffer[start : start+n]
}

// CommitRead consumes m <= len(last ReadWindow()) samples.
func (c *InlineChannel[T]) CommitRead(m int) {
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

// PeekRead returns up to two slices covering all currently readable
// samples without committing them.
func (c *InlineChannel[T]) PeekRead() (first, second []T) {
	head := c.head.LoadRelaxed()
	c.cachedTail = c.tail.LoadAcquire()
	size := c.cachedTail - head
	if size == 0 {
		return nil, nil
	}
	start := head & c.mask
	toEnd := uint64(len(c.buffer)) - start
	if size <= toEnd {
		return c.buffer[start : start+size], nil
	}
	return c.buffer[start : start+toEnd], c.buffer[:size-toEnd]
}

// Size returns a conservative lower bound on readable samples.
func (c *InlineChannel[T]) Size() int {
	return int(c.tail.LoadAcquire() - c.head.LoadAcquire())
}

// Space returns a conservative lower bound on writable slots.
func (c *InlineChannel[T]) Space() int {
	return int(c.mask+1) - c.Size()
}

// Capacity returns the channel's fixed, rounded-up capacity.
func (c *InlineChannel[T]) Capacity() int {
	return int(c.mask + 1)
}

func (c *InlineChannel[T]) copyIn(tail uint64, src []T) {
	start := tail & c.mask
	n := uint64(len(src))
	toEnd := uint64(len(c.buffer)) - start
	if n <= toEnd {
		copy(c.buffer[start:start+n], src)
		return
	}
	copy(c.buffer[start:], src[:toEnd])
	copy(c.buffer[:n-toEnd], src[toEnd:])
}

func (c *InlineChannel[T]) copyOut(head uint64, dst []T) {
	start := head & c.mask
	n := uint64(len(dst))
	toEnd := uint64(len(c.buffer)) - start
	if n <= toEnd {
		copy(dst, c.buffer[start:start+n])
		return
	}
	copy(dst[:toEnd], c.buffer[start:])
	copy(dst[toEnd:], c.buffer[:n-toEnd])
}
