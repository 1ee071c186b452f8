// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

// storageKind selects a Channel's backing storage, mirroring the
// constructor-options table in spec.md §6.
type storageKind uint8

const (
	storageInline storageKind = iota
	storageDBF
)

// channelOptions accumulates [Option] values for [NewChannel].
type channelOptions struct {
	storage storageKind
}

// Option configures a [NewChannel] call.
type Option func(*channelOptions)

// WithInline selects channel-owned inline storage (the default).
// Capacity is fixed at construction and rounded up to the next power of 2.
func WithInline() Option {
	return func(o *channelOptions) { o.storage = storageInline }
}

// WithDBF selects doubly-mapped storage. Requires the virtual-memory
// backend to succeed on the current platform; [NewChannel] returns an
// *[Error] of [KindUnsupportedPlatform] or [KindAllocation] otherwise.
func WithDBF() Option {
	return func(o *channelOptions) { o.storage = storageDBF }
}

// NewChannel creates a bounded SPSC [Channel] of the given capacity.
//
// By default storage is inline (capacity rounds up to the next power of
// 2); pass [WithDBF] to request the doubly-mapped variant instead
// (capacity*sizeof(T) rounds up to the platform's mapping granularity).
//
// Example:
//
//	ch, err := cler.NewChannel[float32](1024)
//	ch, err := cler.NewChannel[float32](1024, cler.WithDBF())
func NewChannel[T any](capacity int, opts ...Option) (Channel[T], error) {
	var o channelOptions
	for _, opt := range opts {
		opt(&o)
	}
	switch o.storage {
	case storageDBF:
		ch, err := NewDBFChannel[T](capacity)
		if err != nil {
			return nil, err
		}
		return ch, nil
	default:
		return NewInlineChannel[T](capacity), nil
	}
}
