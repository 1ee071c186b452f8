// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import (
	"code.hybscloud.com/iox"
)

// Kind is a closed set of error classifications a block procedure or the
// flowgraph runtime can report.
//
// Kind is conceptually two subsets: non-fatal kinds drive the adaptive-sleep
// ladder and are never logged by the runtime; fatal kinds terminate the
// owning runner. Use [Error.IsFatal] rather than comparing Kind values
// directly, since the fatal/non-fatal split is the only distinction most
// callers need.
type Kind uint8

const (
	// KindNotEnoughSamples: not enough readable samples for the procedure
	// to make progress. Non-fatal, expected.
	KindNotEnoughSamples Kind = iota
	// KindNotEnoughSpace: not enough writable space in some output.
	// Non-fatal, expected.
	KindNotEnoughSpace
	// KindProcedure: a recoverable, block-defined error (e.g. a transient
	// device retry). Non-fatal.
	KindProcedure
	// KindIOFatal: the block cannot continue due to an I/O failure. Fatal.
	KindIOFatal
	// KindProcedureFatal: the block cannot continue due to an unrecoverable
	// internal condition. Fatal.
	KindProcedureFatal
	// KindChannelClosed: the block observed a channel it depends on being
	// permanently closed. Fatal.
	KindChannelClosed
	// KindInvalidTopology: the flowgraph's wiring is invalid. Fatal,
	// construction/run-start only.
	KindInvalidTopology
	// KindTaskCreation: the task policy failed to start an execution
	// context for a runner. Fatal, startup only.
	KindTaskCreation
	// KindAllocation: a resource allocation (e.g. the doubly-mapped VM
	// region) failed. Fatal, construction only.
	KindAllocation
	// KindUnsupportedPlatform: the requested storage or policy variant is
	// unavailable on this platform. Fatal, construction only.
	KindUnsupportedPlatform
)

var kindNames = [...]string{
	KindNotEnoughSamples:    "not enough samples",
	KindNotEnoughSpace:      "not enough space",
	KindProcedure:           "procedure error",
	KindIOFatal:             "I/O error",
	KindProcedureFatal:      "fatal procedure error",
	KindChannelClosed:       "channel closed",
	KindInvalidTopology:     "invalid topology",
	KindTaskCreation:        "task creation failed",
	KindAllocation:          "allocation failed",
	KindUnsupportedPlatform: "unsupported platform",
}

// IsFatal reports whether k terminates the owning runner.
func (k Kind) IsFatal() bool {
	return k >= KindIOFatal
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown error kind"
}

// Error is a structured failure value returned by a block procedure or by
// flowgraph construction/startup. It carries its Kind and an optional
// wrapped Cause.
type Error struct {
	Kind Kind
	// Cause optionally wraps the underlying error that produced this Kind
	// (e.g. a device I/O error for KindIOFatal). May be nil.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether e terminates the owning runner.
func (e *Error) IsFatal() bool {
	return e.Kind.IsFatal()
}

// NewError constructs an *Error of the given Kind, optionally wrapping cause.
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

var (
	// ErrNotEnoughSamples is the canonical non-fatal "not enough samples"
	// error. Its Cause wraps iox.ErrWouldBlock so
	// errors.Is(err, iox.ErrWouldBlock) holds, per spec.md §4.C's
	// composition requirement.
	ErrNotEnoughSamples = &Error{Kind: KindNotEnoughSamples, Cause: iox.ErrWouldBlock}
	// ErrNotEnoughSpace is the canonical non-fatal "not enough space"
	// error, composing with iox.ErrWouldBlock the same way.
	ErrNotEnoughSpace = &Error{Kind: KindNotEnoughSpace, Cause: iox.ErrWouldBlock}
)

// ErrWouldBlock is an alias for [iox.ErrWouldBlock], the Cause wrapped by
// [ErrNotEnoughSamples] and [ErrNotEnoughSpace]. The channel types do not
// return it: their element-wise Push/TryPop report acceptance via bool.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}
