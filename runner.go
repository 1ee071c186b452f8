// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import "time"

// Runner is the type-erased handle a [FlowGraph] drives: one Step call
// is one invocation of the wrapped block's Procedure against its bound
// output channels. This is the Go rendering of
// original_source/src/cler.hpp's BlockRunner<Block, Channels...>
// template plus its FlowGraph::run loop body, flattened into an
// interface so a FlowGraph can hold a []Runner of mixed arities instead
// of a single variadic template instantiation (spec.md §9's "tuple of
// heterogeneous runners" design note).
type Runner interface {
	// Name returns the wrapped block's name.
	Name() string
	// Step invokes the block's Procedure once against its bound
	// outputs and folds the result into stats.
	Step() Result[Empty]
	// Stats returns the runner's live statistics.
	Stats() *BlockStats

	// outputs returns the runner's bound output channels boxed as any,
	// for [FlowGraph]'s topology validation (nil-pointer and
	// cross-runner duplicate checks). Returns nil for an arity-0
	// runner. Unexported: Runner is only ever implemented by the
	// wrapper types NewRunner0..NewRunner4 construct.
	outputs() []any
}

// runner0 wraps a [Block0].
type runner0 struct {
	block Block0
	stats *BlockStats
}

// NewRunner0 binds a source/sink block with no output channels.
func NewRunner0(block Block0) Runner {
	return &runner0{block: block, stats: newBlockStats(block.Name())}
}

func (r *runner0) Name() string       { return r.block.Name() }
func (r *runner0) Stats() *BlockStats { return r.stats }
func (r *runner0) outputs() []any     { return nil }
func (r *runner0) Step() Result[Empty] {
	start := time.Now()
	res := r.block.Procedure()
	recordStep(r.stats, res, time.Since(start))
	return res
}

// runner1 wraps a [Block1] bound to one output channel.
type runner1[O1 any] struct {
	block Block1[O1]
	out1  Channel[O1]
	stats *BlockStats
}

// NewRunner1 binds a block with one output channel.
func NewRunner1[O1 any](block Block1[O1], out1 Channel[O1]) Runner {
	return &runner1[O1]{block: block, out1: out1, stats: newBlockStats(block.Name())}
}

func (r *runner1[O1]) Name() string       { return r.block.Name() }
func (r *runner1[O1]) Stats() *BlockStats { return r.stats }
func (r *runner1[O1]) outputs() []any     { return []any{r.out1} }
func (r *runner1[O1]) Step() Result[Empty] {
	start := time.Now()
	res := r.block.Procedure(r.out1)
	recordStep(r.stats, res, time.Since(start))
	r.stats.recordFullness(-1, fullnessPct(r.out1))
	return res
}

// runner2 wraps a [Block2] bound to two output channels.
type runner2[O1, O2 any] struct {
	block Block2[O1, O2]
	out1  Channel[O1]
	out2  Channel[O2]
	stats *BlockStats
}

// NewRunner2 binds a block with two output channels.
func NewRunner2[O1, O2 any](block Block2[O1, O2], out1 Channel[O1], out2 Channel[O2]) Runner {
	return &runner2[O1, O2]{block: block, out1: out1, out2: out2, stats: newBlockStats(block.Name())}
}

func (r *runner2[O1, O2]) Name() string       { return r.block.Name() }
func (r *runner2[O1, O2]) Stats() *BlockStats { return r.stats }
func (r *runner2[O1, O2]) outputs() []any     { return []any{r.out1, r.out2} }
func (r *runner2[O1, O2]) Step() Result[Empty] {
	start := time.Now()
	res := r.block.Procedure(r.out1, r.out2)
	recordStep(r.stats, res, time.Since(start))
	r.stats.recordFullness(-1, fullnessPct(r.out1))
	return res
}

// runner3 wraps a [Block3] bound to three output channels.
type runner3[O1, O2, O3 any] struct {
	block Block3[O1, O2, O3]
	out1  Channel[O1]
	out2  Channel[O2]
	out3  Channel[O3]
	stats *BlockStats
}

// NewRunner3 binds a block with three output channels.
func NewRunner3[O1, O2, O3 any](block Block3[O1, O2, O3], out1 Channel[O1], out2 Channel[O2], out3 Channel[O3]) Runner {
	return &runner3[O1, O2, O3]{block: block, out1: out1, out2: out2, out3: out3, stats: newBlockStats(block.Name())}
}

func (r *runner3[O1, O2, O3]) Name() string       { return r.block.Name() }
func (r *runner3[O1, O2, O3]) Stats() *BlockStats { return r.stats }
func (r *runner3[O1, O2, O3]) outputs() []any     { return []any{r.out1, r.out2, r.out3} }
func (r *runner3[O1, O2, O3]) Step() Result[Empty] {
	start := time.Now()
	res := r.block.Procedure(r.out1, r.out2, r.out3)
	recordStep(r.stats, res, time.Since(start))
	r.stats.recordFullness(-1, fullnessPct(r.out1))
	return res
}

// runner4 wraps a [Block4] bound to four output channels.
type runner4[O1, O2, O3, O4 any] struct {
	block Block4[O1, O2, O3, O4]
	out1  Channel[O1]
	out2  Channel[O2]
	out3  Channel[O3]
	out4  Channel[O4]
	stats *BlockStats
}

// NewRunner4 binds a block with four output channels.
func NewRunner4[O1, O2, O3, O4 any](block Block4[O1, O2, O3, O4], out1 Channel[O1], out2 Channel[O2], out3 Channel[O3], out4 Channel[O4]) Runner {
	return &runner4[O1, O2, O3, O4]{block: block, out1: out1, out2: out2, out3: out3, out4: out4, stats: newBlockStats(block.Name())}
}

func (r *runner4[O1, O2, O3, O4]) Name() string       { return r.block.Name() }
func (r *runner4[O1, O2, O3, O4]) Stats() *BlockStats { return r.stats }
func (r *runner4[O1, O2, O3, O4]) outputs() []any {
	return []any{r.out1, r.out2, r.out3, r.out4}
}
func (r *runner4[O1, O2, O3, O4]) Step() Result[Empty] {
	start := time.Now()
	res := r.block.Procedure(r.out1, r.out2, r.out3, r.out4)
	recordStep(r.stats, res, time.Since(start))
	r.stats.recordFullness(-1, fullnessPct(r.out1))
	return res
}

func recordStep(stats *BlockStats, res Result[Empty], d time.Duration) {
	if res.IsErr() {
		stats.recordFail(res.UnwrapErr().Kind, d)
		return
	}
	stats.recordSuccess(d)
}

// fullnessPct reports ch's occupancy as a percentage scaled by 100
// (i.e. hundredths of a percent), or -1 if Capacity is 0.
func fullnessPct[T any](ch Channel[T]) int64 {
	capacity := ch.Capacity()
	if capacity == 0 {
		return -1
	}
	return int64(ch.Size()) * 10000 / int64(capacity)
}
