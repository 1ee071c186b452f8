// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cler is a portable streaming-DSP runtime: a library for composing
// pipelines out of user-written processing nodes ("blocks") connected by
// typed single-producer/single-consumer sample channels, executed either as
// a cooperatively scheduled single thread or as a multi-threaded flowgraph.
//
// # Quick Start
//
// Build a channel, a pair of blocks, and a flowgraph:
//
//	in, _ := cler.NewChannel[float32](64)
//	out, _ := cler.NewChannel[float32](64)
//
//	gain := &Gain{BlockBase: cler.NewBlockBase("gain"), In: in}
//	runner := cler.NewRunner1[float32](gain, out)
//
//	fg, err := cler.NewFlowGraph(cler.HostedPolicy{}, []cler.Runner{runner})
//	if err != nil {
//	    // handle InvalidTopology
//	}
//	if err := fg.Run(); err != nil {
//	    // handle InvalidTopology (re-checked at run() time)
//	}
//	defer fg.Stop()
//
// # Channels
//
// [Channel] is a bounded SPSC FIFO of a single sample type T. Two storage
// variants share the interface:
//
//	ch, _ := cler.NewChannel[float32](1024)                    // inline
//	ch, _ := cler.NewChannel[float32](1024, cler.WithDBF())     // doubly-mapped
//
// The doubly-mapped variant's ReadWindow/WriteWindow always return a single
// contiguous slice regardless of wrap; the inline variant may return a
// shorter window when the wrap point falls inside the requested range.
//
// # Blocks
//
// A block is any type embedding [BlockBase] and implementing one of the
// per-arity Block interfaces ([Block0]..[Block4]) for its declared number
// of outputs. Input channels are ordinary struct fields; output channels
// are passed to Procedure by the runner, never stored on the block.
//
//	type Gain struct {
//	    cler.BlockBase
//	    In   cler.Channel[float32]
//	    Mult float32
//	}
//
//	func (g *Gain) Procedure(out cler.Channel[float32]) cler.Result[cler.Empty] {
//	    buf := g.In.ReadWindow()
//	    if len(buf) == 0 {
//	        return cler.Err[cler.Empty](cler.ErrNotEnoughSamples)
//	    }
//	    space := out.WriteWindow()
//	    n := min(len(buf), len(space))
//	    for i := 0; i < n; i++ {
//	        space[i] = buf[i] * g.Mult
//	    }
//	    g.In.CommitRead(n)
//	    out.CommitWrite(n)
//	    return cler.OkEmpty()
//	}
//
// # Flowgraph and task policies
//
// [FlowGraph] drives a fixed set of [Runner] values according to a
// [TaskPolicy]:
//
//	[HostedPolicy]       - one goroutine per runner; suits general hosts.
//	[CooperativePolicy]  - single dedicated goroutine drives every runner
//	                       round-robin, one Step each per pass.
//	[SynchronousPolicy]  - same round-robin drive, inline on the caller's
//	                       own goroutine; an optional ShouldContinue hook
//	                       caps the number of passes.
//
// [TaskPolicy.RoundRobin] reports which shape a given policy needs:
// HostedPolicy launches one task per runner, the other two launch a single
// task that visits every runner in declaration order each pass.
//
// [NewFlowGraph] validates topology (non-empty, no nil or duplicate
// runners, no nil or cross-runner-shared output channel) before
// construction, and again at [FlowGraph.Run]; [FlowGraph.Stop] is
// idempotent and joins every execution context before returning.
//
// # Adaptive backoff
//
// Each runner carries an internal adaptive-sleep controller: a
// NotEnoughSamples/NotEnoughSpace result increments a miss counter that
// escalates through tight-loop, yield, and geometrically growing sleep
// (capped); a successful call resets it to the tight-loop level. This
// keeps CPU use bounded when the graph is idle without adding latency
// when data is flowing.
//
// # Error handling
//
// Every procedure returns [Result][Empty]. Non-fatal [Kind] values
// (NotEnoughSamples, NotEnoughSpace, Procedure) drive scheduling and are
// never logged by the runtime. Fatal kinds (IOFatal, ProcedureFatal,
// ChannelClosed) transition the owning runner to Failed; other runners
// continue until the next Stop.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, [code.hybscloud.com/iox] for semantic
// control-flow errors, and [code.hybscloud.com/spin] for the adaptive
// controller's tight-loop level. The doubly-mapped channel variant uses
// golang.org/x/sys/unix for its virtual-memory backend.
package cler
