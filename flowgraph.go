// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// runState is a single runner's position in the Idle -> Starting ->
// Running -> Stopping -> Idle lifecycle spec.md §4.E describes, with a
// terminal Failed state reached only from Running, on a fatal error, and
// cleared back to Idle by the next Stop.
//
// The state machine is per runner, not per flowgraph: one runner's fatal
// error must not stop the others (spec.md §8 scenario 6, "fatal failure
// isolation").
type runState int32

const (
	stateIdle runState = iota
	stateStarting
	stateRunning
	stateStopping
	stateFailed
)

// continuer is implemented by policies offering a caller-supplied
// continuation hook for the round-robin drive loop (SynchronousPolicy's
// ShouldContinue), the resolution to spec.md §9's open question about a
// spinning single-thread loop on a dead or cyclic graph.
type continuer interface {
	shouldContinue() bool
}

// FlowGraph drives a fixed set of [Runner]s under a [TaskPolicy], the Go
// rendering of original_source/src/cler.hpp's FlowGraph<BlockRunners...>
// and its run()/stop() pair, generalized from a compile-time tuple of
// distinct runner types to a runtime slice of the [Runner] interface
// (spec.md §9's heterogeneous-runners design note).
//
// A FlowGraph is reusable across Run/Stop cycles: a runner left in
// Failed by one Run is reset to Idle by the Stop that follows, per
// spec.md §4.E's state diagram.
type FlowGraph struct {
	policy  TaskPolicy
	log     Logger
	runners []Runner
	handles []any
	states  []atomix.Int32

	// roundRobin caches policy.RoundRobin() as observed by the most
	// recent Run, so Stop knows whether handles holds one entry per
	// runner or a single shared entry at index 0.
	roundRobin bool

	mu sync.Mutex
}

// FlowGraphOption configures [NewFlowGraph].
type FlowGraphOption func(*FlowGraph)

// WithLogger overrides the default [NopLogger].
func WithLogger(l Logger) FlowGraphOption {
	return func(fg *FlowGraph) { fg.log = l }
}

// NewFlowGraph validates runners' topology and constructs a FlowGraph
// that will later drive them under policy. Returns an *[Error] of
// [KindInvalidTopology] if runners is empty, contains a nil or duplicate
// entry, binds a nil output channel, or binds the same output channel to
// more than one runner.
func NewFlowGraph(policy TaskPolicy, runners []Runner, opts ...FlowGraphOption) (*FlowGraph, error) {
	fg := &FlowGraph{
		policy:  policy,
		log:     NopLogger{},
		runners: runners,
		handles: make([]any, len(runners)),
		states:  make([]atomix.Int32, len(runners)),
	}
	for _, opt := range opts {
		opt(fg)
	}
	if err := fg.validateTopology(); err != nil {
		return nil, err
	}
	return fg, nil
}

// validateTopology checks the structural invariants spec.md §4.E and §6
// name for flowgraph wiring: a non-empty, duplicate-free runner list,
// and output channels that are neither nil nor shared across runners
// (the SPSC uniqueness invariant). Input channels are ordinary fields on
// user block types and are not visible here, so this check covers
// outputs only — the half of the invariant a [Runner]'s type-erased
// interface can actually expose.
func (fg *FlowGraph) validateTopology() error {
	if len(fg.runners) == 0 {
		return NewError(KindInvalidTopology, nil)
	}
	seenRunners := make(map[Runner]struct{}, len(fg.runners))
	seenOutputs := make(map[any]struct{})
	for _, r := range fg.runners {
		if r == nil {
			return NewError(KindInvalidTopology, nil)
		}
		if _, dup := seenRunners[r]; dup {
			return NewError(KindInvalidTopology, nil)
		}
		seenRunners[r] = struct{}{}

		for _, out := range r.outputs() {
			if out == nil {
				return NewError(KindInvalidTopology, nil)
			}
			if _, dup := seenOutputs[out]; dup {
				return NewError(KindInvalidTopology, nil)
			}
			seenOutputs[out] = struct{}{}
		}
	}
	return nil
}

// Run re-validates topology (spec.md §6: "validated at run() time") and
// starts every runner under the flowgraph's [TaskPolicy]. Under a
// round-robin policy ([CooperativePolicy], [SynchronousPolicy]) a single
// task drives every runner in declaration order; under [HostedPolicy]
// each runner gets its own task. Returns an *[Error] of
// [KindInvalidTopology] if topology is no longer valid.
//
// Run returns immediately for round-robin policies backed by a real
// goroutine (CooperativePolicy) and for HostedPolicy. Under
// SynchronousPolicy, Run blocks on the calling goroutine for the
// lifetime of the run.
func (fg *FlowGraph) Run() error {
	fg.mu.Lock()

	if verr := fg.validateTopology(); verr != nil {
		fg.mu.Unlock()
		return verr
	}

	fg.roundRobin = fg.policy.RoundRobin()
	for i := range fg.runners {
		fg.states[i].StoreRelease(int32(stateStarting))
		fg.states[i].StoreRelease(int32(stateRunning))
	}

	if fg.roundRobin {
		fg.mu.Unlock()
		handle := fg.policy.CreateTask(func() { fg.driveRoundRobin() })
		fg.mu.Lock()
		defer fg.mu.Unlock()
		fg.handles[0] = handle
		return nil
	}
	defer fg.mu.Unlock()

	for i, r := range fg.runners {
		runner, idx := r, i
		fg.handles[idx] = fg.policy.CreateTask(func() { fg.driveRunner(idx, runner) })
	}
	return nil
}

// driveRunner repeatedly Steps runner, applying the adaptive backoff
// ladder between non-fatal misses, until this runner's own state leaves
// Running (via Stop or a fatal error).
func (fg *FlowGraph) driveRunner(idx int, runner Runner) {
	var bo adaptiveBackoff
	for runState(fg.states[idx].LoadAcquire()) == stateRunning {
		res := runner.Step()
		if res.IsErr() {
			rerr := res.UnwrapErr()
			if rerr.IsFatal() {
				fg.log.Errorf("runner %q failed: %v", runner.Name(), rerr)
				fg.states[idx].StoreRelease(int32(stateFailed))
				return
			}
			if bo.miss() {
				runner.Stats().recordSleep()
			}
			continue
		}
		bo.reset()
	}
}

// driveRoundRobin steps every still-Running runner once per pass, in
// declaration order, for policies that dedicate a single task to the
// whole graph (spec.md §4.F's cooperative and streamlined models). A
// runner that fails fatally is marked Failed and skipped on later
// passes without affecting any other runner. The loop ends once no
// runner is Running, or once the active policy's continuation hook (if
// any) reports false.
func (fg *FlowGraph) driveRoundRobin() {
	bos := make([]adaptiveBackoff, len(fg.runners))
	for {
		anyRunning := false
		for i, r := range fg.runners {
			if runState(fg.states[i].LoadAcquire()) != stateRunning {
				continue
			}
			anyRunning = true
			res := r.Step()
			if res.IsErr() {
				rerr := res.UnwrapErr()
				if rerr.IsFatal() {
					fg.log.Errorf("runner %q failed: %v", r.Name(), rerr)
					fg.states[i].StoreRelease(int32(stateFailed))
					continue
				}
				if bos[i].miss() {
					r.Stats().recordSleep()
				}
				continue
			}
			bos[i].reset()
		}
		if !anyRunning {
			return
		}
		if cp, ok := fg.policy.(continuer); ok && !cp.shouldContinue() {
			return
		}
		fg.policy.Yield()
	}
}

// Stop requests every runner still Running to exit its loop, waits for
// the launched task(s) to return, and resets every Failed runner back to
// Idle. Stop is idempotent: calling it when every runner is already Idle
// is a no-op.
func (fg *FlowGraph) Stop() {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	for i := range fg.runners {
		fg.states[i].CompareAndSwapAcqRel(int32(stateRunning), int32(stateStopping))
	}

	if fg.roundRobin {
		if fg.handles[0] != nil {
			fg.policy.Join(fg.handles[0])
			fg.handles[0] = nil
		}
	} else {
		for i := range fg.runners {
			if fg.handles[i] != nil {
				fg.policy.Join(fg.handles[i])
				fg.handles[i] = nil
			}
		}
	}

	for i := range fg.runners {
		fg.states[i].CompareAndSwapAcqRel(int32(stateStopping), int32(stateIdle))
		fg.states[i].CompareAndSwapAcqRel(int32(stateFailed), int32(stateIdle))
	}
}

// Failed reports whether any runner is currently in the Failed state.
func (fg *FlowGraph) Failed() bool {
	for i := range fg.states {
		if runState(fg.states[i].LoadAcquire()) == stateFailed {
			return true
		}
	}
	return false
}

// Stats returns a snapshot of every runner's statistics, in the order
// runners were passed to [NewFlowGraph].
func (fg *FlowGraph) Stats() []Snapshot {
	out := make([]Snapshot, len(fg.runners))
	for i, r := range fg.runners {
		out[i] = r.Stats().Snapshot()
	}
	return out
}
