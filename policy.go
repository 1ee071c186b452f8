// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import (
	"runtime"
	"sync"
	"time"
)

// TaskPolicy abstracts how a [FlowGraph] schedules its runners, mirroring
// the interchangeable policy template parameter of
// original_source/include/task_policies/cler_stdthread_policy.hpp:
// CreateTask corresponds to create_thread, Join to join_thread, Yield to
// yield, and SleepMicros to sleep_us.
//
// A policy is stateless across runners: FlowGraph calls CreateTask once
// per runner at Run and Join once per runner at Stop when RoundRobin
// reports false, and CreateTask and Join once for the whole graph when it
// reports true.
type TaskPolicy interface {
	// CreateTask starts fn as a schedulable unit of work and returns a
	// handle Join can later wait on.
	CreateTask(fn func()) any
	// Join blocks until the task represented by handle has returned.
	Join(handle any)
	// Yield relinquishes the processor to other runnable work without
	// blocking for a fixed duration.
	Yield()
	// SleepMicros blocks the calling task for approximately us
	// microseconds.
	SleepMicros(us uint64)
	// RoundRobin reports whether a [FlowGraph] should drive every runner
	// from a single CreateTask call, visiting them in declaration order
	// once per pass, rather than launching one task per runner.
	//
	// HostedPolicy reports false (one preemptive thread per runner);
	// CooperativePolicy and SynchronousPolicy report true, matching
	// spec.md §4.F's single-task cooperative and streamlined models.
	RoundRobin() bool
}

// HostedPolicy runs each block on its own goroutine, matching
// StdThreadPolicy's std::thread-per-runner model for general-purpose
// host operating systems (spec.md §4.F, "hosted pre-emptive threads").
type HostedPolicy struct{}

type hostedTask struct {
	wg sync.WaitGroup
}

// CreateTask launches fn on a new goroutine.
func (HostedPolicy) CreateTask(fn func()) any {
	t := &hostedTask{}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
	return t
}

// Join waits for the goroutine started by CreateTask to return.
func (HostedPolicy) Join(handle any) {
	handle.(*hostedTask).wg.Wait()
}

// Yield calls runtime.Gosched.
func (HostedPolicy) Yield() { runtime.Gosched() }

// SleepMicros sleeps the calling goroutine for us microseconds.
func (HostedPolicy) SleepMicros(us uint64) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// RoundRobin reports false: a [FlowGraph] under HostedPolicy gives each
// runner its own goroutine.
func (HostedPolicy) RoundRobin() bool { return false }

// CooperativePolicy drives every runner from a single dedicated
// goroutine, visiting them in declaration order once per tick. It
// suits single-threaded hosts and RTOS-style targets that cannot spawn
// one preemptive thread per runner (spec.md §4.F, "cooperative
// RTOS-style scheduling") while still letting [FlowGraph.Run] return to
// its caller immediately.
//
// CreateTask starts fn (the flowgraph's round-robin driver) on its own
// goroutine, the same launch-and-track-a-handle shape as HostedPolicy;
// the difference from HostedPolicy is that a FlowGraph under
// CooperativePolicy calls CreateTask once for the whole graph rather
// than once per runner (see [TaskPolicy.RoundRobin]).
type CooperativePolicy struct{}

// CreateTask launches fn on a new goroutine, mirroring HostedPolicy.
func (CooperativePolicy) CreateTask(fn func()) any {
	t := &hostedTask{}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
	return t
}

// Join waits for the goroutine started by CreateTask to return.
func (CooperativePolicy) Join(handle any) {
	handle.(*hostedTask).wg.Wait()
}

// Yield calls runtime.Gosched, the cooperative-scheduling equivalent of
// ceding the single logical thread to the next tick.
func (CooperativePolicy) Yield() { runtime.Gosched() }

// SleepMicros sleeps the calling goroutine for us microseconds via
// time.Sleep, the stand-in for an RTOS delay primitive.
func (CooperativePolicy) SleepMicros(us uint64) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// RoundRobin reports true: a [FlowGraph] under CooperativePolicy drives
// every runner from the single goroutine CreateTask starts.
func (CooperativePolicy) RoundRobin() bool { return true }

// SynchronousPolicy runs a flowgraph's runners inline, one pass at a
// time, on the caller's own goroutine with no concurrency at all — the
// streamlined single-thread mode spec.md §4.F calls out for
// latency-sensitive embedded targets and for deterministic tests.
// [FlowGraph.Run] blocks for the lifetime of the run under this policy,
// returning only once the round-robin pass over every runner observes
// ShouldContinue return false (or every runner has stopped or failed).
//
// ShouldContinue, when non-nil, is polled once per full pass over the
// runners; returning false ends the run. This is the resolution to the
// spec's open question about how a synchronous FlowGraph avoids
// spinning forever: without the hook, Run would have no way to return
// once every source block is exhausted. A nil ShouldContinue means
// "always continue" — the caller must stop the graph some other way
// (another goroutine calling [FlowGraph.Stop]).
type SynchronousPolicy struct {
	ShouldContinue func() bool
}

// CreateTask runs fn inline, blocking the calling goroutine until fn
// returns.
func (SynchronousPolicy) CreateTask(fn func()) any {
	fn()
	return nil
}

// Join is a no-op: CreateTask already ran fn to completion.
func (SynchronousPolicy) Join(any) {}

// Yield is a no-op: there is only one task, and no-op preserves the
// deterministic, single-threaded execution order synchronous mode is
// for.
func (SynchronousPolicy) Yield() {}

// SleepMicros sleeps for us microseconds via time.Sleep; a
// synchronous-policy host is expected to be a short-lived test or batch
// run rather than a long-running service.
func (SynchronousPolicy) SleepMicros(us uint64) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// RoundRobin reports true: a [FlowGraph] under SynchronousPolicy drives
// every runner inline, in declaration order, from the single call to
// CreateTask that Run makes.
func (SynchronousPolicy) RoundRobin() bool { return true }

// shouldContinue consults ShouldContinue, defaulting to true when it is
// nil. FlowGraph's round-robin drive loop calls this once per full pass
// when the active policy implements it.
func (p SynchronousPolicy) shouldContinue() bool {
	if p.ShouldContinue == nil {
		return true
	}
	return p.ShouldContinue()
}
