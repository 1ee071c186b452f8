// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler_test

import (
	"testing"
	"time"

	"code.hybscloud.com/cler"
)

// waitUntil polls cond at a short interval until it reports true or the
// deadline passes, returning whether cond became true in time.
func waitUntil(deadline time.Duration, cond func() bool) bool {
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

// Scenario 1: gain passthrough.
func TestFlowGraphGainPassthrough(t *testing.T) {
	mid, err := cler.NewChannel[float32](8)
	if err != nil {
		t.Fatalf("NewChannel(mid): %v", err)
	}
	out, err := cler.NewChannel[float32](8)
	if err != nil {
		t.Fatalf("NewChannel(out): %v", err)
	}

	src := newSourceBlock("source", []float32{1, 2, 3, 4, 5})
	gain := newGainBlock("gain", mid, 2.0, 1)
	sink := newSinkBlock("sink", out)

	runners := []cler.Runner{
		cler.NewRunner1[float32](src, mid),
		cler.NewRunner1[float32](gain, out),
		cler.NewRunner0(sink),
	}
	fg, err := cler.NewFlowGraph(cler.HostedPolicy{}, runners)
	if err != nil {
		t.Fatalf("NewFlowGraph: %v", err)
	}
	if err := fg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer fg.Stop()

	want := []float32{2, 4, 6, 8, 10}
	ok := waitUntil(500*time.Millisecond, func() bool { return len(sink.Got) >= len(want) })
	fg.Stop()

	if !ok {
		t.Fatalf("sink received %d samples, want %d", len(sink.Got), len(want))
	}
	for i, v := range want {
		if sink.Got[i] != v {
			t.Fatalf("sink.Got[%d]: got %v, want %v", i, sink.Got[i], v)
		}
	}
}

// Scenario 3: fan-in adder.
func TestFlowGraphFanInAdder(t *testing.T) {
	a, err := cler.NewChannel[float32](8)
	if err != nil {
		t.Fatalf("NewChannel(a): %v", err)
	}
	b, err := cler.NewChannel[float32](8)
	if err != nil {
		t.Fatalf("NewChannel(b): %v", err)
	}
	out, err := cler.NewChannel[float32](8)
	if err != nil {
		t.Fatalf("NewChannel(out): %v", err)
	}

	srcA := newSourceBlock("srcA", []float32{1, 1, 1, 1})
	srcB := newSourceBlock("srcB", []float32{2, 2, 2, 2})
	adder := newAddBlock("adder", a, b)
	sink := newSinkBlock("sink", out)

	runners := []cler.Runner{
		cler.NewRunner1[float32](srcA, a),
		cler.NewRunner1[float32](srcB, b),
		cler.NewRunner1[float32](adder, out),
		cler.NewRunner0(sink),
	}
	fg, err := cler.NewFlowGraph(cler.HostedPolicy{}, runners)
	if err != nil {
		t.Fatalf("NewFlowGraph: %v", err)
	}
	if err := fg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer fg.Stop()

	want := []float32{3, 3, 3, 3}
	ok := waitUntil(500*time.Millisecond, func() bool { return len(sink.Got) >= len(want) })
	fg.Stop()

	if !ok {
		t.Fatalf("sink received %d samples, want %d", len(sink.Got), len(want))
	}
	for i, v := range want {
		if sink.Got[i] != v {
			t.Fatalf("sink.Got[%d]: got %v, want %v", i, sink.Got[i], v)
		}
	}
}

// Scenario 5: cooperative shutdown — a single round-robin task actually
// steps every runner (not zero, as a broken Starting/Running ordering
// would produce), Stop joins that task, stats are monotonic, and a
// fresh Run on the same graph produces further invocations.
func TestFlowGraphCooperativeShutdown(t *testing.T) {
	mid, _ := cler.NewChannel[float32](8)
	out, _ := cler.NewChannel[float32](8)

	src := newSourceBlock("source", repeatFloat(1, 100000))
	gain := newGainBlock("gain", mid, 2.0, 1)
	sink := newSinkBlock("sink", out)

	runners := []cler.Runner{
		cler.NewRunner1[float32](src, mid),
		cler.NewRunner1[float32](gain, out),
		cler.NewRunner0(sink),
	}
	fg, err := cler.NewFlowGraph(cler.CooperativePolicy{}, runners)
	if err != nil {
		t.Fatalf("NewFlowGraph: %v", err)
	}
	if err := fg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	ok := waitUntil(500*time.Millisecond, func() bool { return len(sink.Got) > 0 })
	fg.Stop()

	if !ok {
		t.Fatalf("cooperative round-robin task made zero Steps")
	}

	before := fg.Stats()
	for _, s := range before {
		if s.Successes <= 0 {
			t.Fatalf("stats must show at least one success under a round-robin policy: %+v", s)
		}
	}

	// Idempotent: calling Stop again on an already-Idle graph is a no-op.
	fg.Stop()

	if err := fg.Run(); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	fg.Stop()
	after := fg.Stats()
	for i := range after {
		if after[i].Successes < before[i].Successes {
			t.Fatalf("stats[%d].Successes decreased across runs: %d -> %d",
				i, before[i].Successes, after[i].Successes)
		}
	}
}

// TestFlowGraphSynchronousRoundRobin exercises SynchronousPolicy's inline,
// blocking Run: ShouldContinue caps the number of round-robin passes, so
// Run returns on its own without a concurrent Stop call.
func TestFlowGraphSynchronousRoundRobin(t *testing.T) {
	mid, _ := cler.NewChannel[float32](8)
	out, _ := cler.NewChannel[float32](8)

	src := newSourceBlock("source", repeatFloat(1, 100000))
	gain := newGainBlock("gain", mid, 2.0, 1)
	sink := newSinkBlock("sink", out)

	runners := []cler.Runner{
		cler.NewRunner1[float32](src, mid),
		cler.NewRunner1[float32](gain, out),
		cler.NewRunner0(sink),
	}

	var passes int
	policy := cler.SynchronousPolicy{
		ShouldContinue: func() bool {
			passes++
			return passes < 2000
		},
	}
	fg, err := cler.NewFlowGraph(policy, runners)
	if err != nil {
		t.Fatalf("NewFlowGraph: %v", err)
	}
	if err := fg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	fg.Stop()

	if len(sink.Got) == 0 {
		t.Fatalf("synchronous round-robin made zero Steps")
	}
}

// Scenario 6: fatal failure isolation — one chain's runner fails fatally,
// the other chain keeps making progress, and Stop still completes.
func TestFlowGraphFatalFailureIsolation(t *testing.T) {
	failChan, _ := cler.NewChannel[float32](8)
	okChan, _ := cler.NewChannel[float32](8)

	failing := newAlwaysFatalBlock("failing-source")
	healthy := newSourceBlock("healthy-source", repeatFloat(1, 100000))
	sink := newSinkBlock("sink", okChan)

	runners := []cler.Runner{
		cler.NewRunner1[float32](failing, failChan),
		cler.NewRunner1[float32](healthy, okChan),
		cler.NewRunner0(sink),
	}
	fg, err := cler.NewFlowGraph(cler.HostedPolicy{}, runners)
	if err != nil {
		t.Fatalf("NewFlowGraph: %v", err)
	}
	if err := fg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	ok := waitUntil(500*time.Millisecond, func() bool { return len(sink.Got) > 0 })
	fg.Stop()

	if !ok {
		t.Fatalf("healthy chain made no progress after the other chain failed fatally")
	}
}

// alwaysFatalBlock reports a fatal I/O error on every Step, exercising the
// runner's fatal-error path.
type alwaysFatalBlock struct {
	cler.BlockBase
}

func newAlwaysFatalBlock(name string) *alwaysFatalBlock {
	return &alwaysFatalBlock{BlockBase: cler.NewBlockBase(name)}
}

func (a *alwaysFatalBlock) Procedure(out cler.Channel[float32]) cler.Result[cler.Empty] {
	return cler.Err[cler.Empty](cler.NewError(cler.KindIOFatal, nil))
}

func repeatFloat(v float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}
