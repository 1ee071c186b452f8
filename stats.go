// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import (
	"time"

	"code.hybscloud.com/atomix"
)

// BlockStats holds per-block counters, updated only by the thread/task
// running that block (spec.md §5, "Statistics are written only by the
// runner's own thread"). Each field is tear-free on its own; there is no
// cross-field consistency guarantee while the owning runner is Running.
type BlockStats struct {
	Name string

	_                    pad
	successes            atomix.Int64
	_                    pad
	failNotEnoughSamples atomix.Int64
	_                    pad
	failNotEnoughSpace   atomix.Int64
	_                    pad
	failProcedure        atomix.Int64
	_                    pad
	failFatal            atomix.Int64
	_                    pad
	sleepsApplied        atomix.Int64
	_                    pad
	runNanos             atomix.Int64
	_                    pad
	lastInputFullness    atomix.Int64 // percent * 100, -1 if unknown
	_                    pad
	lastOutputFullness   atomix.Int64
}

// Snapshot is a coherent-per-field, possibly-stale copy of a BlockStats,
// safe to read from any goroutine. It is what [FlowGraph.Stats] returns.
type Snapshot struct {
	Name                 string
	Successes            int64
	FailNotEnoughSamples int64
	FailNotEnoughSpace   int64
	FailProcedure        int64
	FailFatal            int64
	SleepsApplied        int64
	RunTime              time.Duration
	LastInputFullness    int64 // percent * 100, -1 if unknown
	LastOutputFullness   int64
}

func newBlockStats(name string) *BlockStats {
	s := &BlockStats{Name: name}
	s.lastInputFullness.StoreRelaxed(-1)
	s.lastOutputFullness.StoreRelaxed(-1)
	return s
}

func (s *BlockStats) recordSuccess(d time.Duration) {
	s.successes.AddAcqRel(1)
	s.runNanos.AddAcqRel(d.Nanoseconds())
}

func (s *BlockStats) recordFail(kind Kind, d time.Duration) {
	s.runNanos.AddAcqRel(d.Nanoseconds())
	switch kind {
	case KindNotEnoughSamples:
		s.failNotEnoughSamples.AddAcqRel(1)
	case KindNotEnoughSpace:
		s.failNotEnoughSpace.AddAcqRel(1)
	case KindProcedure:
		s.failProcedure.AddAcqRel(1)
	default:
		s.failFatal.AddAcqRel(1)
	}
}

func (s *BlockStats) recordSleep() {
	s.sleepsApplied.AddAcqRel(1)
}

func (s *BlockStats) recordFullness(inPct, outPct int64) {
	s.lastInputFullness.StoreRelaxed(inPct)
	s.lastOutputFullness.StoreRelaxed(outPct)
}

// Snapshot returns a tear-free-per-field copy of the stats.
func (s *BlockStats) Snapshot() Snapshot {
	return Snapshot{
		Name:                 s.Name,
		Successes:            s.successes.LoadRelaxed(),
		FailNotEnoughSamples: s.failNotEnoughSamples.LoadRelaxed(),
		FailNotEnoughSpace:   s.failNotEnoughSpace.LoadRelaxed(),
		FailProcedure:        s.failProcedure.LoadRelaxed(),
		FailFatal:            s.failFatal.LoadRelaxed(),
		SleepsApplied:        s.sleepsApplied.LoadRelaxed(),
		RunTime:              time.Duration(s.runNanos.LoadRelaxed()),
		LastInputFullness:    s.lastInputFullness.LoadRelaxed(),
		LastOutputFullness:   s.lastOutputFullness.LoadRelaxed(),
	}
}
