// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import (
	"runtime"
	"time"

	"code.hybscloud.com/spin"
)

// Backoff thresholds and timing, per spec.md §4.G's adaptive ladder:
// a short run of misses spins in place, a longer run yields the
// processor, and a sustained run sleeps for a geometrically growing,
// capped interval.
const (
	backoffSpinThreshold  = 4
	backoffYieldThreshold = 16
	backoffSleepThreshold = 64

	backoffSleepBase = 50 * time.Microsecond
	backoffSleepCap  = 4 * time.Millisecond
)

// adaptiveBackoff implements the miss-count-driven ladder a [Runner]
// applies between unsuccessful Step calls: spin.Wait.Once() while misses
// are few, runtime.Gosched() once they accumulate, and an exponentially
// growing time.Sleep beyond that, reset to the bottom of the ladder on
// the next success.
//
// Grounded on [code.hybscloud.com/lfq]'s spin.Wait{}-in-a-retry-loop
// idiom (see mpmc.go), generalized here across call boundaries since a
// runner's Step is one miss per call rather than one loop iteration.
type adaptiveBackoff struct {
	misses uint32
	sw     spin.Wait
}

// miss records one unsuccessful Step and applies the next rung of the
// ladder. It reports whether a sleep was applied, so callers can update
// [BlockStats.sleepsApplied].
func (b *adaptiveBackoff) miss() (slept bool) {
	b.misses++
	switch {
	case b.misses <= backoffSpinThreshold:
		b.sw.Once()
		return false
	case b.misses <= backoffYieldThreshold:
		runtime.Gosched()
		return false
	case b.misses <= backoffSleepThreshold:
		// Geometric growth from backoffSleepBase up to backoffSleepCap
		// across the (backoffYieldThreshold, backoffSleepThreshold]
		// miss range. b.misses > backoffYieldThreshold here, so level
		// is always >= 0 — no underflow.
		level := b.misses - backoffYieldThreshold - 1
		d := backoffSleepBase * time.Duration(1<<min(level, 8))
		if d > backoffSleepCap {
			d = backoffSleepCap
		}
		time.Sleep(d)
		return true
	default:
		time.Sleep(backoffSleepCap)
		return true
	}
}

// reset returns the ladder to its bottom rung after a successful Step.
func (b *adaptiveBackoff) reset() {
	b.misses = 0
}
