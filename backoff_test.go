// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

import (
	"testing"
	"time"
)

func TestAdaptiveBackoffLadder(t *testing.T) {
	var b adaptiveBackoff

	for i := 0; i < backoffSpinThreshold; i++ {
		if slept := b.miss(); slept {
			t.Fatalf("miss(%d): spin-rung miss reported a sleep", i)
		}
	}
	for i := backoffSpinThreshold; i < backoffYieldThreshold; i++ {
		if slept := b.miss(); slept {
			t.Fatalf("miss(%d): yield-rung miss reported a sleep", i)
		}
	}

	start := time.Now()
	slept := b.miss()
	if !slept {
		t.Fatalf("miss past yield threshold: want a sleep to be applied")
	}
	if time.Since(start) <= 0 {
		t.Fatalf("miss past yield threshold: want non-zero elapsed time")
	}
}

func TestAdaptiveBackoffResetReturnsToSpinRung(t *testing.T) {
	var b adaptiveBackoff
	for i := 0; i < backoffYieldThreshold+5; i++ {
		b.miss()
	}
	b.reset()
	if slept := b.miss(); slept {
		t.Fatalf("miss after reset: want spin rung, not sleep")
	}
}

func TestAdaptiveBackoffSleepCapped(t *testing.T) {
	var b adaptiveBackoff
	for i := 0; i < backoffYieldThreshold; i++ {
		b.miss()
	}
	// Drive 20 misses through the sleep rung, far enough for the geometric
	// sleep to reach backoffSleepCap; none should individually exceed it.
	for i := 0; i < 20; i++ {
		start := time.Now()
		b.miss()
		if d := time.Since(start); d > backoffSleepCap*2 {
			t.Fatalf("miss(%d): slept %v, want <= ~%v", i, d, backoffSleepCap)
		}
	}
}
