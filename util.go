// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cler

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// RoundDownPow2 rounds n down to the previous power of 2 (n if already a
// power of 2). Several original DSP blocks applied this to bulk transfer
// sizes for unclear reasons (SIMD alignment is one plausible motivation).
// spec.md flags the motivation as unclear and directs treating it as an
// optional optimization, never a correctness requirement — it is exposed
// here for block authors who want it but is not used anywhere on the
// core's hot path.
func RoundDownPow2(n int) int {
	if n <= 0 {
		return 0
	}
	p := 1
	for p<<1 <= n {
		p <<= 1
	}
	return p
}

// pad is cache line padding to prevent false sharing between hot atomic
// fields of a channel or runner.
type pad [64]byte
