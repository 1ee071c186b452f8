// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vmem_test

import (
	"os"
	"testing"

	"code.hybscloud.com/cler/internal/vmem"
)

func TestCreateWrapTransparency(t *testing.T) {
	r, err := vmem.Create(4096)
	if err != nil {
		t.Skipf("doubly-mapped memory unsupported on this platform: %v", err)
	}
	defer r.Close()

	data := r.Data()
	second := r.Second()
	if len(data) != r.Size() {
		t.Fatalf("Data() length: got %d, want %d", len(data), r.Size())
	}
	if len(second) < r.Size() {
		t.Fatalf("Second() length: got %d, want >= %d", len(second), r.Size())
	}

	// Writing through the first mapping must be visible through the second.
	data[0] = 0xAB
	if second[0] != 0xAB {
		t.Fatalf("Second()[0] after Data()[0] write: got %#x, want 0xab", second[0])
	}

	second[1] = 0xCD
	if data[1] != 0xCD {
		t.Fatalf("Data()[1] after Second()[1] write: got %#x, want 0xcd", data[1])
	}
}

func TestCreateRoundsUpToGranularity(t *testing.T) {
	r, err := vmem.Create(1)
	if err != nil {
		t.Skipf("doubly-mapped memory unsupported on this platform: %v", err)
	}
	defer r.Close()

	if r.Size() < 1 || r.Size()%os.Getpagesize() != 0 {
		t.Fatalf("Size(): got %d, want a positive multiple of the page size %d", r.Size(), os.Getpagesize())
	}
}

func TestCloseIdempotent(t *testing.T) {
	r, err := vmem.Create(4096)
	if err != nil {
		t.Skipf("doubly-mapped memory unsupported on this platform: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close (idempotent): %v", err)
	}
}
