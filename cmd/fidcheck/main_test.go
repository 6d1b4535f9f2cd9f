// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"reflect"
	"testing"

	"github.com/tracelab/fidelity/kpi"
	"github.com/tracelab/fidelity/tracefmt"
)

func dataset(t *testing.T, cols []string, points [][]float64) *tracefmt.Dataset {
	t.Helper()
	ds, err := tracefmt.NewDataset(cols, points)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

func TestParseCounts(t *testing.T) {
	test := func(bins string, dims int, want []int) {
		t.Helper()
		got, err := parseCounts(bins, dims)
		if err != nil {
			t.Errorf("parseCounts(%q, %d): %v", bins, dims, err)
			return
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("parseCounts(%q, %d): got %v, want %v", bins, dims, got, want)
		}
	}
	test("10", 1, []int{10})
	test("10", 3, []int{10, 10, 10})
	test("4, 8", 2, []int{4, 8})

	bad := func(bins string, dims int) {
		t.Helper()
		if _, err := parseCounts(bins, dims); err == nil {
			t.Errorf("parseCounts(%q, %d): expected error", bins, dims)
		}
	}
	bad("4,8", 3)
	bad("0", 1)
	bad("x", 1)
}

func TestBuildBinning(t *testing.T) {
	real := dataset(t, []string{"cpu", "mem"}, [][]float64{{0, 5}, {4, 7}})
	gen := dataset(t, []string{"cpu", "mem"}, [][]float64{{2, 3}, {8, 6}})

	// Union extent: cpu spans [0, 8], mem spans [3, 7].
	b, err := buildBinning("2", "", real, gen)
	if err != nil {
		t.Fatalf("buildBinning: %v", err)
	}
	if got := b.Edges(0); !reflect.DeepEqual(got, []float64{0, 4, 8}) {
		t.Errorf("cpu edges: got %v", got)
	}
	if got := b.Edges(1); !reflect.DeepEqual(got, []float64{3, 5, 7}) {
		t.Errorf("mem edges: got %v", got)
	}

	// Explicit domain: [0, hi] per dimension.
	b, err = buildBinning("4,2", "10,8", real, gen)
	if err != nil {
		t.Fatalf("buildBinning with -domain: %v", err)
	}
	if got := b.Edges(0); !reflect.DeepEqual(got, []float64{0, 2.5, 5, 7.5, 10}) {
		t.Errorf("cpu edges: got %v", got)
	}

	if _, err := buildBinning("2", "10", real, gen); err == nil {
		t.Error("expected error for domain/dimension mismatch")
	}
	if _, err := buildBinning("2", "10,-1", real, gen); err == nil {
		t.Error("expected error for non-positive bound")
	}
}

func TestBuildBinningZeroExtent(t *testing.T) {
	// A constant dimension still has to produce non-empty cells.
	real := dataset(t, []string{"cpu"}, [][]float64{{3}, {3}})
	gen := dataset(t, []string{"cpu"}, [][]float64{{3}})
	b, err := buildBinning("4", "", real, gen)
	if err != nil {
		t.Fatalf("buildBinning: %v", err)
	}
	h, err := real.Histogram(b)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if got := h.Total(); got != 2 {
		t.Errorf("histogram total: got %v, want 2", got)
	}
}

func TestFormatScore(t *testing.T) {
	if got := formatScore(kpi.Score{Value: 0.5, Defined: true}); got != "0.5000" {
		t.Errorf("got %q", got)
	}
	if got := formatScore(kpi.Score{}); got != "n/a" {
		t.Errorf("got %q, want n/a", got)
	}
}
