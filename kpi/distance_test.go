// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kpi

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"github.com/tracelab/fidelity/binning"
)

func TestDistanceSelf(t *testing.T) {
	// Each point of {0, 10} has mean distance 5 to the set, so
	// cross = 10 in each direction and the statistic is 20/4.
	a := pts(0, 10)
	e := mustEngine(t, a, a, twoBins(t))
	got, err := e.Distance(context.Background())
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	wantFloat(t, "distance", got, 5)
}

func TestDistanceSymmetric(t *testing.T) {
	a, b := pts(0, 1, 2, 7), pts(3, 5, 9)
	bn := twoBins(t)
	d1, err := mustEngine(t, a, b, bn).Distance(context.Background())
	if err != nil {
		t.Fatalf("Distance(a, b): %v", err)
	}
	d2, err := mustEngine(t, b, a, bn).Distance(context.Background())
	if err != nil {
		t.Fatalf("Distance(b, a): %v", err)
	}
	wantFloat(t, "symmetry", d1, d2)
	if d1 < 0 {
		t.Errorf("distance %v is negative", d1)
	}
}

func TestDistanceMultiDim(t *testing.T) {
	// Two 2-D point sets offset by (3, 4): every cross-set
	// distance is 5, so the statistic is 5 regardless of sizes.
	a := pointsSource{[][]float64{{0, 0}, {0, 0}, {0, 0}}}
	b := pointsSource{[][]float64{{3, 4}, {3, 4}}}
	bn, err := binning.NewRegular([]float64{0, 0}, []float64{5, 5}, []int{1, 1})
	if err != nil {
		t.Fatalf("NewRegular: %v", err)
	}
	got, err := mustEngine(t, a, b, bn).Distance(context.Background())
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	wantFloat(t, "distance", got, 5)
}

func TestDistanceChunkInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var xs []float64
	for i := 0; i < 100; i++ {
		xs = append(xs, rng.Float64()*10)
	}
	a, b := pts(xs[:60]...), pts(xs[60:]...)
	bn := twoBins(t)

	base, err := mustEngine(t, a, b, bn, WithChunks(1)).Distance(context.Background())
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	for _, chunks := range []int{2, 5, 16, 200} {
		got, err := mustEngine(t, a, b, bn, WithChunks(chunks)).Distance(context.Background())
		if err != nil {
			t.Fatalf("Distance with %d chunks: %v", chunks, err)
		}
		if math.Abs(got-base) > 1e-9 {
			t.Errorf("with %d chunks: got %v, want %v", chunks, got, base)
		}
	}
}

func TestDistanceEmptySet(t *testing.T) {
	e := mustEngine(t, pts(1, 7), pointsSource{}, twoBins(t))
	_, err := e.Distance(context.Background())
	var derr *DegenerateInputError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DegenerateInputError, got %v", err)
	}
	if derr.Metric != "distance" {
		t.Errorf("metric: got %q, want %q", derr.Metric, "distance")
	}
}

func TestDistanceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := mustEngine(t, pts(0, 10), pts(1, 9), twoBins(t))
	if _, err := e.Distance(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSplitChunks(t *testing.T) {
	test := func(n, chunks int, wantSizes []int) {
		t.Helper()
		points := make([][]float64, n)
		for i := range points {
			points[i] = []float64{float64(i)}
		}
		got := splitChunks(points, chunks)
		var sizes []int
		var flat [][]float64
		for _, c := range got {
			sizes = append(sizes, len(c))
			flat = append(flat, c...)
		}
		if !reflect.DeepEqual(sizes, wantSizes) {
			t.Errorf("split %d into %d: sizes %v, want %v", n, chunks, sizes, wantSizes)
		}
		// Chunks are contiguous and cover the input in order.
		if n > 0 && !reflect.DeepEqual(flat, points) {
			t.Errorf("split %d into %d does not reassemble the input", n, chunks)
		}
	}
	test(10, 3, []int{4, 3, 3})
	test(9, 3, []int{3, 3, 3})
	test(2, 4, []int{1, 1, 0, 0})
	test(0, 2, []int{0, 0})
}

// Engine state is immutable after construction, so concurrent
// queries must agree with serial ones.
func TestConcurrentQueries(t *testing.T) {
	e := mustEngine(t, pts(1, 2, 3, 7), pts(1, 2, 6, 7), twoBins(t))
	wantDist, err := e.Distance(context.Background())
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errVal, err := e.Error()
			if err != nil {
				t.Errorf("Error: %v", err)
				return
			}
			if math.Abs(errVal-0.25) > 1e-12 {
				t.Errorf("error: got %v, want 0.25", errVal)
			}
			rep, err := e.Quality()
			if err != nil {
				t.Errorf("Quality: %v", err)
				return
			}
			if math.Abs(rep.AllBins.Value-1.0/3) > 1e-12 {
				t.Errorf("quality: got %v, want 1/3", rep.AllBins.Value)
			}
			dist, err := e.Distance(context.Background())
			if err != nil {
				t.Errorf("Distance: %v", err)
				return
			}
			if math.Abs(dist-wantDist) > 1e-12 {
				t.Errorf("distance: got %v, want %v", dist, wantDist)
			}
		}()
	}
	wg.Wait()
}
