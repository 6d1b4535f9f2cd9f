// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kpi

import (
	"context"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Distance returns a two-sample distance between the real and
// generated point clouds in normalized coordinates: the sum of each
// set's average Euclidean distance to the other set, normalized by
// the total point count. It is symmetric in the two sets and
// non-negative.
//
// The computation is exact (every cross-set pair contributes) but
// the pairwise matrix is never materialized. Each direction is split
// into chunk tasks that run concurrently; Distance blocks until both
// directions finish. If ctx is cancelled the whole call fails, with
// no partial result.
//
// If either point set is empty the statistic is undefined and a
// *DegenerateInputError is returned.
func (e *Engine) Distance(ctx context.Context) (float64, error) {
	s1 := e.real.Points(true)
	s2 := e.gen.Points(true)
	if len(s1) == 0 || len(s2) == 0 {
		return 0, &DegenerateInputError{
			Metric: "distance",
			Reason: "point set is empty",
		}
	}

	c1, err := e.cross(ctx, s1, s2)
	if err != nil {
		return 0, err
	}
	c2, err := e.cross(ctx, s2, s1)
	if err != nil {
		return 0, err
	}
	return (c1 + c2) / float64(len(s1)+len(s2)), nil
}

// cross sums, over every point x in set, the mean Euclidean distance
// from x to the entire other set. set is chunked; other is visited in
// full by every chunk task.
func (e *Engine) cross(ctx context.Context, set, other [][]float64) (float64, error) {
	inv := 1 / float64(len(other))
	return parallelSum(ctx, splitChunks(set, e.chunks), func(chunk [][]float64) float64 {
		var sum float64
		for _, x := range chunk {
			if ctx.Err() != nil {
				// The reduction is being abandoned; the
				// partial value is discarded by parallelSum.
				return 0
			}
			var d float64
			for _, y := range other {
				d += floats.Distance(x, y, 2)
			}
			sum += d * inv
		}
		return sum
	})
}

// splitChunks partitions points into n contiguous chunks whose sizes
// differ by at most one. When n exceeds len(points), the trailing
// chunks are empty.
func splitChunks(points [][]float64, n int) [][][]float64 {
	chunks := make([][][]float64, n)
	base, extra := len(points)/n, len(points)%n
	pos := 0
	for i := range chunks {
		size := base
		if i < extra {
			size++
		}
		chunks[i] = points[pos : pos+size]
		pos += size
	}
	return chunks
}

// parallelSum runs one task goroutine per chunk and folds the partial
// results with a sum. Each task is a pure function of its chunk, so
// there is no shared state to lock and completion order does not
// matter. If ctx is cancelled before every task finishes, parallelSum
// returns ctx's error and no partial result.
func parallelSum(ctx context.Context, chunks [][][]float64, task func(chunk [][]float64) float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	partial := make([]float64, len(chunks))
	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c [][]float64) {
			defer wg.Done()
			partial[i] = task(c)
		}(i, c)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-done:
	}

	var sum float64
	for _, p := range partial {
		sum += p
	}
	return sum, nil
}
