// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kpi scores a generated dataset against a real reference
// dataset over a shared binning of their domain.
//
// An Engine is constructed once from a real source, a generated
// source, and a binning; construction eagerly materializes both
// histograms and their cell-wise difference. After that the engine is
// a pure read-only view: its three queries (Error, Quality and
// Distance) can each be called any number of times, from any number
// of goroutines, and fail independently.
//
// Error and Quality are synchronous array computations over the
// cached histograms. Distance operates on the raw normalized point
// sets instead and fans the work out across a pool of chunk tasks, so
// it never materializes the full pairwise distance matrix.
package kpi

import (
	"fmt"

	"github.com/tracelab/fidelity/binning"
)

// A DataSource provides a point set to be scored. Implementations
// must be immutable for the lifetime of any Engine built from them.
// *tracefmt.Dataset implements DataSource.
type DataSource interface {
	// Histogram counts the source's points into a histogram over
	// b. It must be deterministic: the same binning yields the
	// same cell ordering across calls and across sources.
	Histogram(b *binning.Binning) (*binning.Histogram, error)

	// Points returns the source's points in order. When
	// normalized is true, coordinates are rescaled per dimension
	// into [0, 1] by the source's own observed extent.
	Points(normalized bool) [][]float64
}

// defaultChunks is the number of chunk tasks a distance reduction is
// split into. It trades dispatch overhead against parallelism; the
// statistic itself is invariant to the chunk count.
const defaultChunks = 16

// An Engine computes fidelity metrics for one (real, generated,
// binning) triple. All state is derived at construction and never
// mutated, so a single Engine is safe for concurrent queries.
type Engine struct {
	real, gen DataSource

	h1, h2   *binning.Histogram
	h1f, h2f []float64
	diff     []float64 // h2f - h1f, cell-aligned

	chunks int
}

// An Option configures an Engine.
type Option func(*Engine)

// WithChunks sets the number of chunk tasks each direction of the
// distance reduction is split into. The default is 16.
func WithChunks(n int) Option {
	return func(e *Engine) { e.chunks = n }
}

// New builds an Engine for scoring gen against real over b. Both
// histograms and their difference are computed here, once; the
// returned Engine is read-only.
//
// New assumes the caller has already validated that both sources and
// the binning agree on dimensionality.
func New(real, gen DataSource, b *binning.Binning, opts ...Option) (*Engine, error) {
	e := &Engine{real: real, gen: gen, chunks: defaultChunks}
	for _, opt := range opts {
		opt(e)
	}
	if e.chunks < 1 {
		return nil, fmt.Errorf("chunk count must be at least 1, got %d", e.chunks)
	}

	var err error
	if e.h1, err = real.Histogram(b); err != nil {
		return nil, fmt.Errorf("real histogram: %w", err)
	}
	if e.h2, err = gen.Histogram(b); err != nil {
		return nil, fmt.Errorf("generated histogram: %w", err)
	}

	e.h1f = e.h1.Values
	e.h2f = e.h2.Values
	e.diff = make([]float64, len(e.h1f))
	for i := range e.diff {
		e.diff[i] = e.h2f[i] - e.h1f[i]
	}
	return e, nil
}

// A DegenerateInputError reports a metric whose defining ratio has a
// structurally zero denominator for the given (valid but degenerate)
// inputs. Metrics return it instead of propagating NaN into a
// report.
type DegenerateInputError struct {
	Metric string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return e.Metric + ": degenerate input: " + e.Reason
}

// Error returns the fraction of generated mass sitting in cells
// where the generated count exceeds the real count. The result is in
// [0, 1]. If the generated histogram carries no mass at all, the
// fraction is undefined and a *DegenerateInputError is returned.
func (e *Engine) Error() (float64, error) {
	var over, total float64
	for i, d := range e.diff {
		if d > 0 {
			over += d
		}
		total += e.h2f[i]
	}
	if total == 0 {
		return 0, &DegenerateInputError{
			Metric: "error",
			Reason: "generated histogram has zero total mass",
		}
	}
	return over / total, nil
}
