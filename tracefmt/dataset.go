// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tracefmt reads and writes workload trace datasets.
//
// A trace is a CSV file whose header names the dimensions of the
// workload domain (e.g. "cpu,mem") and whose rows are points in that
// domain. The Reader is structured as a streaming operation modeled
// on bufio.Scanner so large traces can be processed incrementally;
// Dataset is the materialized, immutable form consumed by the
// comparison engine.
package tracefmt

import (
	"fmt"
	"sync"

	"github.com/tracelab/fidelity/binning"
)

// A Dataset is an ordered, finite collection of points in a
// multi-dimensional domain with named dimensions. It is immutable:
// all accessors return views the caller must not modify.
type Dataset struct {
	cols   []string
	points [][]float64

	normOnce sync.Once
	norm     [][]float64
}

// NewDataset returns a Dataset over the given points. Every point
// must have one coordinate per column.
func NewDataset(cols []string, points [][]float64) (*Dataset, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("dataset needs at least one column")
	}
	for i, p := range points {
		if len(p) != len(cols) {
			return nil, fmt.Errorf("point %d has %d coordinates, dataset has %d columns", i, len(p), len(cols))
		}
	}
	return &Dataset{cols: cols, points: points}, nil
}

// Columns returns the dimension names.
func (d *Dataset) Columns() []string { return d.cols }

// Dims returns the dimensionality of the dataset.
func (d *Dataset) Dims() int { return len(d.cols) }

// Len returns the number of points.
func (d *Dataset) Len() int { return len(d.points) }

// Points returns the dataset's points in order. If normalized is
// true, each dimension is rescaled into [0, 1] by this dataset's own
// observed extent, so dimensions with different native units carry
// equal weight in distance computations. A dimension with zero extent
// maps to 0. The normalized view is computed once and cached.
func (d *Dataset) Points(normalized bool) [][]float64 {
	if !normalized {
		return d.points
	}
	d.normOnce.Do(d.normalize)
	return d.norm
}

func (d *Dataset) normalize() {
	lo := make([]float64, d.Dims())
	hi := make([]float64, d.Dims())
	for j := range lo {
		for i, p := range d.points {
			if i == 0 || p[j] < lo[j] {
				lo[j] = p[j]
			}
			if i == 0 || p[j] > hi[j] {
				hi[j] = p[j]
			}
		}
	}

	d.norm = make([][]float64, len(d.points))
	flat := make([]float64, len(d.points)*d.Dims())
	for i, p := range d.points {
		q := flat[i*d.Dims() : (i+1)*d.Dims() : (i+1)*d.Dims()]
		for j, x := range p {
			if hi[j] > lo[j] {
				q[j] = (x - lo[j]) / (hi[j] - lo[j])
			}
		}
		d.norm[i] = q
	}
}

// Histogram counts this dataset's raw points into a histogram over b.
// The cell ordering is determined entirely by b, so histograms of
// different datasets over the same binning are cell-aligned.
func (d *Dataset) Histogram(b *binning.Binning) (*binning.Histogram, error) {
	h, err := b.Count(d.points)
	if err != nil {
		return nil, fmt.Errorf("histogramming dataset: %w", err)
	}
	return h, nil
}
