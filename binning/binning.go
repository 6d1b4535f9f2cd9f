// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package binning partitions a multi-dimensional data domain into
// cells and counts point sets into histograms over that partition.
//
// A Binning is defined by sorted cell edges in each dimension. Cell
// grids (histogram values, cell volumes) are flattened row-major, so
// index i refers to the same spatial cell in every grid derived from
// the same Binning. This ordering invariant is what lets downstream
// consumers compare histograms from different datasets cell by cell.
package binning

import (
	"fmt"
	"sort"
	"strings"
)

// A Binning is a partition of a rectangular domain into a grid of
// cells, with per-dimension cell edges. It is immutable after
// construction.
type Binning struct {
	edges [][]float64 // per dimension, sorted, len(edges[d]) == shape[d]+1
	shape []int       // cells per dimension
	vols  []float64   // flattened row-major cell volumes
}

// New returns a Binning with the given per-dimension cell edges. Each
// dimension needs at least two non-decreasing edges spanning a
// non-empty extent. Repeated edges are allowed and produce zero-width
// cells; consumers that cannot tolerate zero cell volumes must treat
// them as degenerate input.
func New(edges [][]float64) (*Binning, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("binning needs at least one dimension")
	}
	b := &Binning{shape: make([]int, len(edges))}
	cells := 1
	for d, e := range edges {
		if len(e) < 2 {
			return nil, fmt.Errorf("dimension %d: need at least 2 edges, got %d", d, len(e))
		}
		for i := 1; i < len(e); i++ {
			if e[i] < e[i-1] {
				return nil, fmt.Errorf("dimension %d: edges must be non-decreasing at index %d", d, i)
			}
		}
		if e[len(e)-1] <= e[0] {
			return nil, fmt.Errorf("dimension %d: empty domain [%v, %v]", d, e[0], e[len(e)-1])
		}
		b.shape[d] = len(e) - 1
		cells *= b.shape[d]
		b.edges = append(b.edges, append([]float64(nil), e...))
	}

	// Materialize the volumes grid with the same flattening as any
	// histogram over this binning.
	b.vols = make([]float64, cells)
	idx := make([]int, len(edges))
	for i := range b.vols {
		v := 1.0
		for d, j := range idx {
			v *= b.edges[d][j+1] - b.edges[d][j]
		}
		b.vols[i] = v
		b.incIndex(idx)
	}
	return b, nil
}

// NewRegular returns a Binning that splits [lo[d], hi[d]] into
// counts[d] equal-width cells in each dimension d.
func NewRegular(lo, hi []float64, counts []int) (*Binning, error) {
	if len(lo) != len(hi) || len(lo) != len(counts) {
		return nil, fmt.Errorf("lo, hi and counts must have equal length (%d, %d, %d)", len(lo), len(hi), len(counts))
	}
	edges := make([][]float64, len(lo))
	for d := range lo {
		if counts[d] < 1 {
			return nil, fmt.Errorf("dimension %d: need at least 1 cell, got %d", d, counts[d])
		}
		if hi[d] <= lo[d] {
			return nil, fmt.Errorf("dimension %d: empty domain [%v, %v]", d, lo[d], hi[d])
		}
		e := make([]float64, counts[d]+1)
		width := (hi[d] - lo[d]) / float64(counts[d])
		for i := range e {
			e[i] = lo[d] + float64(i)*width
		}
		// Avoid accumulated rounding on the closed top edge.
		e[counts[d]] = hi[d]
		edges[d] = e
	}
	return New(edges)
}

// Dims returns the number of dimensions of the partitioned domain.
func (b *Binning) Dims() int { return len(b.edges) }

// Bins returns the total number of cells.
func (b *Binning) Bins() int { return len(b.vols) }

// Shape returns the number of cells in each dimension. The caller
// must not modify the returned slice.
func (b *Binning) Shape() []int { return b.shape }

// Edges returns the cell edges of dimension d. The caller must not
// modify the returned slice.
func (b *Binning) Edges(d int) []float64 { return b.edges[d] }

// Volumes returns the hyper-volume of every cell, flattened row-major
// in the same order as Histogram values over this binning. The caller
// must not modify the returned slice.
func (b *Binning) Volumes() []float64 { return b.vols }

// String returns a compact description, e.g. "4x8 over [0,1]x[0,10]".
func (b *Binning) String() string {
	var dims, dom strings.Builder
	for d, e := range b.edges {
		if d > 0 {
			dims.WriteByte('x')
			dom.WriteByte('x')
		}
		fmt.Fprintf(&dims, "%d", b.shape[d])
		fmt.Fprintf(&dom, "[%g,%g]", e[0], e[len(e)-1])
	}
	return dims.String() + " over " + dom.String()
}

// cellIndex returns the flattened row-major cell index of point, or
// -1 if the point falls outside the domain. Cells are half-open on
// the right except the last cell of each dimension, which is closed.
func (b *Binning) cellIndex(point []float64) int {
	flat := 0
	for d, x := range point {
		e := b.edges[d]
		n := b.shape[d]
		if x < e[0] || x > e[n] {
			return -1
		}
		// Largest i with e[i] <= x; the closed top edge maps
		// into the last cell.
		i := sort.Search(len(e), func(k int) bool { return e[k] > x }) - 1
		if i == n {
			i = n - 1
		}
		flat = flat*n + i
	}
	return flat
}

// incIndex advances a multi-dimensional cell index in row-major
// order.
func (b *Binning) incIndex(idx []int) {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < b.shape[d] {
			return
		}
		idx[d] = 0
	}
}
