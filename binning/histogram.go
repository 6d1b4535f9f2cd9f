// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package binning

import "fmt"

// A Histogram is a grid of per-cell counts over a Binning, flattened
// row-major in the Binning's cell order. It is read-only once
// produced.
type Histogram struct {
	// Binning is the partition this histogram was counted over.
	Binning *Binning

	// Values holds one non-negative count per cell, in the same
	// flattened order as Binning.Volumes.
	Values []float64
}

// A DimensionError reports a point whose dimensionality does not
// match the binning it is counted against.
type DimensionError struct {
	Point int // index of the offending point
	Got   int
	Want  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("point %d has %d dimensions, binning has %d", e.Point, e.Got, e.Want)
}

// Count bins a point set into a Histogram over b. Points outside the
// domain are not counted. Counting is deterministic: the same binning
// produces the same cell ordering for any point set.
func (b *Binning) Count(points [][]float64) (*Histogram, error) {
	h := &Histogram{Binning: b, Values: make([]float64, b.Bins())}
	for i, p := range points {
		if len(p) != b.Dims() {
			return nil, &DimensionError{Point: i, Got: len(p), Want: b.Dims()}
		}
		if idx := b.cellIndex(p); idx >= 0 {
			h.Values[idx]++
		}
	}
	return h, nil
}

// Total returns the sum of all cell counts.
func (h *Histogram) Total() float64 {
	var sum float64
	for _, v := range h.Values {
		sum += v
	}
	return sum
}
