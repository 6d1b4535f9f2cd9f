// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tracefmt

import "github.com/aclements/go-moremath/stats"

// A Summary describes the marginal distribution of one dataset
// dimension.
type Summary struct {
	Column string
	N      int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	P95    float64
}

// Column returns the values of dimension dim as a sample.
func (d *Dataset) Column(dim int) stats.Sample {
	xs := make([]float64, d.Len())
	for i, p := range d.points {
		xs[i] = p[dim]
	}
	return stats.Sample{Xs: xs}
}

// Summary computes summary statistics for dimension dim.
func (d *Dataset) Summary(dim int) Summary {
	samp := d.Column(dim)
	// Speed up order statistics.
	samp.Sort()
	s := Summary{Column: d.cols[dim], N: d.Len()}
	if s.N == 0 {
		return s
	}
	s.Min, s.Max = samp.Bounds()
	s.Mean = samp.Mean()
	s.Median = samp.Quantile(0.5)
	s.P95 = samp.Quantile(0.95)
	return s
}
