// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kpi

import "math"

// A Score is a volume-weighted fidelity score for one cell partition.
// When the partition selects no cells there is nothing to score:
// Defined is false and Value is meaningless. A defined Value is
// always in [0, 1].
type Score struct {
	Value   float64
	Defined bool
}

// Float flattens a Score to a single float64, encoding an undefined
// score as 2.0, a value no defined score can attain. Prefer checking
// Defined; Float exists for flat numeric outputs such as run logs.
func (s Score) Float() float64 {
	if !s.Defined {
		return 2.0
	}
	return s.Value
}

// A QualityReport holds the quality score of each cell partition:
// every cell, the cells where the real histogram is non-empty, and
// the cells where it is empty.
type QualityReport struct {
	AllBins      Score
	NonEmptyBins Score
	EmptyBins    Score
}

// Quality scores how closely the generated histogram tracks the real
// one, cell by cell, aggregated as a volume-weighted mean over three
// cell partitions.
//
// A cell where both histograms are empty scores 1. A cell where the
// generated mass diverges by more than the real count, or appears
// where the real histogram has none, scores 0. In between, the
// score falls off linearly with the relative deviation.
//
// A partition that selects no cells yields an undefined Score; that
// is a normal configuration (e.g. no cell has a zero real count), not
// a failure. A non-empty partition whose cells sum to zero volume
// indicates a degenerate binning and returns a
// *DegenerateInputError.
func (e *Engine) Quality() (QualityReport, error) {
	var all, nonEmpty, empty []int
	for i, r := range e.h1f {
		all = append(all, i)
		if r > 0 {
			nonEmpty = append(nonEmpty, i)
		} else {
			empty = append(empty, i)
		}
	}

	var rep QualityReport
	var err error
	vols := e.h2.Binning.Volumes()
	if rep.AllBins, err = e.partitionScore("quality(all_bins)", all, vols); err != nil {
		return QualityReport{}, err
	}
	if rep.NonEmptyBins, err = e.partitionScore("quality(nonempty_bins)", nonEmpty, vols); err != nil {
		return QualityReport{}, err
	}
	if rep.EmptyBins, err = e.partitionScore("quality(empty_bins)", empty, vols); err != nil {
		return QualityReport{}, err
	}
	return rep, nil
}

// partitionScore computes the volume-weighted mean cell quality over
// the cells selected by idxs.
func (e *Engine) partitionScore(metric string, idxs []int, vols []float64) (Score, error) {
	if len(idxs) == 0 {
		return Score{}, nil
	}
	var weighted, volSum float64
	for _, i := range idxs {
		weighted += cellQuality(e.h1f[i], e.diff[i]) * vols[i]
		volSum += vols[i]
	}
	if volSum == 0 {
		return Score{}, &DegenerateInputError{
			Metric: metric,
			Reason: "selected cells have zero total volume",
		}
	}
	return Score{Value: weighted / volSum, Defined: true}, nil
}

// cellQuality scores one cell given the real count r and the
// generated-minus-real difference delta.
func cellQuality(r, delta float64) float64 {
	if r == 0 && delta == 0 {
		return 1
	}
	if r == 0 || math.Abs(delta) > r {
		return 0
	}
	return 1 - math.Abs(delta)/r
}
