// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runlog

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/tracelab/fidelity/kpi"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun() Run {
	return Run{
		RealPath:      "real.csv",
		GeneratedPath: "gen.csv",
		Binning:       "2x4 over [0,10]x[0,4]",
		ErrorFrac:     0.25,
		Quality: kpi.QualityReport{
			AllBins:      kpi.Score{Value: 1.0 / 3, Defined: true},
			NonEmptyBins: kpi.Score{Value: 1.0 / 3, Defined: true},
		},
		Distance: 5,
	}
}

func TestAppendAndGet(t *testing.T) {
	s := tempStore(t)

	run, err := s.Append(sampleRun())
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected non-empty run ID")
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be filled in")
	}

	got, err := s.Get(run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RealPath != "real.csv" || got.Binning != run.Binning {
		t.Errorf("round trip changed run: %+v", got)
	}
	if math.Abs(got.ErrorFrac-0.25) > 1e-12 {
		t.Errorf("error_frac: got %v, want 0.25", got.ErrorFrac)
	}
	// The undefined partition survives the JSON round trip as
	// undefined, not as a fake score.
	if got.Quality.EmptyBins.Defined {
		t.Errorf("empty_bins became defined: %+v", got.Quality.EmptyBins)
	}
	if !got.Quality.AllBins.Defined || math.Abs(got.Quality.AllBins.Value-1.0/3) > 1e-12 {
		t.Errorf("all_bins: got %+v", got.Quality.AllBins)
	}
}

func TestListOrder(t *testing.T) {
	s := tempStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := sampleRun()
		run.GeneratedPath = []string{"a.csv", "b.csv", "c.csv"}[i]
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := s.Append(run); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	runs, err := s.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].GeneratedPath != "c.csv" || runs[1].GeneratedPath != "b.csv" {
		t.Errorf("unexpected order: %s, %s", runs[0].GeneratedPath, runs[1].GeneratedPath)
	}
}
