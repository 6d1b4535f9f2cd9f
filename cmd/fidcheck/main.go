// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fidcheck scores a synthetic workload trace against a real
// reference trace and prints three fidelity metrics: the
// over-generation error fraction, volume-weighted per-cell quality
// scores, and a two-sample point-cloud distance.
//
// Both traces are CSV files whose header names the domain dimensions
// and whose rows are points. The traces are compared over a regular
// grid binning of their common domain:
//
//	fidcheck -bins 20,20 real.csv generated.csv
//
// By default the grid spans the union extent of both traces; -domain
// sets explicit upper bounds instead (the domain then starts at 0 in
// every dimension, matching how workload trace domains are usually
// declared).
//
// A metric whose denominator is structurally zero for the given
// inputs (for example, a generated trace that puts no mass in any
// cell) is reported as a failure, never as a silent 0 or NaN, and
// fidcheck exits non-zero.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tracelab/fidelity/binning"
	"github.com/tracelab/fidelity/kpi"
	"github.com/tracelab/fidelity/runlog"
	"github.com/tracelab/fidelity/tracefmt"
)

func main() {
	log.SetPrefix("fidcheck: ")
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] real.csv generated.csv

fidcheck scores a synthetic workload trace against a real reference
trace over a regular grid binning of their common domain and prints
three fidelity metrics: error, quality, and distance.
`, os.Args[0])
		flag.PrintDefaults()
	}
	var (
		binsFlag    = flag.String("bins", "10", "cells per dimension, comma-separated; a single value applies to all dimensions")
		domainFlag  = flag.String("domain", "", "per-dimension domain upper bounds, comma-separated (lower bounds are 0); default is the union extent of both traces")
		chunksFlag  = flag.Int("chunks", 16, "chunk tasks per direction of the distance computation")
		summaryFlag = flag.Bool("summary", false, "print per-dimension summaries of both traces")
		runlogFlag  = flag.String("runlog", "", "append the run to this SQLite run-log `database`")
		historyFlag = flag.Int("history", 0, "with -runlog, print the last `n` recorded runs and exit")
		normFlag    = flag.String("write-normalized", "", "write the generated trace's normalized view to `file`")
		verboseFlag = flag.Bool("v", false, "verbose progress logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verboseFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	))

	if *historyFlag > 0 {
		if *runlogFlag == "" {
			log.Fatal("-history requires -runlog")
		}
		if err := printHistory(*runlogFlag, *historyFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	realPath, genPath := flag.Arg(0), flag.Arg(1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	real, err := tracefmt.ReadFile(realPath)
	if err != nil {
		log.Fatal(err)
	}
	gen, err := tracefmt.ReadFile(genPath)
	if err != nil {
		log.Fatal(err)
	}
	slog.Debug("loaded traces",
		"real", realPath, "realPoints", real.Len(),
		"generated", genPath, "generatedPoints", gen.Len())

	// Dimensionality must agree before the engine is built; the
	// engine itself assumes compatible inputs.
	if real.Dims() != gen.Dims() {
		log.Fatalf("dimension mismatch: %s has %d dimensions, %s has %d",
			realPath, real.Dims(), genPath, gen.Dims())
	}

	b, err := buildBinning(*binsFlag, *domainFlag, real, gen)
	if err != nil {
		log.Fatal(err)
	}
	slog.Debug("binning", "grid", b.String())

	if *normFlag != "" {
		if err := writeNormalized(*normFlag, gen); err != nil {
			log.Fatal(err)
		}
	}

	if *summaryFlag {
		printSummary("real", real)
		printSummary("generated", gen)
	}

	engine, err := kpi.New(real, gen, b, kpi.WithChunks(*chunksFlag))
	if err != nil {
		log.Fatal(err)
	}

	errFrac, err := engine.Error()
	if err != nil {
		fatalMetric(err)
	}
	quality, err := engine.Quality()
	if err != nil {
		fatalMetric(err)
	}
	start := time.Now()
	distance, err := engine.Distance(ctx)
	if err != nil {
		fatalMetric(err)
	}
	slog.Debug("distance computed", "elapsed", time.Since(start), "chunks", *chunksFlag)

	fmt.Printf("error:    %.4f\n", errFrac)
	fmt.Printf("quality:  all=%s nonempty=%s empty=%s\n",
		formatScore(quality.AllBins), formatScore(quality.NonEmptyBins), formatScore(quality.EmptyBins))
	fmt.Printf("distance: %.4f\n", distance)

	if *runlogFlag != "" {
		run, err := appendRun(*runlogFlag, runlog.Run{
			RealPath:      realPath,
			GeneratedPath: genPath,
			Binning:       b.String(),
			ErrorFrac:     errFrac,
			Quality:       quality,
			Distance:      distance,
		})
		if err != nil {
			log.Fatal(err)
		}
		slog.Info("run recorded", "id", run.ID, "db", *runlogFlag)
	}
}

// fatalMetric reports a metric failure to the operator with its kind
// and metric name, then exits non-zero. No partial numeric result is
// printed.
func fatalMetric(err error) {
	var derr *kpi.DegenerateInputError
	if errors.As(err, &derr) {
		slog.Error("metric failed", "kind", "degenerate input", "metric", derr.Metric, "reason", derr.Reason)
	} else {
		slog.Error("metric failed", "err", err)
	}
	os.Exit(1)
}

// buildBinning constructs the regular grid the traces are compared
// over. bins is the per-dimension cell counts; domain optionally
// gives [0, hi] bounds per dimension, otherwise the union extent of
// both traces is used.
func buildBinning(bins, domain string, real, gen *tracefmt.Dataset) (*binning.Binning, error) {
	dims := real.Dims()

	counts, err := parseCounts(bins, dims)
	if err != nil {
		return nil, err
	}

	lo := make([]float64, dims)
	hi := make([]float64, dims)
	if domain != "" {
		fields := strings.Split(domain, ",")
		if len(fields) != dims {
			return nil, fmt.Errorf("-domain has %d bounds, traces have %d dimensions", len(fields), dims)
		}
		for d, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil || v <= 0 {
				return nil, fmt.Errorf("-domain should list floats > 0, not %q", f)
			}
			hi[d] = v
		}
	} else {
		for d := 0; d < dims; d++ {
			lo[d], hi[d] = unionExtent(d, real, gen)
			if hi[d] <= lo[d] {
				// Zero extent still needs a non-empty cell.
				hi[d] = lo[d] + 1
			}
		}
	}
	return binning.NewRegular(lo, hi, counts)
}

func parseCounts(bins string, dims int) ([]int, error) {
	fields := strings.Split(bins, ",")
	if len(fields) != 1 && len(fields) != dims {
		return nil, fmt.Errorf("-bins has %d counts, traces have %d dimensions", len(fields), dims)
	}
	counts := make([]int, dims)
	for d := range counts {
		f := fields[0]
		if len(fields) > 1 {
			f = fields[d]
		}
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("-bins should list integers >= 1, not %q", f)
		}
		counts[d] = n
	}
	return counts, nil
}

func unionExtent(d int, real, gen *tracefmt.Dataset) (lo, hi float64) {
	first := true
	for _, ds := range []*tracefmt.Dataset{real, gen} {
		for _, p := range ds.Points(false) {
			if first || p[d] < lo {
				lo = p[d]
			}
			if first || p[d] > hi {
				hi = p[d]
			}
			first = false
		}
	}
	return lo, hi
}

func formatScore(s kpi.Score) string {
	if !s.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", s.Value)
}

func printSummary(name string, ds *tracefmt.Dataset) {
	fmt.Printf("%s (%d points):\n", name, ds.Len())
	for d := 0; d < ds.Dims(); d++ {
		s := ds.Summary(d)
		fmt.Printf("  %-12s min=%-10.4g max=%-10.4g mean=%-10.4g median=%-10.4g p95=%.4g\n",
			s.Column, s.Min, s.Max, s.Mean, s.Median, s.P95)
	}
}

func writeNormalized(path string, ds *tracefmt.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tracefmt.NewWriter(f).WriteDataset(ds, true); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func appendRun(dbPath string, run runlog.Run) (runlog.Run, error) {
	store, err := runlog.Open(dbPath)
	if err != nil {
		return runlog.Run{}, err
	}
	defer store.Close()
	return store.Append(run)
}

func printHistory(dbPath string, n int) error {
	store, err := runlog.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(n)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %s vs %s  (%s)\n", r.CreatedAt.Format(time.RFC3339), r.ID, r.RealPath, r.GeneratedPath, r.Binning)
		fmt.Printf("  error=%.4f quality(all)=%s distance=%.4f\n",
			r.ErrorFrac, formatScore(r.Quality.AllBins), r.Distance)
	}
	return nil
}
