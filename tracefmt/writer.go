// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tracefmt

import (
	"encoding/csv"
	"io"
	"strconv"
)

// A Writer writes trace points as CSV.
type Writer struct {
	csv    *csv.Writer
	fields []string
}

// NewWriter returns a writer that writes trace points to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the column header row. It must be called once,
// before any points are written.
func (w *Writer) WriteHeader(cols []string) error {
	return w.csv.Write(cols)
}

// WritePoint writes a single point row.
func (w *Writer) WritePoint(point []float64) error {
	if cap(w.fields) < len(point) {
		w.fields = make([]string, len(point))
	}
	w.fields = w.fields[:len(point)]
	for i, v := range point {
		w.fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return w.csv.Write(w.fields)
}

// Flush writes any buffered rows to the underlying io.Writer and
// returns the first error encountered during writing.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// WriteDataset writes an entire dataset, header included, and
// flushes. If normalized is true it writes the dataset's normalized
// view instead of its raw coordinates.
func (w *Writer) WriteDataset(d *Dataset, normalized bool) error {
	if err := w.WriteHeader(d.Columns()); err != nil {
		return err
	}
	for _, p := range d.Points(normalized) {
		if err := w.WritePoint(p); err != nil {
			return err
		}
	}
	return w.Flush()
}
