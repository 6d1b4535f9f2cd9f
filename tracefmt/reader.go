// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tracefmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A Reader reads trace points from CSV input.
//
// Its API is modeled on bufio.Scanner. The Reader retains ownership
// of the point slice it returns; a caller that retains points across
// calls to Scan must copy them.
//
// The zero value of the Reader is a valid Reader, but the user must
// call Reset before using it.
type Reader struct {
	csv      *csv.Reader
	fileName string
	lineNum  int
	err      error // current I/O error

	cols     []string
	point    []float64
	pointErr error
}

// A SyntaxError represents a malformed row on a particular line of a
// trace file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (s *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", s.FileName, s.Line, s.Msg)
}

var noPoint = errors.New("Reader.Scan has not been called")

// NewReader constructs a reader to parse trace points from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input. This
// discards the column header of any previous input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.csv = csv.NewReader(ior)
	r.csv.ReuseRecord = true
	r.csv.Comment = '#'
	r.csv.TrimLeadingSpace = true
	// Field-count mismatches are reported per row as syntax
	// errors rather than aborting the whole read.
	r.csv.FieldsPerRecord = -1
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.lineNum = 0
	r.err = nil
	r.cols = nil
	r.point = nil
	r.pointErr = noPoint
}

// Scan advances the reader to the next point and returns true if a
// point row was read. The caller should use the Point method to get
// the point. If an I/O error occurs, or this reaches the end of the
// input, it returns false and the caller should use the Err method to
// check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}

	for {
		rec, err := r.csv.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			r.err = fmt.Errorf("%s: %w", r.fileName, err)
			return false
		}
		r.lineNum, _ = r.csv.FieldPos(0)

		if r.cols == nil {
			// First row is the column header.
			r.cols = make([]string, len(rec))
			for i, f := range rec {
				r.cols[i] = strings.TrimSpace(f)
			}
			continue
		}

		r.pointErr = r.parsePointRow(rec)
		return true
	}
}

// parsePointRow parses rec as a point and updates r.point.
func (r *Reader) parsePointRow(rec []string) error {
	if len(rec) != len(r.cols) {
		return &SyntaxError{r.fileName, r.lineNum, fmt.Sprintf("row has %d fields, header has %d", len(rec), len(r.cols))}
	}
	if cap(r.point) < len(rec) {
		r.point = make([]float64, len(rec))
	}
	r.point = r.point[:len(rec)]
	for i, f := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return &SyntaxError{r.fileName, r.lineNum, "parsing coordinate " + strconv.Quote(f) + ": " + err.Error()}
		}
		r.point[i] = v
	}
	return nil
}

// Columns returns the column header of the current input, or nil if
// no header row has been read yet.
func (r *Reader) Columns() []string { return r.cols }

// Point returns the last point read, or an error if the row was
// malformed.
//
// Parse errors are non-fatal, so the caller can continue to call
// Scan.
//
// The caller should not retain the returned slice, as it will be
// overwritten by the next call to Scan.
func (r *Reader) Point() ([]float64, error) {
	if r.pointErr != nil {
		return nil, r.pointErr
	}
	return r.point, nil
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error { return r.err }
