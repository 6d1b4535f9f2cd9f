// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tracefmt

import (
	"fmt"
	"io"
	"os"
)

// ReadFile reads an entire trace file into a Dataset. Unlike the
// streaming Reader, which lets callers skip malformed rows, ReadFile
// is strict: the first malformed row fails the whole read, since a
// partially loaded dataset would silently skew every metric computed
// from it.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f, path)
}

// ReadAll reads an entire trace from r into a Dataset. fileName is
// used in error messages.
func ReadAll(r io.Reader, fileName string) (*Dataset, error) {
	reader := NewReader(r, fileName)
	var points [][]float64
	for reader.Scan() {
		p, err := reader.Point()
		if err != nil {
			return nil, err
		}
		points = append(points, append([]float64(nil), p...))
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	if reader.Columns() == nil {
		return nil, fmt.Errorf("%s: missing column header", fileName)
	}
	return NewDataset(reader.Columns(), points)
}
