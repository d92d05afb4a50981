/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dataset.go
Description: Rectangular samples of discrete realizations. Rows are observations and
columns are variable names. A DAG derives its variable set and empirical joint
distribution from a sample.
*/

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

// ErrInvalidSample reports a malformed realizations sample.
var ErrInvalidSample = errors.New("invalid realizations sample")

// Realizations is a rectangular table of discrete observations.
type Realizations struct {
	Columns []string
	Rows    [][]string
	// Domains optionally fixes the domain of a column. Columns absent
	// from the map take their domain from the observed values.
	Domains map[string][]string
}

// New validates and wraps a sample. Rows are not copied.
func New(columns []string, rows [][]string) (*Realizations, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidSample)
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("%w: empty column name", ErrInvalidSample)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidSample, c)
		}
		seen[c] = true
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidSample, i, len(r), len(columns))
		}
	}
	return &Realizations{Columns: columns, Rows: rows}, nil
}

// FromColumns builds a sample from column-major data, one slice per name.
func FromColumns(names []string, data ...[]string) (*Realizations, error) {
	if len(names) != len(data) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrInvalidSample, len(names), len(data))
	}
	n := 0
	if len(data) > 0 {
		n = len(data[0])
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = make([]string, len(data))
	}
	for j, col := range data {
		if len(col) != n {
			return nil, fmt.Errorf("%w: column %q has %d values, want %d", ErrInvalidSample, names[j], len(col), n)
		}
		for i, v := range col {
			rows[i][j] = v
		}
	}
	return New(names, rows)
}

// ReadCSV reads a sample whose first record names the columns.
func ReadCSV(r io.Reader) (*Realizations, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidSample)
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	return New(header, records[1:])
}

// Index returns the position of a column, or -1.
func (r *Realizations) Index(column string) int {
	for i, c := range r.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Column returns a copy of the values of one column.
func (r *Realizations) Column(name string) []string {
	j := r.Index(name)
	if j < 0 {
		return nil
	}
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[j]
	}
	return out
}

// Len returns the number of observations.
func (r *Realizations) Len() int { return len(r.Rows) }

// MakeFake generates nRows observations of nVars binary variables named
// a, b, c, ... with values "0" and "1". The same seed yields the same sample.
func MakeFake(nVars, nRows int, seed int64) *Realizations {
	rng := rand.New(rand.NewSource(seed))
	columns := make([]string, nVars)
	domains := make(map[string][]string, nVars)
	for i := range columns {
		columns[i] = fakeName(i)
		domains[columns[i]] = []string{"0", "1"}
	}
	rows := make([][]string, nRows)
	for i := range rows {
		rows[i] = make([]string, nVars)
		for j := range rows[i] {
			rows[i][j] = strconv.Itoa(rng.Intn(2))
		}
	}
	return &Realizations{Columns: columns, Rows: rows, Domains: domains}
}

// fakeName maps 0 -> a, 25 -> z, 26 -> aa, ...
func fakeName(i int) string {
	name := ""
	for {
		name = string(rune('a'+i%26)) + name
		i = i/26 - 1
		if i < 0 {
			return name
		}
	}
}
