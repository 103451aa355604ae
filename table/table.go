// Copyright 2023 Gridscope

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package table implements a two-dimensional numeric table indexed by
// timestamp or year bucket, with one named column per category. It is the
// result type of all Transparency API calls.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stockparfait/errors"
)

// Key indexes a single table row: either a point in time or a year bucket.
// The zero time value indicates a year-keyed row.
type Key struct {
	Time time.Time
	Year int
}

// TimeKey creates a timestamp-keyed row index.
func TimeKey(t time.Time) Key { return Key{Time: t} }

// YearKey creates a year-keyed row index.
func YearKey(year int) Key { return Key{Year: year} }

// IsYear checks whether the key is a year bucket.
func (k Key) IsYear() bool { return k.Time.IsZero() }

// Before compares two keys for strict inequality (self < k2). Year buckets
// order before timestamps; a table never mixes the two.
func (k Key) Before(k2 Key) bool {
	if k.IsYear() != k2.IsYear() {
		return k.IsYear()
	}
	if k.IsYear() {
		return k.Year < k2.Year
	}
	return k.Time.Before(k2.Time)
}

// String representation of the key, as printed in the first table column.
func (k Key) String() string {
	if k.IsYear() {
		return strconv.Itoa(k.Year)
	}
	return k.Time.Format("2006-01-02 15:04:05 -0700")
}

// Cell is a single table value. Valid is false for cells absent from the
// source data; such cells print as an empty string.
type Cell struct {
	Value float64
	Valid bool
}

func (c Cell) csv() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

type cellIdx struct{ row, col int }

// Builder accumulates (key, column, value) triples and creates an immutable
// Table. Columns appear in the order they were first set; rows are sorted by
// key. Setting the same cell twice keeps the last value.
type Builder struct {
	columns []string
	colIdx  map[string]int
	keys    []Key
	keyIdx  map[Key]int
	cells   map[cellIdx]float64
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		colIdx: make(map[string]int),
		keyIdx: make(map[Key]int),
		cells:  make(map[cellIdx]float64),
	}
}

// AddColumn registers a column without setting any cells. Setting a cell in
// an existing column keeps the column's position.
func (b *Builder) AddColumn(column string) int {
	col, ok := b.colIdx[column]
	if !ok {
		col = len(b.columns)
		b.colIdx[column] = col
		b.columns = append(b.columns, column)
	}
	return col
}

// AddKey registers a row for k without setting any cells. Its cells remain
// missing until set.
func (b *Builder) AddKey(k Key) int {
	row, ok := b.keyIdx[k]
	if !ok {
		row = len(b.keys)
		b.keyIdx[k] = row
		b.keys = append(b.keys, k)
	}
	return row
}

// Set the cell at (k, column) to value, adding the row and the column as
// needed.
func (b *Builder) Set(k Key, column string, value float64) {
	b.cells[cellIdx{b.AddKey(k), b.AddColumn(column)}] = value
}

// Build creates the Table. The Builder remains usable, and subsequent Set
// calls do not affect previously built tables.
func (b *Builder) Build() *Table {
	t := &Table{
		columns: append([]string{}, b.columns...),
		colIdx:  make(map[string]int, len(b.columns)),
		keys:    append([]Key{}, b.keys...),
		keyIdx:  make(map[Key]int, len(b.keys)),
		cells:   make([][]Cell, len(b.keys)),
	}
	for i, c := range t.columns {
		t.colIdx[c] = i
	}
	sort.Slice(t.keys, func(i, j int) bool { return t.keys[i].Before(t.keys[j]) })
	for i, k := range t.keys {
		t.keyIdx[k] = i
		t.cells[i] = make([]Cell, len(t.columns))
	}
	for ci, v := range b.cells {
		row := t.keyIdx[b.keys[ci.row]]
		t.cells[row][ci.col] = Cell{Value: v, Valid: true}
	}
	return t
}

// Table is an immutable table of numeric cells, rows keyed by timestamp or
// year, columns named by category. Create it with a Builder.
type Table struct {
	columns []string
	colIdx  map[string]int
	keys    []Key
	keyIdx  map[Key]int
	cells   [][]Cell // len(keys) x len(columns)
}

// NumRows is the number of distinct row keys.
func (t *Table) NumRows() int { return len(t.keys) }

// NumColumns is the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// Columns returns a copy of the column names, in table order.
func (t *Table) Columns() []string { return append([]string{}, t.columns...) }

// Keys returns a copy of the row keys, in ascending order.
func (t *Table) Keys() []Key { return append([]Key{}, t.keys...) }

// Cell at the given row and column indices.
func (t *Table) Cell(row, col int) Cell { return t.cells[row][col] }

// Value looks up a cell by row key and column name. The second value is false
// when the row or column doesn't exist, or the cell is missing.
func (t *Table) Value(k Key, column string) (float64, bool) {
	row, ok := t.keyIdx[k]
	if !ok {
		return 0.0, false
	}
	col, ok := t.colIdx[column]
	if !ok {
		return 0.0, false
	}
	c := t.cells[row][col]
	return c.Value, c.Valid
}

func (t *Table) keyLabel() string {
	if len(t.keys) > 0 && t.keys[0].IsYear() {
		return "Year"
	}
	return "Time"
}

func (t *Table) header() []string {
	h := make([]string, 0, len(t.columns)+1)
	h = append(h, t.keyLabel())
	return append(h, t.columns...)
}

func (t *Table) row(i int) []string {
	row := make([]string, 0, len(t.columns)+1)
	row = append(row, t.keys[i].String())
	for _, c := range t.cells[i] {
		row = append(row, c.csv())
	}
	return row
}

// Params are parameters for pretty-printing or CSV export of Table data.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

// WriteCSV writes the entire table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	if !p.NoHeader {
		if err := cw.Write(t.header()); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for i := range t.keys {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		if err := cw.Write(t.row(i)); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// WriteText writes the table as a text formatted for ease of reading.
func (t *Table) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	widths := make([]int, len(t.columns)+1)
	update := func(row []string) {
		for i := range widths {
			if l := len([]rune(row[i])); widths[i] < l {
				widths[i] = l
				if p.MaxColWidth > 0 && widths[i] > p.MaxColWidth {
					widths[i] = p.MaxColWidth
				}
			}
		}
	}

	write := func(row []string) error {
		trimmed := make([]string, len(row))
		for i, s := range row {
			trimmed[i] = s
			if len([]rune(s)) > widths[i] {
				r := []rune(s)[:widths[i]-2]
				trimmed[i] = string(r) + ".."
			}
			if n := widths[i] - len([]rune(trimmed[i])); n > 0 {
				trimmed[i] = strings.Repeat(" ", n) + trimmed[i]
			}
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(trimmed, " | "))
		return err
	}

	dashes := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte('-')
		}
		return string(b)
	}

	dashedRow := func() []string {
		row := make([]string, len(widths))
		for i, w := range widths {
			row[i] = dashes(w)
		}
		return row
	}

	if !p.NoHeader {
		update(t.header())
	}
	for i := range t.keys {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		update(t.row(i))
	}

	if !p.NoHeader {
		if err := write(t.header()); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
		if err := write(dashedRow()); err != nil {
			return errors.Annotate(err, "failed to write header separator")
		}
	}
	for i := range t.keys {
		if p.Rows > 0 && i >= p.Rows {
			break
		}
		if err := write(t.row(i)); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	return nil
}
