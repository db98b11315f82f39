package frame

import (
	"fmt"
	"slices"
	"time"

	"github.com/guregu/null/v6"
)

// Table is a date-indexed set of columns. Data is stored column-major:
// Data[c][r] is the value of column c on Index[r].
type Table struct {
	Index   []time.Time
	Columns []string
	Data    [][]null.Float
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Index)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Columns)
}

// Column returns the values of the first column with the given name.
func (t *Table) Column(name string) ([]null.Float, bool) {
	i := slices.Index(t.Columns, name)
	if i < 0 {
		return nil, false
	}
	return t.Data[i], true
}

// Value returns the cell at row r and column c.
func (t *Table) Value(r, c int) null.Float {
	return t.Data[c][r]
}

// At returns the value of column name on date. The result is invalid when
// either the date or the column is absent.
func (t *Table) At(date time.Time, name string) null.Float {
	col, ok := t.Column(name)
	if !ok {
		return null.Float{}
	}
	r, found := slices.BinarySearchFunc(t.Index, date, func(a, b time.Time) int {
		return a.Compare(b)
	})
	if !found {
		return null.Float{}
	}
	return col[r]
}

// OuterJoin combines series on their dates. The result index is the sorted
// union of all indexes; columns follow argument order; dates missing from a
// series are null in its column.
func OuterJoin(series ...*Series) (*Table, error) {
	if len(series) == 0 {
		return &Table{}, nil
	}

	if len(series) > 1 {
		for _, s := range series {
			if hasDuplicates(s.Index) {
				return nil, fmt.Errorf("join series %s: %w", s.Name, ErrDuplicateIndex)
			}
		}
	}

	var index []time.Time
	if len(series) == 1 {
		index = slices.Clone(series[0].Index)
	} else {
		index = unionIndex(series)
	}

	t := &Table{
		Index:   index,
		Columns: make([]string, len(series)),
		Data:    make([][]null.Float, len(series)),
	}

	for c, s := range series {
		t.Columns[c] = s.Name
		if len(series) == 1 {
			t.Data[c] = slices.Clone(s.Values)
			continue
		}

		col := make([]null.Float, len(index))
		for i, d := range s.Index {
			r, _ := slices.BinarySearchFunc(index, d, func(a, b time.Time) int {
				return a.Compare(b)
			})
			col[r] = s.Values[i]
		}
		t.Data[c] = col
	}

	return t, nil
}

func unionIndex(series []*Series) []time.Time {
	seen := make(map[time.Time]struct{})
	var index []time.Time
	for _, s := range series {
		for _, d := range s.Index {
			// Key on UTC so equal instants in different locations collapse.
			k := d.UTC()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			index = append(index, d)
		}
	}
	slices.SortFunc(index, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return index
}

func hasDuplicates(index []time.Time) bool {
	seen := make(map[time.Time]struct{}, len(index))
	for _, d := range index {
		k := d.UTC()
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}
