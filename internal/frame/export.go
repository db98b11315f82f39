package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MissingValue is written in place of null cells, matching the FRED CSV format.
const MissingValue = "."

// IndexHeader is the header of the date column on export.
const IndexHeader = "DATE"

// WriteCSV writes the table as CSV with a DATE column followed by one column
// per series. Null cells are written as MissingValue.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, IndexHeader)
	header = append(header, t.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for r, d := range t.Index {
		record[0] = d.Format(time.DateOnly)
		for c := range t.Columns {
			v := t.Data[c][r]
			if !v.Valid {
				record[c+1] = MissingValue
				continue
			}
			record[c+1] = strconv.FormatFloat(v.Float64, 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the table to a single worksheet. Null cells are left empty.
func (t *Table) WriteXLSX(w io.Writer, sheet string) error {
	if sheet == "" {
		sheet = "FRED"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, 0, len(t.Columns)+1)
	header = append(header, IndexHeader)
	for _, c := range t.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, d := range t.Index {
		row := make([]any, len(t.Columns)+1)
		row[0] = d.Format(time.DateOnly)
		for c := range t.Columns {
			if v := t.Data[c][r]; v.Valid {
				row[c+1] = v.Float64
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Summary holds descriptive statistics for one column. Null cells are skipped.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
}

// Describe returns a Summary per column in column order. Statistics of a
// column with no valid values are NaN.
func (t *Table) Describe() []Summary {
	out := make([]Summary, len(t.Columns))
	for c, name := range t.Columns {
		xs := make([]float64, 0, len(t.Data[c]))
		for _, v := range t.Data[c] {
			if v.Valid {
				xs = append(xs, v.Float64)
			}
		}

		s := Summary{Column: name, Count: len(xs)}
		switch len(xs) {
		case 0:
			s.Mean, s.Std, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		case 1:
			s.Mean, s.Std, s.Min, s.Max = xs[0], math.NaN(), xs[0], xs[0]
		default:
			s.Mean, s.Std = stat.MeanStdDev(xs, nil)
			s.Min, s.Max = floats.Min(xs), floats.Max(xs)
		}
		out[c] = s
	}
	return out
}
