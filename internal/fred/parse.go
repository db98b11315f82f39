package fred

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/rickgao/fred-data/internal/frame"
)

// missingValue is FRED's placeholder for an absent observation.
const missingValue = "."

// missingTokens are other spellings of an absent value, compared in lower case.
var missingTokens = map[string]struct{}{
	"na":   {},
	"n/a":  {},
	"#n/a": {},
	"<na>": {},
	"nan":  {},
	"-nan": {},
	"null": {},
	"none": {},
}

// FRED signals an unknown series with an error page instead of CSV. The page
// parses far enough to produce rows; the fourth data row's key carries
// "Error" at a fixed offset. Changes to that page layout upstream will stop
// this from matching.
const (
	errorSentinelRow    = 3
	errorSentinelOffset = 7
	errorSentinelLen    = 5
	errorSentinel       = "Error"
)

var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
}

// row is one data line of a response, header excluded.
type row struct {
	line   int
	key    string
	fields []string
}

// readRows splits a response body into data rows, discarding the header.
func readRows(series string, body []byte) ([]row, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Series: series, Err: errors.New("empty response")}
		}
		return nil, &ParseError{Series: series, Line: 1, Err: err}
	}

	var rows []row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var line int
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return nil, &ParseError{Series: series, Line: line, Err: err}
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, row{line: line, key: record[0], fields: record[1:]})
	}

	return rows, nil
}

// buildSeries converts data rows into a series named after the identifier.
// Keys that are not dates yield an *frame.IndexError; bad values yield a
// *ParseError.
func buildSeries(series string, rows []row) (*frame.Series, error) {
	index := make([]time.Time, len(rows))
	for i, rw := range rows {
		d, err := parseDate(rw.key)
		if err != nil {
			return nil, &frame.IndexError{
				Series: series,
				Reason: fmt.Sprintf("line %d: %q is not a date", rw.line, rw.key),
			}
		}
		index[i] = d
	}

	values := make([]null.Float, len(rows))
	for i, rw := range rows {
		if len(rw.fields) > 1 {
			return nil, &ParseError{
				Series: series,
				Line:   rw.line,
				Err:    fmt.Errorf("expected 2 fields, saw %d", len(rw.fields)+1),
			}
		}
		var raw string
		if len(rw.fields) == 1 {
			raw = rw.fields[0]
		}
		v, err := parseValue(raw)
		if err != nil {
			return nil, &ParseError{Series: series, Line: rw.line, Err: err}
		}
		values[i] = v
	}

	return frame.NewSeries(series, index, values)
}

// isErrorPage reports whether the rows match FRED's unknown-series page.
func isErrorPage(rows []row) bool {
	if len(rows) <= errorSentinelRow {
		return false
	}
	key := rows[errorSentinelRow].key
	end := errorSentinelOffset + errorSentinelLen
	if len(key) < end {
		return false
	}
	return key[errorSentinelOffset:end] == errorSentinel
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("error converting date %s to time.Time", s)
}

func parseValue(s string) (null.Float, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == missingValue {
		return null.Float{}, nil
	}
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return null.Float{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}, fmt.Errorf("invalid value %q: %w", s, err)
	}
	// Non-finite numbers are treated as missing so they never reach storage.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}, nil
	}
	return null.FloatFrom(f), nil
}
