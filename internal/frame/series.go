package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// ErrDuplicateIndex is returned when a series repeats a date and cannot be aligned.
var ErrDuplicateIndex = errors.New("duplicate date in index")

// IndexError reports an index that cannot be used for date operations.
type IndexError struct {
	Series string
	Reason string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("series %s: unusable index: %s", e.Series, e.Reason)
}

// Series is a single named column keyed by date.
type Series struct {
	Name   string
	Index  []time.Time
	Values []null.Float
}

// NewSeries creates a series. Index and values must have equal length.
func NewSeries(name string, index []time.Time, values []null.Float) (*Series, error) {
	if len(index) != len(values) {
		return nil, fmt.Errorf("series %s: index has %d entries, values has %d", name, len(index), len(values))
	}
	return &Series{Name: name, Index: index, Values: values}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Index)
}

// IsSorted reports whether the index is non-decreasing.
func (s *Series) IsSorted() bool {
	for i := 1; i < len(s.Index); i++ {
		if s.Index[i].Before(s.Index[i-1]) {
			return false
		}
	}
	return true
}

// Truncate returns the observations whose date falls within [start, end].
// A zero start or end leaves that side unbounded. The index must be sorted
// ascending; otherwise an *IndexError is returned.
func (s *Series) Truncate(start, end time.Time) (*Series, error) {
	if !s.IsSorted() {
		return nil, &IndexError{Series: s.Name, Reason: "truncate requires a sorted index"}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return nil, fmt.Errorf("series %s: truncate start %s is after end %s",
			s.Name, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	lo, hi := 0, len(s.Index)
	if !start.IsZero() {
		for lo < hi && s.Index[lo].Before(start) {
			lo++
		}
	}
	if !end.IsZero() {
		for hi > lo && s.Index[hi-1].After(end) {
			hi--
		}
	}

	index := make([]time.Time, hi-lo)
	copy(index, s.Index[lo:hi])
	values := make([]null.Float, hi-lo)
	copy(values, s.Values[lo:hi])

	return &Series{Name: s.Name, Index: index, Values: values}, nil
}
