package fred

import (
	"errors"
	"fmt"
)

// ErrNoSymbols is returned when Read is called without series identifiers.
var ErrNoSymbols = errors.New("no series identifiers given")

// InvalidSeriesError reports an identifier FRED does not recognise.
type InvalidSeriesError struct {
	Series string
	Err    error
}

func (e *InvalidSeriesError) Error() string {
	return fmt.Sprintf("failed to get the data. check that %q is a valid FRED series", e.Series)
}

func (e *InvalidSeriesError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that does not have the DATE,value shape.
// Line is 1-based and counts the header.
type ParseError struct {
	Series string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse series %s line %d: %v", e.Series, e.Line, e.Err)
	}
	return fmt.Sprintf("parse series %s: %v", e.Series, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
