package rebalance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/rebalance/date"
)

var (
	// ErrEmptyLedger is returned when an operation needs at least one ledger entry.
	ErrEmptyLedger = errors.New("empty ledger")
	// ErrMissingColumn is wrapped in a SchemaError when a required column is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrNoPrice is wrapped in a LookupError when the market data has no usable point.
	ErrNoPrice = errors.New("no price available")
)

// SchemaError reports an invalid tabular input: a missing column, a bad cell or an
// inconsistent category.
type SchemaError struct {
	Source string // file name or a description of the table
	Row    int    // 1-based data row, 0 when the error is not about a row
	Column string // column name or category path, may be empty
	Err    error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString(e.Source)
	if e.Row > 0 {
		fmt.Fprintf(&b, ":%d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " [%s]", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// LookupError reports a market data failure for an instrument.
type LookupError struct {
	Instrument string
	On         date.Date // zero for a latest lookup
	Err        error
}

func (e *LookupError) Error() string {
	if e.On.IsZero() {
		return fmt.Sprintf("cannot price %q: %v", e.Instrument, e.Err)
	}
	return fmt.Sprintf("cannot price %q on %v: %v", e.Instrument, e.On, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
