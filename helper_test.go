package rebalance

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/etnz/rebalance/date"
)

// fakeOracle is a PriceOracle computed from functions, it records every call.
type fakeOracle struct {
	price func(id string, on date.Date) float64
	rate  func(unit, currency string, on date.Date) float64
	fail  string // instrument that fails
	calls []string
}

func (f *fakeOracle) Price(_ context.Context, id string, on date.Date) (float64, error) {
	f.calls = append(f.calls, fmt.Sprintf("price %s %v", id, on))
	if id == f.fail {
		return 0, &LookupError{Instrument: id, On: on, Err: ErrNoPrice}
	}
	if id == Cash || id == CashEquivalent {
		return 1, nil
	}
	return f.price(id, on), nil
}

func (f *fakeOracle) Rate(_ context.Context, unit, currency string, on date.Date) (float64, error) {
	f.calls = append(f.calls, fmt.Sprintf("rate %s%s %v", unit, currency, on))
	if unit == currency || f.rate == nil {
		return 1, nil
	}
	return f.rate(unit, currency, on), nil
}

// prices returns a fakeOracle with constant prices.
func prices(p map[string]float64) *fakeOracle {
	return &fakeOracle{price: func(id string, _ date.Date) float64 { return p[id] }}
}

// mustTable reads a csv literal.
func mustTable(t *testing.T, csv string) *Table {
	t.Helper()
	tb, err := ReadCSV("test.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV() unexpected error: %v", err)
	}
	return tb
}

// mustAllocation builds an allocation from a csv literal.
func mustAllocation(t *testing.T, csv string) *Allocation {
	t.Helper()
	a, err := BuildAllocation(mustTable(t, csv), false)
	if err != nil {
		t.Fatalf("BuildAllocation() unexpected error: %v", err)
	}
	return a
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// weights returns the overall weight by tag.
func weights(a *Allocation) map[string]float64 {
	w := make(map[string]float64)
	for _, t := range a.Targets() {
		w[t.ID] += float64(t.Weight)
	}
	return w
}

func entry(on string, id, unit string, qty float64) Entry {
	return Entry{Date: date.MustParse(on), Instrument: id, Unit: unit, Quantity: Q(qty)}
}
