package rebalance

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/etnz/rebalance/date"
)

// fakeQuoter serves daily prices from memory and counts calls.
type fakeQuoter struct {
	latest  map[string]float64
	daily   map[string]*date.History[float64]
	err     error
	latestN int
	dailyN  int
}

func (q *fakeQuoter) Latest(_ context.Context, symbol string) (float64, error) {
	q.latestN++
	if q.err != nil {
		return 0, q.err
	}
	v, ok := q.latest[symbol]
	if !ok {
		return 0, fmt.Errorf("unknown symbol %q", symbol)
	}
	return v, nil
}

func (q *fakeQuoter) Daily(_ context.Context, symbol string, from, to date.Date) (*date.History[float64], error) {
	q.dailyN++
	if q.err != nil {
		return nil, q.err
	}
	h := new(date.History[float64])
	if src, ok := q.daily[symbol]; ok {
		for d, v := range src.Values() {
			if !d.Before(from) && !d.After(to) {
				h.Append(d, v)
			}
		}
	}
	return h, nil
}

func (q *fakeQuoter) CurrencyPair(from, to string) string { return from + to + "=X" }

// memStore is an in-memory Store.
type memStore map[string]float64

func (s memStore) Get(_ context.Context, symbol string, on date.Date) (float64, bool, error) {
	v, ok := s[symbol+" "+on.String()]
	return v, ok, nil
}

func (s memStore) Put(_ context.Context, symbol string, on date.Date, v float64) error {
	s[symbol+" "+on.String()] = v
	return nil
}

var oracleToday = date.New(2023, 1, 20)

func newQuoter() *fakeQuoter {
	h := new(date.History[float64])
	h.Append(date.New(2023, 1, 6), 106)  // friday
	h.Append(date.New(2023, 1, 9), 109)  // monday
	h.Append(date.New(2023, 1, 11), 111) // wednesday
	fx := new(date.History[float64])
	fx.Append(date.New(2023, 1, 9), 1.09)
	return &fakeQuoter{
		latest: map[string]float64{"AAPL": 150, "EURUSD=X": 1.1},
		daily:  map[string]*date.History[float64]{"AAPL": h, "EURUSD=X": fx},
	}
}

func TestOracle_Latest(t *testing.T) {
	q := newQuoter()
	o := NewOracle(q, oracleToday, nil)
	for _, on := range []date.Date{{}, oracleToday, oracleToday.Add(3)} {
		v, err := o.Price(context.Background(), "AAPL", on)
		if err != nil {
			t.Fatalf("Price(AAPL, %v) unexpected error: %v", on, err)
		}
		if v != 150 {
			t.Errorf("Price(AAPL, %v) = %v want latest 150", on, v)
		}
	}
	if q.latestN != 1 || q.dailyN != 0 {
		t.Errorf("quoter calls = %d latest, %d daily want 1, 0", q.latestN, q.dailyN)
	}
}

func TestOracle_Nearest(t *testing.T) {
	tests := []struct {
		name string
		on   date.Date
		want float64
	}{
		{"saturday", date.New(2023, 1, 7), 106},
		{"exact", date.New(2023, 1, 9), 109},
		{"sunday", date.New(2023, 1, 8), 109},
		{"tie goes to earliest", date.New(2023, 1, 10), 109},
		{"after the last point", date.New(2023, 1, 16), 111},
	}
	q := newQuoter()
	o := NewOracle(q, oracleToday, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := o.Price(context.Background(), "AAPL", tt.on)
			if err != nil {
				t.Fatalf("Price(AAPL, %v) unexpected error: %v", tt.on, err)
			}
			if got != tt.want {
				t.Errorf("Price(AAPL, %v) = %v want %v", tt.on, got, tt.want)
			}
		})
	}
	// the earliest date comes first, its series covers all the others.
	if q.dailyN != 1 {
		t.Errorf("Daily() called %d times want 1", q.dailyN)
	}
}

func TestOracle_NoLookup(t *testing.T) {
	q := newQuoter()
	q.err = errors.New("offline")
	o := NewOracle(q, oracleToday, nil)
	ctx := context.Background()

	for _, id := range []string{Cash, CashEquivalent} {
		if v, err := o.Price(ctx, id, date.New(2023, 1, 3)); err != nil || v != 1 {
			t.Errorf("Price(%s) = %v, %v want 1, nil", id, v, err)
		}
	}
	if v, err := o.Rate(ctx, "EUR", "EUR", date.Date{}); err != nil || v != 1 {
		t.Errorf("Rate(EUR, EUR) = %v, %v want 1, nil", v, err)
	}
	if q.latestN+q.dailyN != 0 {
		t.Errorf("quoter was called %d times want 0", q.latestN+q.dailyN)
	}
}

func TestOracle_Rate(t *testing.T) {
	o := NewOracle(newQuoter(), oracleToday, nil)
	ctx := context.Background()
	if v, err := o.Rate(ctx, "EUR", "USD", date.Date{}); err != nil || v != 1.1 {
		t.Errorf("Rate(EUR, USD) = %v, %v want 1.1", v, err)
	}
	if v, err := o.Rate(ctx, "EUR", "USD", date.New(2023, 1, 10)); err != nil || v != 1.09 {
		t.Errorf("Rate(EUR, USD, 2023-01-10) = %v, %v want 1.09", v, err)
	}
}

func TestOracle_Memo(t *testing.T) {
	q := newQuoter()
	o := NewOracle(q, oracleToday, nil)
	ctx := context.Background()
	for range 3 {
		if _, err := o.Price(ctx, "AAPL", date.Date{}); err != nil {
			t.Fatal(err)
		}
	}
	// an earlier date needs a longer series.
	if _, err := o.Price(ctx, "AAPL", date.New(2023, 1, 11)); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Price(ctx, "AAPL", date.New(2023, 1, 6)); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Price(ctx, "AAPL", date.New(2023, 1, 9)); err != nil {
		t.Fatal(err)
	}
	if q.latestN != 1 || q.dailyN != 2 {
		t.Errorf("quoter calls = %d latest, %d daily want 1, 2", q.latestN, q.dailyN)
	}
}

func TestOracle_Store(t *testing.T) {
	store := memStore{"AAPL 2023-01-09": 42}
	q := newQuoter()
	o := NewOracle(q, oracleToday, store)
	ctx := context.Background()

	if v, err := o.Price(ctx, "AAPL", date.New(2023, 1, 9)); err != nil || v != 42 {
		t.Errorf("Price(AAPL, 2023-01-09) = %v, %v want the stored 42", v, err)
	}
	if q.dailyN != 0 {
		t.Errorf("Daily() called %d times want 0 on a store hit", q.dailyN)
	}

	if v, err := o.Price(ctx, "AAPL", date.New(2023, 1, 11)); err != nil || v != 111 {
		t.Errorf("Price(AAPL, 2023-01-11) = %v, %v want 111", v, err)
	}
	if v, ok := store["AAPL 2023-01-11"]; !ok || v != 111 {
		t.Errorf("store[AAPL 2023-01-11] = %v, %v want 111 saved", v, ok)
	}

	// a fresh oracle on the same store does not call the quoter.
	q2 := newQuoter()
	if v, err := NewOracle(q2, oracleToday, store).Price(ctx, "AAPL", date.New(2023, 1, 11)); err != nil || v != 111 {
		t.Errorf("Price(AAPL, 2023-01-11) = %v, %v want the stored 111", v, err)
	}
	if q2.dailyN != 0 {
		t.Errorf("Daily() called %d times want 0 on a store hit", q2.dailyN)
	}
}

func TestOracle_StoreLatest(t *testing.T) {
	store := memStore{}
	ctx := context.Background()

	// the tool runs on 2023-01-11, then again on 2023-01-20.
	q := newQuoter()
	if v, err := NewOracle(q, date.New(2023, 1, 11), store).Price(ctx, "AAPL", date.Date{}); err != nil || v != 150 {
		t.Fatalf("Price(AAPL, latest) = %v, %v want 150", v, err)
	}
	if len(store) != 0 {
		t.Errorf("store = %v want no latest quote saved", store)
	}

	q2 := newQuoter()
	if v, err := NewOracle(q2, oracleToday, store).Price(ctx, "AAPL", date.New(2023, 1, 11)); err != nil || v != 111 {
		t.Errorf("Price(AAPL, 2023-01-11) = %v, %v want the 111 close", v, err)
	}
	if q2.latestN != 0 || q2.dailyN != 1 {
		t.Errorf("quoter calls = %d latest, %d daily want 0, 1", q2.latestN, q2.dailyN)
	}
}

func TestOracle_LookupError(t *testing.T) {
	q := newQuoter()
	o := NewOracle(q, oracleToday, nil)
	ctx := context.Background()

	_, err := o.Price(ctx, "MSFT", date.New(2023, 1, 9))
	var lerr *LookupError
	if !errors.As(err, &lerr) || lerr.Instrument != "MSFT" || !errors.Is(err, ErrNoPrice) {
		t.Errorf("Price(MSFT) error = %v want a LookupError on MSFT wrapping ErrNoPrice", err)
	}

	q.err = errors.New("offline")
	_, err = o.Price(ctx, "MSFT", date.Date{})
	if !errors.As(err, &lerr) || lerr.Instrument != "MSFT" || !errors.Is(err, q.err) {
		t.Errorf("Price(MSFT) error = %v want a LookupError on MSFT wrapping %v", err, q.err)
	}
}
