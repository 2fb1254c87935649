package rebalance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/etnz/rebalance/date"
)

// PriceOracle provides the market data needed to value positions.
//
// A zero date means the latest available data.
type PriceOracle interface {
	// Price returns the unit price of an instrument, in the instrument's unit.
	Price(ctx context.Context, instrument string, on date.Date) (float64, error)
	// Rate returns the exchange rate to convert an amount in unit into currency.
	Rate(ctx context.Context, unit, currency string, on date.Date) (float64, error)
}

// Quoter is a source of market data, like Yahoo Finance or EODHD.
type Quoter interface {
	// Latest returns the most recent closing price of symbol.
	Latest(ctx context.Context, symbol string) (float64, error)
	// Daily returns the daily closing prices of symbol between from and to included.
	Daily(ctx context.Context, symbol string, from, to date.Date) (*date.History[float64], error)
	// CurrencyPair returns the symbol of the exchange rate from one currency to another.
	CurrencyPair(from, to string) string
}

// Store is a persistent cache of prices, keyed by symbol and date.
type Store interface {
	// Get returns the cached price of symbol on a date, ok is false when absent.
	Get(ctx context.Context, symbol string, on date.Date) (value float64, ok bool, err error)
	// Put saves the price of symbol on a date.
	Put(ctx context.Context, symbol string, on date.Date, value float64) error
}

// lookback is the number of days fetched before a requested date, so that a date falling
// on a week-end or a bank holiday resolves to the previous trading day if it is closer.
const lookback = 7

type quoteKey struct {
	symbol string
	on     date.Date
}

// Oracle is the PriceOracle on top of a Quoter.
//
// Latest queries use the quoter's latest price. Dated queries use the daily point the
// closest to the requested date, the earliest wins on a tie. Every result is memoized in
// memory. Dated results are also persisted if a Store is configured, and a stored value
// short-circuits the quoter entirely.
//
// An Oracle is not safe for concurrent use.
type Oracle struct {
	quoter Quoter
	today  date.Date
	store  Store // optional

	memo   map[quoteKey]float64
	series map[string]*date.History[float64]
	since  map[string]date.Date // first day fetched for each series
}

// NewOracle returns an Oracle reading from quoter. today is the date considered as the
// latest, store can be nil.
func NewOracle(quoter Quoter, today date.Date, store Store) *Oracle {
	return &Oracle{
		quoter: quoter,
		today:  today,
		store:  store,
		memo:   make(map[quoteKey]float64),
		series: make(map[string]*date.History[float64]),
		since:  make(map[string]date.Date),
	}
}

// Today returns the date considered as the latest.
func (o *Oracle) Today() date.Date { return o.today }

// Price implements PriceOracle. Cash instruments are always worth 1.
func (o *Oracle) Price(ctx context.Context, instrument string, on date.Date) (float64, error) {
	if isCash(instrument) {
		return 1, nil
	}
	return o.quote(ctx, instrument, on)
}

// Rate implements PriceOracle. The rate of a currency to itself is always 1.
func (o *Oracle) Rate(ctx context.Context, unit, currency string, on date.Date) (float64, error) {
	if unit == "" || unit == currency {
		return 1, nil
	}
	return o.quote(ctx, o.quoter.CurrencyPair(unit, currency), on)
}

// quote returns the price of symbol on a date, using the memo, then the store, then the
// quoter.
func (o *Oracle) quote(ctx context.Context, symbol string, on date.Date) (float64, error) {
	latest := on.IsZero() || !on.Before(o.today)
	day := on
	if latest {
		day = o.today
	}
	key := quoteKey{symbol, day}
	if v, ok := o.memo[key]; ok {
		return v, nil
	}

	// latest quotes are intraday, only daily closes are persisted.
	persist := o.store != nil && !latest
	if persist {
		v, ok, err := o.store.Get(ctx, symbol, day)
		if err != nil {
			slog.Warn("price store read failed (ignored)", "symbol", symbol, "date", day, "err", err)
		} else if ok {
			o.memo[key] = v
			return v, nil
		}
	}

	var v float64
	var err error
	if latest {
		slog.Debug("latest price", "symbol", symbol)
		v, err = o.quoter.Latest(ctx, symbol)
	} else {
		v, err = o.nearest(ctx, symbol, day)
	}
	if err != nil {
		lerr := &LookupError{Instrument: symbol, Err: err}
		if !latest {
			lerr.On = day
		}
		return 0, lerr
	}

	o.memo[key] = v
	if persist {
		if err := o.store.Put(ctx, symbol, day, v); err != nil {
			slog.Warn("price store write failed (ignored)", "symbol", symbol, "date", day, "err", err)
		}
	}
	return v, nil
}

// nearest returns the daily price the closest to day.
func (o *Oracle) nearest(ctx context.Context, symbol string, day date.Date) (float64, error) {
	h, err := o.daily(ctx, symbol, day.Add(-lookback))
	if err != nil {
		return 0, err
	}
	at, v, ok := h.Nearest(day)
	if !ok {
		return 0, ErrNoPrice
	}
	if d := at.Sub(day); d > lookback || d < -lookback {
		slog.Debug("distant price used", "symbol", symbol, "date", day, "found", at)
	}
	return v, nil
}

// daily returns the daily series of symbol from a given day to today.
//
// Series are fetched once, unless an earlier day is requested.
func (o *Oracle) daily(ctx context.Context, symbol string, from date.Date) (*date.History[float64], error) {
	if h, ok := o.series[symbol]; ok && !from.Before(o.since[symbol]) {
		return h, nil
	}
	slog.Debug("daily prices", "symbol", symbol, "from", from, "to", o.today)
	h, err := o.quoter.Daily(ctx, symbol, from, o.today)
	if err != nil {
		return nil, err
	}
	if h == nil || h.Len() == 0 {
		return nil, fmt.Errorf("%w between %v and %v", ErrNoPrice, from, o.today)
	}
	o.series[symbol] = h
	o.since[symbol] = from
	return h, nil
}
