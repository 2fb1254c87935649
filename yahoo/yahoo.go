// Package yahoo reads market data from Yahoo Finance.
package yahoo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/etnz/rebalance/date"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
)

// Quoter is a quoter on Yahoo Finance.
//
// Symbols are Yahoo tickers, like "AAPL" or "IWDA.AS". Exchange rates are tickers like
// "EURUSD=X".
type Quoter struct{}

// New returns a Yahoo Finance quoter.
func New() *Quoter { return &Quoter{} }

// CurrencyPair returns the Yahoo ticker of an exchange rate.
func (*Quoter) CurrencyPair(from, to string) string { return from + to + "=X" }

// Latest returns the regular market price of symbol.
func (*Quoter) Latest(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q, err := quote.Get(symbol)
	if err != nil {
		return 0, fmt.Errorf("cannot get %s quote: %w", symbol, err)
	}
	if q == nil {
		return 0, fmt.Errorf("unknown symbol %q", symbol)
	}
	slog.Debug("yahoo quote", "symbol", symbol, "price", q.RegularMarketPrice)
	return q.RegularMarketPrice, nil
}

// Daily returns the daily adjusted close of symbol between from and to, included.
func (*Quoter) Daily(ctx context.Context, symbol string, from, to date.Date) (*date.History[float64], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start, end := from.Time(), to.Add(1).Time()
	it := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	h := new(date.History[float64])
	for it.Next() {
		b := it.Bar()
		v := b.AdjClose
		if v.IsZero() {
			v = b.Close
		}
		on := dayOf(int64(b.Timestamp))
		if on.Before(from) || on.After(to) {
			continue
		}
		h.Append(on, v.InexactFloat64())
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("cannot get %s daily prices: %w", symbol, err)
	}
	slog.Debug("yahoo chart", "symbol", symbol, "from", from, "to", to, "points", h.Len())
	return h, nil
}

// dayOf returns the day of a bar timestamp.
//
// Daily bars are stamped at the market open, read in UTC.
// TODO: use the exchange timezone from the chart meta for markets opening before midnight UTC (ASX, NZX).
func dayOf(ts int64) date.Date {
	return date.New(time.Unix(ts, 0).UTC().Date())
}
