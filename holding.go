package rebalance

import (
	"cmp"
	"context"
	"slices"

	"github.com/etnz/rebalance/date"
)

// Position is the net holding of an instrument, priced in the reference currency.
type Position struct {
	Instrument string
	Unit       string
	Quantity   Quantity
	Price      float64 // unit price in Unit
	Rate       float64 // exchange rate from Unit to the reference currency
	Value      Money   // Price x Quantity, in Unit
	RefValue   Money   // Value in the reference currency
	Weight     Percent // share of the portfolio total
}

// Holdings represents the priced positions of a portfolio at a specific date.
type Holdings struct {
	Date      date.Date // zero for the latest prices
	Currency  string    // reference currency
	Positions []Position
	total     Money
}

// NewHoldings aggregates ledger entries into net positions priced as of a date (zero for
// the latest prices).
//
// A positive influx adds a CASH position of that amount in the reference currency. Positions
// are sorted by descending weight. A portfolio worth nothing has zero weights.
//
// Any market data failure aborts the aggregation.
func NewHoldings(ctx context.Context, ledger *Ledger, oracle PriceOracle, influx float64, currency string, on date.Date) (*Holdings, error) {
	h := &Holdings{Date: on, Currency: currency, total: M(0, currency)}

	keys, sums := ledger.positions()
	for _, k := range keys {
		price, err := oracle.Price(ctx, k.Instrument, on)
		if err != nil {
			return nil, err
		}
		rate, err := oracle.Rate(ctx, k.Unit, currency, on)
		if err != nil {
			return nil, err
		}
		h.add(Position{Instrument: k.Instrument, Unit: k.Unit, Quantity: sums[k], Price: price, Rate: rate})
	}
	if influx > 0 {
		h.add(Position{Instrument: Cash, Unit: currency, Quantity: Q(influx), Price: 1, Rate: 1})
	}

	for i := range h.Positions {
		p := &h.Positions[i]
		p.Weight = Percent(p.RefValue.Ratio(h.total) * 100)
	}
	slices.SortStableFunc(h.Positions, func(a, b Position) int { return cmp.Compare(b.Weight, a.Weight) })
	return h, nil
}

// add computes the position values and appends it.
func (h *Holdings) add(p Position) {
	p.Value = M(p.Price, p.Unit).Mul(p.Quantity)
	p.RefValue = p.Value.Convert(p.Rate, h.Currency)
	h.total = h.total.Add(p.RefValue)
	h.Positions = append(h.Positions, p)
}

// Total returns the portfolio value in the reference currency.
func (h *Holdings) Total() Money { return h.total }

// Position returns the position of an instrument, or nil.
func (h *Holdings) Position(instrument string) *Position {
	i := slices.IndexFunc(h.Positions, func(p Position) bool { return p.Instrument == instrument })
	if i < 0 {
		return nil
	}
	return &h.Positions[i]
}
