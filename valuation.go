package rebalance

import (
	"context"

	"github.com/etnz/rebalance/date"
)

// Point is a valuation at a date.
type Point struct {
	Date     date.Date
	Quantity float64 // units held, instrument series only
	Invested float64 // cumulative cash invested, in the reference currency
	Value    float64 // market value, in the reference currency
}

// Gain returns the value earned over the invested cash.
func (p Point) Gain() float64 { return p.Value - p.Invested }

// Yield returns the gain relative to the invested cash, 0 when nothing is invested.
func (p Point) Yield() Percent {
	if p.Invested == 0 {
		return 0
	}
	return Percent(p.Value/p.Invested*100 - 100)
}

// Series is the valuation of the portfolio, or of one of its positions, over a date grid.
type Series struct {
	Instrument string // empty for the whole portfolio
	Unit       string
	Points     []Point
}

// Latest returns the last point of the series.
func (s Series) Latest() Point {
	if len(s.Points) == 0 {
		return Point{}
	}
	return s.Points[len(s.Points)-1]
}

// Valuation is the history of the invested cash and market value of a portfolio.
type Valuation struct {
	Currency    string
	Period      date.Period
	Portfolio   Series
	Instruments []Series // in instrument order
}

// NewValuation replays the ledger on a grid of dates, from the period containing the first
// entry until today. For the default Weekly period the grid is made of Mondays.
//
// The invested cash of an entry is its quantity valued at the entry date. The portfolio
// value at each grid date are the holdings of the entries up to that date, priced as of that
// date.
func NewValuation(ctx context.Context, ledger *Ledger, oracle PriceOracle, currency string, today date.Date, period date.Period) (*Valuation, error) {
	if ledger.Len() == 0 {
		return nil, ErrEmptyLedger
	}
	v := &Valuation{Currency: currency, Period: period}

	// invested cash and quantity changes, per date.
	invested := new(date.History[float64])
	keys, _ := ledger.positions()
	posInvested := make(map[positionKey]*date.History[float64], len(keys))
	posQuantity := make(map[positionKey]*date.History[float64], len(keys))
	for _, k := range keys {
		posInvested[k], posQuantity[k] = new(date.History[float64]), new(date.History[float64])
	}
	for e := range ledger.Entries() {
		price, err := oracle.Price(ctx, e.Instrument, e.Date)
		if err != nil {
			return nil, err
		}
		rate, err := oracle.Rate(ctx, e.Unit, currency, e.Date)
		if err != nil {
			return nil, err
		}
		cash := price * rate * e.Quantity.Float64()
		k := positionKey{e.Instrument, e.Unit}
		invested.AppendAdd(e.Date, cash)
		posInvested[k].AppendAdd(e.Date, cash)
		posQuantity[k].AppendAdd(e.Date, e.Quantity.Float64())
	}
	invested = cumulate(invested)

	grid := date.Range{From: ledger.First().StartOf(period), To: today}
	for day := range grid.Grid(period) {
		p := Point{Date: day}
		p.Invested, _ = invested.ValueAsOf(day)
		if sub := ledger.Until(day); sub.Len() > 0 {
			h, err := NewHoldings(ctx, sub, oracle, 0, currency, day)
			if err != nil {
				return nil, err
			}
			p.Value = h.Total().Float64()
		}
		v.Portfolio.Points = append(v.Portfolio.Points, p)
	}

	for _, k := range keys {
		s := Series{Instrument: k.Instrument, Unit: k.Unit}
		inv, qty := cumulate(posInvested[k]), cumulate(posQuantity[k])
		for _, gp := range v.Portfolio.Points {
			p := Point{Date: gp.Date}
			p.Invested, _ = inv.ValueAsOf(gp.Date)
			p.Quantity, _ = qty.ValueAsOf(gp.Date)
			if p.Quantity != 0 {
				price, err := oracle.Price(ctx, k.Instrument, gp.Date)
				if err != nil {
					return nil, err
				}
				rate, err := oracle.Rate(ctx, k.Unit, currency, gp.Date)
				if err != nil {
					return nil, err
				}
				p.Value = p.Quantity * price * rate
			}
			s.Points = append(s.Points, p)
		}
		v.Instruments = append(v.Instruments, s)
	}
	return v, nil
}

// cumulate returns the running sum of a history.
func cumulate(h *date.History[float64]) *date.History[float64] {
	sum := new(date.History[float64])
	total := 0.0
	for day, x := range h.Values() {
		total += x
		sum.Append(day, total)
	}
	return sum
}

// Instrument returns the series of an instrument, or nil.
func (v *Valuation) Instrument(id string) *Series {
	for i := range v.Instruments {
		if v.Instruments[i].Instrument == id {
			return &v.Instruments[i]
		}
	}
	return nil
}
