package rebalance

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Order is the trade needed to bring an instrument to its target weight.
type Order struct {
	Instrument string
	Name       string  // display name
	Desired    Percent // target weight
	Actual     Percent // current weight
	Gap        Percent // Desired - Actual
	Amount     Money   // in the reference currency, positive to buy
	Shares     Quantity
}

// Orders returns the orders that rebalance the holdings towards the allocation.
//
// Instruments found on one side only are included with a zero weight on the other. The CASH
// position is never ordered. The share count uses the target's price and rate, or the
// holding's when the target has none, and is zero when neither is known.
//
// Orders are sorted by descending absolute amount.
func Orders(h *Holdings, a *Allocation) []Order {
	total := h.Total()
	orders := make([]Order, 0)
	index := make(map[string]int)

	upsert := func(id string) *Order {
		i, ok := index[id]
		if !ok {
			i = len(orders)
			index[id] = i
			orders = append(orders, Order{Instrument: id, Name: id})
		}
		return &orders[i]
	}

	for _, p := range h.Positions {
		if p.Instrument == Cash {
			continue
		}
		o := upsert(p.Instrument)
		o.Actual += p.Weight
	}
	if a != nil {
		for _, t := range a.Targets() {
			if t.ID == Cash {
				continue
			}
			o := upsert(t.ID)
			o.Desired += t.Weight
			o.Name = t.Name()
		}
	}

	for i := range orders {
		o := &orders[i]
		o.Gap = o.Desired - o.Actual
		o.Amount = total.Scale(float64(o.Gap) / 100)

		unitValue := 0.0 // value of one share in the reference currency
		if a != nil {
			if t := a.Target(o.Instrument); t != nil {
				unitValue = t.Price * t.Rate
			}
		}
		if unitValue == 0 {
			if p := h.Position(o.Instrument); p != nil {
				unitValue = p.Price * p.Rate
			}
		}
		o.Shares = Q(0)
		if unitValue != 0 {
			o.Shares = Quantity{value: o.Amount.Decimal().Div(decimal.NewFromFloat(unitValue))}
		}
	}

	slices.SortStableFunc(orders, func(x, y Order) int {
		return cmp.Compare(y.Amount.Abs().Float64(), x.Amount.Abs().Float64())
	})
	return orders
}
