package rebalance

import (
	"context"
	"testing"

	"github.com/etnz/rebalance/date"
)

// rebalanceFixture returns holdings worth 1000 USD: A 600 (60%), B 400 (40%), and a target
// of A 50%, C 50%.
func rebalanceFixture(t *testing.T, influx float64) (*Holdings, *Allocation) {
	t.Helper()
	ctx := context.Background()
	oracle := prices(map[string]float64{"A": 10, "B": 20, "C": 25})
	ledger := NewLedger(
		entry("2023-01-03", "A", "USD", 60),
		entry("2023-01-03", "B", "USD", 20),
	)
	h, err := NewHoldings(ctx, ledger, oracle, influx, "USD", date.Date{})
	if err != nil {
		t.Fatalf("NewHoldings() unexpected error: %v", err)
	}
	a := mustAllocation(t, "L1,p_L1,Tag,Product\nStocks,50,A,Alpha\nOther,50,C,\n")
	if err := a.Price(ctx, oracle, ledger, "USD", date.Date{}); err != nil {
		t.Fatalf("Allocation.Price() unexpected error: %v", err)
	}
	return h, a
}

func TestOrders(t *testing.T) {
	h, a := rebalanceFixture(t, 0)
	orders := Orders(h, a)

	want := map[string]struct {
		amount float64
		shares float64
		name   string
	}{
		"A": {-100, -10, "Alpha"},
		"B": {-400, -20, "B"},
		"C": {500, 20, "C"},
	}
	if len(orders) != len(want) {
		t.Fatalf("Orders() = %d orders want %d", len(orders), len(want))
	}
	for _, o := range orders {
		w := want[o.Instrument]
		if !approx(o.Amount.Float64(), w.amount) || !approx(o.Shares.Float64(), w.shares) || o.Name != w.name {
			t.Errorf("Order(%s) = %v, %v shares, %q want %v, %v shares, %q", o.Instrument, o.Amount, o.Shares, o.Name, w.amount, w.shares, w.name)
		}
		if o.Amount.Currency() != "USD" {
			t.Errorf("Order(%s).Amount currency = %q want USD", o.Instrument, o.Amount.Currency())
		}
	}
	// sorted by absolute amount
	if orders[0].Instrument != "C" || orders[1].Instrument != "B" || orders[2].Instrument != "A" {
		t.Errorf("Orders() = %s, %s, %s want C, B, A", orders[0].Instrument, orders[1].Instrument, orders[2].Instrument)
	}
}

func TestOrders_NoCash(t *testing.T) {
	h, a := rebalanceFixture(t, 1000)
	for _, o := range Orders(h, a) {
		if o.Instrument == Cash {
			t.Errorf("Orders() contains a %s order: %+v", Cash, o)
		}
	}
}

func TestOrders_OnTarget(t *testing.T) {
	oracle := prices(map[string]float64{"A": 10, "B": 20})
	ledger := NewLedger(
		entry("2023-01-03", "A", "USD", 60),
		entry("2023-01-03", "B", "USD", 20),
	)
	h, err := NewHoldings(context.Background(), ledger, oracle, 0, "USD", date.Date{})
	if err != nil {
		t.Fatalf("NewHoldings() unexpected error: %v", err)
	}
	a := mustAllocation(t, "L1,p_L1,Tag\nX,60,A\nY,40,B\n")
	if err := a.Price(context.Background(), oracle, ledger, "USD", date.Date{}); err != nil {
		t.Fatalf("Allocation.Price() unexpected error: %v", err)
	}
	for _, o := range Orders(h, a) {
		if !approx(o.Amount.Float64(), 0) {
			t.Errorf("Order(%s).Amount = %v want 0", o.Instrument, o.Amount)
		}
		if !approx(o.Shares.Float64(), 0) {
			t.Errorf("Order(%s).Shares = %v want 0", o.Instrument, o.Shares)
		}
	}
}

func TestOrders_NoPrice(t *testing.T) {
	// a target never priced, and no holding: the share count is 0.
	h := &Holdings{Currency: "USD", total: M(1000, "USD")}
	a := mustAllocation(t, "L1,p_L1,Tag\nX,100,A\n")
	orders := Orders(h, a)
	if len(orders) != 1 || !approx(orders[0].Amount.Float64(), 1000) || !orders[0].Shares.IsZero() {
		t.Errorf("Orders() = %+v want one $1,000.00 order for 0 shares", orders)
	}
}
