package yahoo

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/rebalance/date"
)

func TestQuoter_CurrencyPair(t *testing.T) {
	if got := New().CurrencyPair("EUR", "USD"); got != "EURUSD=X" {
		t.Errorf("CurrencyPair(EUR, USD) = %q want EURUSD=X", got)
	}
}

func Test_dayOf(t *testing.T) {
	tests := []struct {
		ts   time.Time
		want date.Date
	}{
		{time.Date(2024, 2, 13, 14, 30, 0, 0, time.UTC), date.New(2024, 2, 13)},
		{time.Date(2024, 2, 13, 8, 0, 0, 0, time.UTC), date.New(2024, 2, 13)},
	}
	for _, tt := range tests {
		if got := dayOf(tt.ts.Unix()); got != tt.want {
			t.Errorf("dayOf(%v) = %v want %v", tt.ts, got, tt.want)
		}
	}
}

func TestQuoter_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Latest(ctx, "AAPL"); err == nil {
		t.Errorf("Latest() expected an error on a canceled context")
	}
	if _, err := New().Daily(ctx, "AAPL", date.New(2024, 1, 1), date.New(2024, 1, 31)); err == nil {
		t.Errorf("Daily() expected an error on a canceled context")
	}
}

func TestQuoter_Daily(t *testing.T) {
	if testing.Short() {
		t.Skip("needs network access to Yahoo Finance")
	}
	h, err := New().Daily(context.Background(), "MCD", date.New(2024, 2, 5), date.New(2024, 2, 9))
	if err != nil {
		t.Fatalf("Daily() unexpected error: %v", err)
	}
	if h.Len() != 5 {
		t.Errorf("Daily(MCD) = %d points want 5 trading days", h.Len())
	}
}
