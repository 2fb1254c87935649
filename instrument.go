package rebalance

const (
	// Cash is the instrument of the synthetic position created by a cash influx.
	Cash = "CASH"
	// CashEquivalent is the instrument used in ledgers for savings accounts and other
	// holdings valued at their nominal amount.
	CashEquivalent = "--"
)

// isCash reports whether an instrument is valued at 1 unit of its currency, without any
// market data.
func isCash(instrument string) bool { return instrument == Cash || instrument == CashEquivalent }

// Instrument identifies a tradable asset.
type Instrument struct {
	ID      string // oracle symbol, like "AAPL" or "IWDA.AS"
	Product string // human readable name, may be empty
	Unit    string // currency of denomination, may be empty
}

// Name returns the display name of the instrument.
func (i Instrument) Name() string {
	if i.Product != "" {
		return i.Product
	}
	return i.ID
}
