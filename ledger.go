package rebalance

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/etnz/rebalance/date"
	"github.com/samber/lo"
)

// Entry is a single ledger transaction: a signed quantity of an instrument exchanged on a
// given day. Positive quantities are buys or deposits, negative ones are sells or withdrawals.
type Entry struct {
	Date       date.Date
	Instrument string
	Unit       string // currency the instrument is quoted in
	Quantity   Quantity
}

// Ledger represents a list of entries.
//
// In a Ledger entries are always in chronological order, and a Ledger is never modified
// once built.
type Ledger struct {
	entries []Entry
}

// NewLedger creates a ledger from entries in any order.
func NewLedger(entries ...Entry) *Ledger {
	l := &Ledger{entries: slices.Clone(entries)}
	slices.SortStableFunc(l.entries, func(a, b Entry) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})
	return l
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries iterates over all entries in chronological order.
func (l *Ledger) Entries() iter.Seq[Entry] { return slices.Values(l.entries) }

// Until returns the ledger restricted to entries on or before day.
func (l *Ledger) Until(day date.Date) *Ledger {
	i, _ := slices.BinarySearchFunc(l.entries, day.Add(1), func(e Entry, t date.Date) int {
		if e.Date.Before(t) {
			return -1
		}
		return 1
	})
	return &Ledger{entries: l.entries[:i]}
}

// First returns the date of the earliest entry, zero if the ledger is empty.
func (l *Ledger) First() date.Date {
	if len(l.entries) == 0 {
		return date.Date{}
	}
	return l.entries[0].Date
}

// Instruments returns the sorted list of instruments found in the ledger.
func (l *Ledger) Instruments() []string {
	ids := lo.Uniq(lo.Map(l.entries, func(e Entry, _ int) string { return e.Instrument }))
	slices.Sort(ids)
	return ids
}

// Unit returns the unit of the first entry for instrument, or "".
func (l *Ledger) Unit(instrument string) string {
	e, ok := lo.Find(l.entries, func(e Entry) bool { return e.Instrument == instrument })
	if !ok {
		return ""
	}
	return e.Unit
}

// positionKey groups ledger entries into positions.
type positionKey struct{ Instrument, Unit string }

// positions sums the quantities per (instrument, unit), in instrument then unit order.
func (l *Ledger) positions() ([]positionKey, map[positionKey]Quantity) {
	groups := lo.GroupBy(l.entries, func(e Entry) positionKey { return positionKey{e.Instrument, e.Unit} })
	sums := lo.MapValues(groups, func(entries []Entry, _ positionKey) Quantity {
		return lo.Reduce(entries, func(q Quantity, e Entry, _ int) Quantity { return q.Add(e.Quantity) }, Q(0))
	})
	keys := lo.Keys(sums)
	slices.SortFunc(keys, func(a, b positionKey) int {
		return cmp.Or(cmp.Compare(a.Instrument, b.Instrument), cmp.Compare(a.Unit, b.Unit))
	})
	return keys, sums
}

// ParseLedger decodes ledger entries from a table with columns Date, yf_name (or Tag),
// Unit and Quantity.
func ParseLedger(t *Table) (*Ledger, error) {
	cols := make([]int, 4)
	for i, names := range [][]string{{"Date"}, {"yf_name", "Tag", "Instrument"}, {"Unit"}, {"Quantity"}} {
		j, err := t.require(names...)
		if err != nil {
			return nil, err
		}
		cols[i] = j
	}
	dateCol, idCol, unitCol, qtyCol := cols[0], cols[1], cols[2], cols[3]

	entries := make([]Entry, 0, len(t.Rows))
	for i, row := range t.Rows {
		on, err := date.Parse(row[dateCol])
		if err != nil {
			return nil, t.schemaError(i, t.Header[dateCol], err)
		}
		id := row[idCol]
		if id == "" {
			return nil, t.schemaError(i, t.Header[idCol], fmt.Errorf("empty instrument"))
		}
		qty, err := ParseQuantity(row[qtyCol])
		if err != nil {
			return nil, t.schemaError(i, t.Header[qtyCol], fmt.Errorf("invalid quantity %q", row[qtyCol]))
		}
		entries = append(entries, Entry{
			Date:       on,
			Instrument: id,
			Unit:       row[unitCol],
			Quantity:   qty,
		})
	}
	return NewLedger(entries...), nil
}
