package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/rebalance"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders the valuation of the portfolio over time, or of a single
// instrument if id is not empty.
func HistoryMarkdown(v *rebalance.Valuation, id string) (string, error) {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	s := &v.Portfolio
	if id != "" {
		if s = v.Instrument(id); s == nil {
			return "", fmt.Errorf("no %q in the ledger", id)
		}
		doc.H1(fmt.Sprintf("History for %s", id))
	} else {
		doc.H1(fmt.Sprintf("History for %s", v.Currency))
	}

	header := []string{"Date", "Invested", "Value", "Gain", "Yield"}
	align := []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight}
	if id != "" {
		header = append([]string{"Date", "Quantity"}, header[1:]...)
		align = append(align, md.AlignRight)
	}
	table := md.TableSet{Alignment: align, Header: header}
	for _, p := range s.Points {
		row := []string{p.Date.String()}
		if id != "" {
			row = append(row, fmt.Sprintf("%g", p.Quantity))
		}
		row = append(row,
			amount(p.Invested, v.Currency),
			amount(p.Value, v.Currency),
			rebalance.M(p.Gain(), v.Currency).SignedString(),
			p.Yield().SignedString(),
		)
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)
	return doc.String(), nil
}
