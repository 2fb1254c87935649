package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/rebalance"
	md "github.com/nao1215/markdown"
)

// HoldingMarkdown renders the positions of a portfolio and its total.
func HoldingMarkdown(h *rebalance.Holdings) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	if h.Date.IsZero() {
		doc.H1("Holdings")
	} else {
		doc.H1(fmt.Sprintf("Holdings on %s", h.Date))
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Instrument", "Quantity", "Price", "Value", "Value " + h.Currency, "Weight"},
	}
	for _, p := range h.Positions {
		table.Rows = append(table.Rows, []string{
			p.Instrument,
			p.Quantity.String(),
			price(p.Price),
			p.Value.String(),
			p.RefValue.String(),
			p.Weight.String(),
		})
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), "", "", "", md.Bold(h.Total().String()), ""})
	doc.Table(table)
	return doc.String()
}
