package renderer

import (
	"bytes"
	"io"
	"strings"

	"github.com/etnz/rebalance"
	md "github.com/nao1215/markdown"
)

// OrdersMarkdown renders the orders closing the gap between the holdings and the target.
func OrdersMarkdown(orders []rebalance.Order) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Orders")
	if len(orders) == 0 {
		doc.PlainText("Nothing to do.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Product", "Tag", "Desired", "Actual", "Gap", "Amount", "Shares"},
	}
	for _, o := range orders {
		table.Rows = append(table.Rows, []string{
			o.Name,
			o.Instrument,
			o.Desired.String(),
			o.Actual.String(),
			o.Gap.SignedString(),
			o.Amount.SignedString(),
			shares(o.Shares),
		})
	}
	doc.Table(table)
	return doc.String()
}

// RebalanceMarkdown renders the whole rebalancing report: target, holdings and orders.
//
// The holdings section is omitted when the portfolio is empty.
func RebalanceMarkdown(a *rebalance.Allocation, h *rebalance.Holdings, orders []rebalance.Order) string {
	var b strings.Builder
	b.WriteString(TargetsMarkdown(a))
	b.WriteString("\n")
	ConditionalBlock(&b, func(w io.Writer) bool {
		io.WriteString(w, HoldingMarkdown(h))
		io.WriteString(w, "\n")
		return len(h.Positions) > 0
	})
	b.WriteString(OrdersMarkdown(orders))
	return b.String()
}
