// Package renderer formats allocations, holdings, orders and valuations as markdown.
package renderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/etnz/rebalance"
)

// ConditionalBlock lets you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// amount formats a float in currency.
func amount(v float64, currency string) string { return rebalance.M(v, currency).String() }

// shares formats a share count with up to 2 decimals, and an explicit sign.
func shares(q rebalance.Quantity) string {
	if q.IsPositive() {
		return "+" + q.Fixed(2)
	}
	return q.Fixed(2)
}

func price(v float64) string { return fmt.Sprintf("%.2f", v) }
