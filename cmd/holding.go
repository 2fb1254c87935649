package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
	"github.com/etnz/rebalance/renderer"
	"github.com/google/subcommands"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	influx float64
	date   string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the holdings and their weights" }
func (*holdingCmd) Usage() string {
	return `rebal holding [-i <influx>] [-d <date>]

  Displays the positions of the portfolio, their value in the reference currency and their
  weight, with the latest prices or as of a date.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.influx, "i", 0, "cash contribution to add as a CASH position")
	f.StringVar(&c.date, "d", "", "date of the holdings, the latest if empty")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var on date.Date
	if c.date != "" {
		var err error
		if on, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	ledger, err := loadLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if !on.IsZero() {
		ledger = ledger.Until(on)
	}

	oracle, done, err := newOracle(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating the price oracle: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	h, err := rebalance.NewHoldings(ctx, ledger, oracle, c.influx, *currency, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	if h.Total().IsZero() {
		slog.Warn("the portfolio is worth nothing, all weights are zero")
	}
	printMarkdown(renderer.HoldingMarkdown(h))
	return subcommands.ExitSuccess
}
