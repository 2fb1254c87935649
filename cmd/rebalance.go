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

type rebalanceCmd struct {
	influx float64
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "compute the orders to reach the target allocation" }
func (*rebalanceCmd) Usage() string {
	return `rebal rebalance [-i <influx>]

  Displays the target allocation, the holdings, and for each instrument the amount and
  number of shares to buy (positive) or sell (negative) to match the target.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.influx, "i", 0, "cash to invest, or to withdraw if negative")
}

func (c *rebalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadAllocation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading target: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := loadLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	oracle, done, err := newOracle(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating the price oracle: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	if err := a.Price(ctx, oracle, ledger, *currency, date.Date{}); err != nil {
		fmt.Fprintf(os.Stderr, "Error pricing the target: %v\n", err)
		return subcommands.ExitFailure
	}
	h, err := rebalance.NewHoldings(ctx, ledger, oracle, c.influx, *currency, date.Date{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	if h.Total().IsZero() {
		slog.Warn("the portfolio is worth nothing, there is nothing to rebalance")
	}

	printMarkdown(renderer.RebalanceMarkdown(a, h, rebalance.Orders(h, a)))
	fmt.Println(renderer.TargetTree(a))
	return subcommands.ExitSuccess
}
