package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
	"github.com/etnz/rebalance/export"
	"github.com/etnz/rebalance/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	output      string
	sheet       string
	credentials string
	symbol      string
	period      date.Period
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the invested cash and the value over time" }
func (*historyCmd) Usage() string {
	return `rebal history [-p weekly] [-s <symbol>] [-o <file.xlsx>] [-sheet <id> -credentials <file>]

  Replays the ledger and displays the invested cash, the value, and the gain of the
  portfolio, or of a single instrument, on every period start.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	c.period = date.Weekly
	f.Var(&c.period, "p", "period of the grid: daily, weekly, monthly, quarterly or yearly")
	f.StringVar(&c.symbol, "s", "", "display the history of this instrument only")
	f.StringVar(&c.output, "o", "", "write the history to an Excel workbook")
	f.StringVar(&c.sheet, "sheet", "", "write the history to this Google Sheets spreadsheet id")
	f.StringVar(&c.credentials, "credentials", os.Getenv("REBAL_GOOGLE_CREDENTIALS"), "Google service account JSON file, for -sheet")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.sheet != "" && c.credentials == "" {
		fmt.Fprintln(os.Stderr, "Error: -sheet needs -credentials")
		return subcommands.ExitUsageError
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

	v, err := rebalance.NewValuation(ctx, ledger, oracle, *currency, oracle.Today(), c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing the history: %v\n", err)
		return subcommands.ExitFailure
	}

	var writers []export.Writer
	if c.output != "" {
		writers = append(writers, &export.XLSXWriter{Path: c.output})
	}
	if c.sheet != "" {
		w, err := export.NewSheetsWriter(ctx, c.sheet, c.credentials)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to Google Sheets: %v\n", err)
			return subcommands.ExitFailure
		}
		writers = append(writers, w)
	}
	for _, w := range writers {
		if err := w.Write(ctx, export.Sheets(v)); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting the history: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	md, err := renderer.HistoryMarkdown(v, c.symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
