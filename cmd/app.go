// Package cmd implements the rebal command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
	"github.com/etnz/rebalance/eodhd"
	"github.com/etnz/rebalance/store"
	"github.com/etnz/rebalance/yahoo"
	"github.com/google/subcommands"

	// .env variables must be loaded before the flag defaults are computed.
	_ "github.com/joho/godotenv/autoload"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&targetCmd{}, "portfolio")
	c.Register(&holdingCmd{}, "portfolio")
	c.Register(&rebalanceCmd{}, "portfolio")
	c.Register(&historyCmd{}, "portfolio")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	portfolioDir = flag.String("portfolio", envOr("REBAL_PORTFOLIO", "example_portfolio"), "portfolio directory holding the "+rebalance.HistoryFile+" and "+rebalance.TargetFile+" files")
	noExample    = flag.Bool("no-example", false, "use the your_portfolio directory instead of -portfolio")
	ledgerPath   = flag.String("ledger", "", "ledger file, overrides the one in the portfolio directory")
	targetPath   = flag.String("target", "", "target allocation file or directory, overrides the one in the portfolio directory")
	currency     = flag.String("c", envOr("REBAL_CURRENCY", "USD"), "reference currency")
	oracleName   = flag.String("oracle", envOr("REBAL_ORACLE", "yahoo"), "market data source: yahoo or eodhd")
	eodhdKey     = flag.String("eodhd-api-key", envOr("REBAL_EODHD_API_KEY", ""), "EODHD API key, see https://eodhd.com/")
	cacheDir     = flag.String("cache-dir", envOr("REBAL_CACHE_DIR", defaultCacheDir()), "directory of the price cache")
	cacheDSN     = flag.String("cache-dsn", envOr("REBAL_CACHE_DSN", ""), "PostgreSQL connection string of the price cache, replaces -cache-dir")
	todayFlag    = flag.String("today", "", "date considered as today, the current date if empty")
	strict       = flag.Bool("strict", false, "reject target categories whose weights do not sum to 100%")
	Verbose      = flag.Bool("v", false, "print debug logs")
)

func envOr(key, value string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return value
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "rebal")
}

// SetupLogging configures the default logger, it must be called after the flags are parsed.
func SetupLogging() {
	level := slog.LevelInfo
	if *Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func dir() string {
	if *noExample {
		return "your_portfolio"
	}
	return *portfolioDir
}

func today() (date.Date, error) {
	if *todayFlag == "" {
		return date.Today(), nil
	}
	return date.Parse(*todayFlag)
}

// loadLedger reads the ledger of the portfolio.
func loadLedger() (*rebalance.Ledger, error) {
	path := *ledgerPath
	if path == "" {
		var err error
		if path, err = rebalance.FindFile(dir(), rebalance.HistoryFile); err != nil {
			return nil, err
		}
	}
	slog.Debug("loading ledger", "path", path)
	return rebalance.LoadLedger(path)
}

// loadAllocation reads and builds the target allocation of the portfolio.
func loadAllocation() (*rebalance.Allocation, error) {
	path := *targetPath
	if path == "" {
		var err error
		if path, err = rebalance.FindFile(dir(), rebalance.TargetFile); err != nil {
			return nil, err
		}
	}
	slog.Debug("loading target", "path", path)
	t, err := rebalance.LoadTargetTable(path)
	if err != nil {
		return nil, err
	}
	return rebalance.BuildAllocation(t, *strict)
}

// newOracle returns the configured oracle, and a function to release its resources.
func newOracle(ctx context.Context) (*rebalance.Oracle, func(), error) {
	on, err := today()
	if err != nil {
		return nil, nil, err
	}

	var quoter rebalance.Quoter
	switch *oracleName {
	case "yahoo":
		quoter = yahoo.New()
	case "eodhd":
		if *eodhdKey == "" {
			return nil, nil, fmt.Errorf("the eodhd oracle needs an API key, set -eodhd-api-key or REBAL_EODHD_API_KEY")
		}
		quoter = eodhd.New(*eodhdKey, filepath.Join(*cacheDir, "http"))
	default:
		return nil, nil, fmt.Errorf("unknown oracle %q, want yahoo or eodhd", *oracleName)
	}

	// symbols differ between sources, so do their caches.
	if *cacheDSN != "" {
		pg, err := store.Connect(ctx, *cacheDSN)
		if err != nil {
			return nil, nil, err
		}
		return rebalance.NewOracle(quoter, on, pg), pg.Close, nil
	}
	s := store.NewDir(filepath.Join(*cacheDir, *oracleName))
	return rebalance.NewOracle(quoter, on, s), func() {}, nil
}

// printMarkdown renders markdown for the terminal, or prints it raw if it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	slog.Debug("cannot render markdown", "error", err)
	fmt.Print(md)
}
