package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete handles shell completion requests, it must be called before the flags are parsed.
//
// It is a no-op unless the shell is asking for completions, in which case it exits.
// Install it with `COMP_INSTALL=1 rebal`.
func Complete(name string) {
	periods := predict.Set{"daily", "weekly", "monthly", "quarterly", "yearly"}
	topics := predict.Set{"*", "readme", "target", "ledger", "holding", "rebalance", "history", "oracle", "config"}

	global := map[string]complete.Predictor{
		"portfolio":     predict.Dirs("*"),
		"no-example":    predict.Nothing,
		"ledger":        predict.Files("*.csv"),
		"target":        predict.Files("*"),
		"c":             predict.Set{"USD", "EUR", "GBP", "CHF", "JPY"},
		"oracle":        predict.Set{"yahoo", "eodhd"},
		"eodhd-api-key": predict.Something,
		"cache-dir":     predict.Dirs("*"),
		"cache-dsn":     predict.Something,
		"today":         predict.Something,
		"strict":        predict.Nothing,
		"v":             predict.Nothing,
	}

	cmd := &complete.Command{
		Flags: global,
		Sub: map[string]*complete.Command{
			"target": {Flags: map[string]complete.Predictor{"tree": predict.Nothing}},
			"holding": {Flags: map[string]complete.Predictor{
				"i": predict.Something,
				"d": predict.Something,
			}},
			"rebalance": {Flags: map[string]complete.Predictor{"i": predict.Something}},
			"history": {Flags: map[string]complete.Predictor{
				"p":           periods,
				"s":           predict.Something,
				"o":           predict.Files("*.xlsx"),
				"sheet":       predict.Something,
				"credentials": predict.Files("*.json"),
			}},
			"topic": {Args: topics},
			"help":  {},
		},
	}
	cmd.Complete(name)
}
