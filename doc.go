// Package rebalance compares a portfolio with its target allocation and computes the orders
// that bring it back on target.
//
// The core functionalities include:
//   - Target allocation: a hierarchy of categories, each with a weight local to its
//     siblings, is flattened into an overall weight per instrument (BuildAllocation).
//   - Holdings: a ledger of dated buys and sells is aggregated into positions, priced in a
//     single reference currency (NewHoldings).
//   - Rebalancing: target and actual weights are joined into buy and sell orders (Orders).
//   - Valuation history: the ledger is replayed on a weekly grid to compare the invested
//     cash with the market value of the portfolio (NewValuation).
//
// Market data is provided by a PriceOracle. The Oracle type implements it on top of a
// Quoter (see the yahoo and eodhd packages) with memoization and an optional persistent
// Store (see the store package).
//
// This package serves as the foundational logic for the `rebal` command-line tool.
package rebalance
