// Package export writes valuation series to spreadsheets.
package export

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/etnz/rebalance"
	"github.com/samber/lo"
)

// PortfolioSheet is the name of the sheet holding the whole portfolio series.
const PortfolioSheet = "Portfolio"

// Sheet is a named grid of values, the first row is the header.
type Sheet struct {
	Name string
	Rows [][]any
}

// Writer writes sheets to a spreadsheet destination.
type Writer interface {
	Write(ctx context.Context, sheets []Sheet) error
}

// Sheets returns the portfolio series, followed by one sheet per instrument.
func Sheets(v *rebalance.Valuation) []Sheet {
	sheets := []Sheet{{Name: PortfolioSheet, Rows: seriesRows(v.Portfolio, false)}}
	seen := map[string]bool{strings.ToLower(PortfolioSheet): true}
	for _, s := range v.Instruments {
		name := uniqueName(seen, s.Instrument, s.Instrument+" "+s.Unit)
		sheets = append(sheets, Sheet{Name: name, Rows: seriesRows(s, true)})
	}
	return sheets
}

func seriesRows(s rebalance.Series, quantity bool) [][]any {
	header := []any{"Date", "Invested", "Value", "Gain", "Yield"}
	if quantity {
		header = append(header, "Quantity")
	}
	return append([][]any{header}, lo.Map(s.Points, func(p rebalance.Point, _ int) []any {
		row := []any{p.Date.String(), p.Invested, p.Value, p.Gain(), float64(p.Yield()) / 100}
		if quantity {
			row = append(row, p.Quantity)
		}
		return row
	})...)
}

// maxSheetName is the maximum length of a sheet name, in characters.
const maxSheetName = 31

// sheetName returns a valid sheet name for an instrument: at most 31 characters, none of
// them in []:*?/\.
func sheetName(id string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, id)
	if name == PortfolioSheet {
		name += "_"
	}
	return truncate(name, maxSheetName)
}

// uniqueName returns the first sheet name built from ids that is not in seen, or the last one
// with a numbered suffix, and marks it as seen. Sheet names are case insensitive.
func uniqueName(seen map[string]bool, ids ...string) string {
	var name string
	for _, id := range ids {
		name = sheetName(id)
		if !seen[strings.ToLower(name)] {
			seen[strings.ToLower(name)] = true
			return name
		}
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		n := truncate(name, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
		if !seen[strings.ToLower(n)] {
			seen[strings.ToLower(n)] = true
			return n
		}
	}
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
