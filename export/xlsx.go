package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter writes sheets to an Excel workbook, each with a line chart of the invested cash
// against the value. The portfolio sheet also charts the gain.
type XLSXWriter struct {
	Path string
}

func (w *XLSXWriter) Write(ctx context.Context, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if i == 0 {
			err = f.SetSheetName("Sheet1", s.Name)
		} else {
			_, err = f.NewSheet(s.Name)
		}
		if err != nil {
			return fmt.Errorf("creating sheet %q: %w", s.Name, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				return fmt.Errorf("writing sheet %q: %w", s.Name, err)
			}
		}
		if len(s.Rows) < 2 {
			continue
		}
		if err := addChart(f, s.Name, "H2", "Invested and Value", len(s.Rows), "B", "C"); err != nil {
			return err
		}
		if s.Name == PortfolioSheet {
			if err := addChart(f, s.Name, "H18", "Gain", len(s.Rows), "D"); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("saving %s: %w", w.Path, err)
	}
	slog.Debug("workbook saved", "path", w.Path, "sheets", len(sheets))
	return nil
}

// addChart adds a line chart at cell of the given columns against the dates in column A.
func addChart(f *excelize.File, sheet, cell, title string, rows int, columns ...string) error {
	chart := &excelize.Chart{
		Type:  excelize.Line,
		Title: []excelize.RichTextRun{{Text: title}},
	}
	for _, col := range columns {
		chart.Series = append(chart.Series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheet, col),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, rows),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, rows),
		})
	}
	if err := f.AddChart(sheet, cell, chart); err != nil {
		return fmt.Errorf("adding %s chart to %q: %w", title, sheet, err)
	}
	return nil
}
