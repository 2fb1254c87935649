package rebalance

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestNewTable(t *testing.T) {
	records := [][]string{
		{"\ufeffL1", " p_L1 ", "", "Tag", ""},
		{"Equity", "60", "", "VTI", "note"},
		{"", "", "", "", ""},
		{"Bonds ", "40", "", " BND"},
	}
	tb := NewTable("in-memory", records)

	if want := []string{"L1", "p_L1", "Tag", ""}; !slices.Equal(tb.Header, want) {
		t.Errorf("Header = %q want %q", tb.Header, want)
	}
	if len(tb.Rows) != 2 {
		t.Fatalf("Rows = %q want 2 rows", tb.Rows)
	}
	if want := []string{"Bonds", "40", "BND", ""}; !slices.Equal(tb.Rows[1], want) {
		t.Errorf("Rows[1] = %q want %q", tb.Rows[1], want)
	}
	if got := tb.Line(1); got != 4 {
		t.Errorf("Line(1) = %d want 4", got)
	}
	if got := tb.Column("tag"); got != 2 {
		t.Errorf("Column(tag) = %d want 2", got)
	}
	if got := tb.Column("yf_name", "Tag"); got != 2 {
		t.Errorf("Column(yf_name, Tag) = %d want 2", got)
	}
	if got := tb.Column("Unit"); got != -1 {
		t.Errorf("Column(Unit) = %d want -1", got)
	}
}

func TestReadCSV_WriteCSV(t *testing.T) {
	const in = "L1,p_L1,Tag\nEquity,60,VTI\nBonds,40,BND\n"
	tb := mustTable(t, in)
	var buf bytes.Buffer
	if err := tb.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() unexpected error: %v", err)
	}
	if got := buf.String(); got != in {
		t.Errorf("WriteCSV() = %q want %q", got, in)
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Date", "yf_name", "Unit", "Quantity"},
		{"2023-01-03", "VTI", "USD", 10},
		{"2023-01-10", "BND", "USD", 4.5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), HistoryFile+".xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("LoadLedger(%s) unexpected error: %v", path, err)
	}
	if l.Len() != 2 {
		t.Fatalf("LoadLedger() = %d entries want 2", l.Len())
	}
	var got []string
	for e := range l.Entries() {
		got = append(got, e.Instrument+" "+e.Quantity.String())
	}
	if want := []string{"VTI 10", "BND 4.5"}; !slices.Equal(got, want) {
		t.Errorf("LoadLedger() = %q want %q", got, want)
	}
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, TargetFile+".xlsx"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, HistoryFile+".csv"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		base string
		want string
	}{
		{TargetFile, filepath.Join(dir, TargetFile+".xlsx")},
		{HistoryFile, filepath.Join(dir, HistoryFile+".csv")},
		{"other.csv", filepath.Join(dir, "other.csv")},
	}
	for _, tt := range tests {
		got, err := FindFile(dir, tt.base)
		if err != nil || got != tt.want {
			t.Errorf("FindFile(%q) = %q, %v want %q", tt.base, got, err, tt.want)
		}
	}
	if _, err := FindFile(dir, "missing"); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("FindFile(missing) error = %v want a not found error", err)
	}
}
