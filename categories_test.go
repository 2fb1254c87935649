package rebalance

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeFiles creates the named files in a temporary directory.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadTargetTable_Categories(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"_categories.csv": "Category,Ratio\nStocks,0.7\nBonds,0.3\n",
		"Stocks.csv":      "yf_name,p_desired,Asset\nVTI,0.6,Vanguard Total\nVXUS,0.4,\n",
		"Bonds.csv":       "Tag,p_desired,Unit\nBND,1,USD\n",
	})
	tb, err := LoadTargetTable(dir)
	if err != nil {
		t.Fatalf("LoadTargetTable(dir) unexpected error: %v", err)
	}
	a, err := BuildAllocation(tb, true)
	if err != nil {
		t.Fatalf("BuildAllocation() unexpected error: %v", err)
	}
	w := weights(a)
	want := map[string]float64{"VTI": 42, "VXUS": 28, "BND": 30}
	for tag, x := range want {
		if !approx(w[tag], x) {
			t.Errorf("weight[%s] = %v want %v", tag, w[tag], x)
		}
	}
	if n := a.Node("Stocks", "Vanguard Total"); n == nil || len(n.Targets) != 1 {
		t.Errorf("Node(Stocks, Vanguard Total) = %v want the VTI leaf", n)
	}
	if got := a.Target("BND").Unit; got != "USD" {
		t.Errorf("Target(BND).Unit = %q want USD", got)
	}
}

func TestLoadTargetTable_Percents(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"_categories.csv": "Category,Ratio\nStocks,60\nBonds,40\n",
		"Stocks.csv":      "yf_name,p_desired\nVTI,1\n",
		"Bonds.csv":       "yf_name,p_desired\nBND,1\n",
	})
	tb, err := LoadTargetTable(dir)
	if err != nil {
		t.Fatalf("LoadTargetTable(dir) unexpected error: %v", err)
	}
	w := weights(mustBuild(t, tb))
	if !approx(w["VTI"], 60) || !approx(w["BND"], 40) {
		t.Errorf("weights = %v want VTI:60 BND:40", w)
	}
}

func TestLoadTargetTable_CategoryErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"desired does not sum to 1", map[string]string{
			"_categories.csv": "Category,Ratio\nStocks,1\n",
			"Stocks.csv":      "yf_name,p_desired\nVTI,0.6\nVXUS,0.3\n",
		}},
		{"missing category file", map[string]string{
			"_categories.csv": "Category,Ratio\nStocks,1\n",
		}},
		{"bad ratio", map[string]string{
			"_categories.csv": "Category,Ratio\nStocks,most\n",
			"Stocks.csv":      "yf_name,p_desired\nVTI,1\n",
		}},
		{"no desired column", map[string]string{
			"_categories.csv": "Category,Ratio\nStocks,1\n",
			"Stocks.csv":      "yf_name,weight\nVTI,1\n",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTargetTable(writeFiles(t, tt.files))
			var serr *SchemaError
			if !errors.As(err, &serr) {
				t.Errorf("LoadTargetTable() error = %v want a SchemaError", err)
			}
		})
	}
}

func TestLoadTargetTable_File(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		TargetFile + ".csv": "L1,p_L1,Tag\nA,100,X\n",
	})
	path, err := FindFile(dir, TargetFile)
	if err != nil {
		t.Fatal(err)
	}
	tb, err := LoadTargetTable(path)
	if err != nil {
		t.Fatalf("LoadTargetTable(%s) unexpected error: %v", path, err)
	}
	if w := weights(mustBuild(t, tb)); !approx(w["X"], 100) {
		t.Errorf("weights = %v want X:100", w)
	}
}

func mustBuild(t *testing.T, tb *Table) *Allocation {
	t.Helper()
	a, err := BuildAllocation(tb, false)
	if err != nil {
		t.Fatalf("BuildAllocation() unexpected error: %v", err)
	}
	return a
}
