package rebalance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Default file names in a portfolio directory, without extension.
const (
	HistoryFile = "_history"
	TargetFile  = "_target"
)

// extensions supported for tabular files, in lookup order.
var extensions = []string{".csv", ".xlsx"}

// FindFile returns the path of the tabular file named base in dir, trying every supported
// extension.
//
// A base with an extension is returned as is.
func FindFile(dir, base string) (string, error) {
	if filepath.Ext(base) != "" {
		if filepath.IsAbs(base) {
			return base, nil
		}
		return filepath.Join(dir, base), nil
	}
	for _, ext := range extensions {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("could not find %q in %s (tried %s)", base, dir, strings.Join(extensions, ", "))
}

// LoadTable reads a CSV or XLSX file, based on its extension.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, f)
	case ".csv", "":
		return ReadCSV(path, f)
	default:
		return nil, fmt.Errorf("unsupported file type %q", path)
	}
}

// LoadLedger reads a ledger file.
func LoadLedger(path string) (*Ledger, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return ParseLedger(t)
}

// LoadTargetTable reads a target structure file.
//
// path can also be a directory holding the category layout: a "_categories" file listing
// each Category with its Ratio, and one file per category listing its instruments.
func LoadTargetTable(path string) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadCategories(path)
	}
	return LoadTable(path)
}
