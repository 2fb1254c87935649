// Package store persists market prices across runs, so that a price already seen is never
// fetched twice.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/etnz/rebalance/date"
)

// Dir stores prices as JSON files in a directory, one file per symbol mapping days to prices.
type Dir struct {
	dir string

	mu      sync.Mutex
	symbols map[string]map[string]float64 // loaded files
}

// NewDir returns a store in dir, created on the first write.
func NewDir(dir string) *Dir {
	return &Dir{dir: dir, symbols: make(map[string]map[string]float64)}
}

func (d *Dir) path(symbol string) string {
	return filepath.Join(d.dir, url.PathEscape(symbol)+".json")
}

// load returns the prices of symbol, reading its file once.
func (d *Dir) load(symbol string) (map[string]float64, error) {
	if prices, ok := d.symbols[symbol]; ok {
		return prices, nil
	}
	prices := make(map[string]float64)
	content, err := os.ReadFile(d.path(symbol))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(content, &prices); err != nil {
			return nil, fmt.Errorf("corrupted price file %s: %w", d.path(symbol), err)
		}
	}
	d.symbols[symbol] = prices
	return prices, nil
}

// Get returns the price of symbol on a day.
func (d *Dir) Get(_ context.Context, symbol string, on date.Date) (float64, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prices, err := d.load(symbol)
	if err != nil {
		return 0, false, err
	}
	v, ok := prices[on.String()]
	return v, ok, nil
}

// Put saves the price of symbol on a day, and rewrites the symbol file.
func (d *Dir) Put(_ context.Context, symbol string, on date.Date, value float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	prices, err := d.load(symbol)
	if err != nil {
		return err
	}
	prices[on.String()] = value

	content, err := json.MarshalIndent(prices, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(d.path(symbol), content, 0o644)
}
