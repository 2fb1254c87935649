// Package eodhd reads market data from the EOD Historical Data API (https://eodhd.com).
package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/rebalance/date"
)

const (
	// DemoKey is the public api key, limited to a few tickers like MCD.US or EURUSD.FOREX.
	DemoKey = "demo"

	defaultBaseURL = "https://eodhd.com/api"
	forexSuffix    = ".FOREX"
)

// Client is a quoter on the EODHD API.
//
// Symbols are EODHD tickers: "SYMBOL.EXCHANGE", like "MCD.US" or "IWDA.AS".
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New returns a Client authenticated with apiKey. Responses are cached for the day in
// cacheDir, the system temporary directory if empty.
func New(apiKey, cacheDir string) *Client {
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "rebal")
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    newCachingClient(cacheDir),
	}
}

// CurrencyPair returns the forex ticker, like "EURUSD.FOREX".
func (c *Client) CurrencyPair(from, to string) string { return from + to + forexSuffix }

// Latest returns the last price of symbol, using the live (delayed) endpoint.
func (c *Client) Latest(ctx context.Context, symbol string) (float64, error) {
	// https://eodhd.com/api/real-time/MCD.US?api_token=demo&fmt=json
	// {"code":"MCD.US","timestamp":1690574340,"gmtoffset":0,"open":292.85,"high":294.1,
	//  "low":291.13,"close":293.05,"volume":2211453,"previousClose":291.77,...}
	addr := fmt.Sprintf("%s/real-time/%s?fmt=json&api_token=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))
	var jobj any
	if err := jwget(ctx, c.http, addr, &jobj); err != nil {
		return 0, err
	}
	const path = "$.close"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("cannot read %s in %s real-time quote: %w", path, symbol, err)
	}
	// the API answers "NA" for unknown values.
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("cannot read %s in %s real-time quote: got %v", path, symbol, jval)
	}
	return val, nil
}

// Daily returns the adjusted daily close of symbol between from and to, included.
//
// The forex close reported by EODHD is unreliable, the open of the next day is used instead.
func (c *Client) Daily(ctx context.Context, symbol string, from, to date.Date) (*date.History[float64], error) {
	h := new(date.History[float64])
	if !strings.HasSuffix(symbol, forexSuffix) {
		bars, err := c.eod(ctx, symbol, from, to)
		if err != nil {
			return nil, err
		}
		for _, b := range bars {
			h.Append(b.Date, b.AdjustedClose)
		}
		return h, nil
	}

	bars, err := c.eod(ctx, symbol, from.Add(1), to.Add(1))
	if err != nil {
		return nil, err
	}
	for _, b := range bars {
		h.Append(b.Date.Add(-1), b.Open)
	}
	return h, nil
}

type bar struct {
	Date          date.Date `json:"date"`
	Open          float64   `json:"open"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
}

// eod fetches end of day bars, the bounds are included.
func (c *Client) eod(ctx context.Context, symbol string, from, to date.Date) ([]bar, error) {
	// https://eodhd.com/api/eod/MCD.US?api_token=demo&fmt=json&from=2024-02-01&to=2024-02-13
	// [{"date":"2024-02-13","open":675.066,"high":684.219,"low":648.659,"close":668.445,
	//   "adjusted_close":67.705,"volume":0}, ...]
	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey), from, to)
	bars := make([]bar, 0)
	if err := jwget(ctx, c.http, addr, &bars); err != nil {
		return nil, fmt.Errorf("cannot fetch %s daily prices: %w", symbol, err)
	}
	return bars, nil
}
