package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantage implements Gateway on top of the Alpha Vantage REST API:
// GLOBAL_QUOTE for the price, OVERVIEW for the market capitalization,
// TIME_SERIES_DAILY for history.
type AlphaVantage struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewAlphaVantage(baseURL, apiKey string) *AlphaVantage {
	resolved := strings.TrimRight(baseURL, "/")
	if resolved == "" {
		resolved = alphaVantageBaseURL
	}

	return &AlphaVantage{
		baseURL: resolved,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type globalQuoteResponse struct {
	GlobalQuote struct {
		Price string `json:"05. price"`
	} `json:"Global Quote"`
}

type overviewResponse struct {
	MarketCapitalization string `json:"MarketCapitalization"`
}

type dailySeriesResponse struct {
	TimeSeriesDaily map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

func (a *AlphaVantage) Lookup(ctx context.Context, symbol string) (Quote, error) {
	q := Quote{Symbol: symbol}

	var gq globalQuoteResponse
	if err := a.get(ctx, "GLOBAL_QUOTE", symbol, &gq); err != nil {
		return Quote{}, err
	}
	if gq.GlobalQuote.Price != "" {
		price, err := decimal.NewFromString(gq.GlobalQuote.Price)
		if err != nil {
			return Quote{}, fmt.Errorf("parse price for %s: %w", symbol, err)
		}
		q.Price = &price
	}

	// Market cap is best effort; a quote without it is still usable.
	var ov overviewResponse
	if err := a.get(ctx, "OVERVIEW", symbol, &ov); err == nil {
		if mcap, err := strconv.ParseInt(ov.MarketCapitalization, 10, 64); err == nil {
			q.MarketCap = &mcap
		}
	}

	return q, nil
}

func (a *AlphaVantage) History(ctx context.Context, symbol string) ([]DailyPrice, error) {
	var series dailySeriesResponse
	if err := a.get(ctx, "TIME_SERIES_DAILY", symbol, &series); err != nil {
		return nil, err
	}

	prices := make([]DailyPrice, 0, len(series.TimeSeriesDaily))
	for day, bar := range series.TimeSeriesDaily {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		closePrice, err := decimal.NewFromString(bar.Close)
		if err != nil {
			continue
		}
		prices = append(prices, DailyPrice{Date: date, Close: closePrice})
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].Date.Before(prices[j].Date) })
	return prices, nil
}

func (a *AlphaVantage) get(ctx context.Context, function, symbol string, out interface{}) error {
	endpoint, err := url.Parse(a.baseURL + "/query")
	if err != nil {
		return err
	}

	query := endpoint.Query()
	query.Set("function", function)
	query.Set("symbol", symbol)
	query.Set("apikey", a.apiKey)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("alpha vantage error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
