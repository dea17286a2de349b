// Package quotes talks to the external market-data source. A missing
// price is a nil Price, never zero, so callers can tell "no price
// available" apart from a symbol that really trades at zero.
package quotes

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one observation for a symbol. Either field may be absent.
type Quote struct {
	Symbol    string           `json:"symbol"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	MarketCap *int64           `json:"market_cap,omitempty"`
}

// DailyPrice is one closing price from the daily history series.
type DailyPrice struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Gateway is the upstream market-data provider.
type Gateway interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
	History(ctx context.Context, symbol string) ([]DailyPrice, error)
}
