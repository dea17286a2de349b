// Package domain holds the pure business rules: weighted-average cost
// accounting, market-cap buckets, tax-horizon classification and portfolio
// rollups. Nothing here touches the database or the network.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"portfolio-tracker/models"
)

var (
	ErrQuantityNotPositive  = errors.New("quantity must be greater than zero")
	ErrNegativePrice        = errors.New("price must not be negative")
	ErrNegativeFees         = errors.New("fees must not be negative")
	ErrInsufficientQuantity = errors.New("sell quantity exceeds held quantity")
)

// Market-cap bucket boundaries, inclusive-low / exclusive-high.
const (
	midCapFloor   int64 = 2_000_000_000
	largeCapFloor int64 = 10_000_000_000
)

// longTermDays is the holding period, in days, at which a position
// becomes long-term. Day 365 itself is long-term.
const longTermDays = 365

// moneyScale matches the numeric(18,4) storage precision.
const moneyScale = 4

// NormalizeSymbol trims and uppercases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NewHolding builds a holding with its cost basis derived once from
// quantity and average cost.
func NewHolding(portfolioID uint, symbol string, quantity, avgCost decimal.Decimal, firstBuyDate *time.Time) models.Holding {
	return models.Holding{
		PortfolioID:  portfolioID,
		Symbol:       NormalizeSymbol(symbol),
		Quantity:     quantity,
		AvgCost:      avgCost,
		TotalCost:    quantity.Mul(avgCost),
		FirstBuyDate: firstBuyDate,
	}
}

// ValidateTrade checks the shared constraints on a buy or sell leg.
func ValidateTrade(quantity, price, fees decimal.Decimal) error {
	if !quantity.IsPositive() {
		return ErrQuantityNotPositive
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if fees.IsNegative() {
		return ErrNegativeFees
	}
	return nil
}

// ApplyBuy folds a buy into the holding's running weighted-average cost:
// the new cost basis absorbs quantity*price plus fees, and the average
// cost is the new basis over the new quantity.
func ApplyBuy(h *models.Holding, quantity, price, fees decimal.Decimal, txDate time.Time) error {
	if err := ValidateTrade(quantity, price, fees); err != nil {
		return err
	}

	newTotalCost := h.TotalCost.Add(quantity.Mul(price)).Add(fees)
	newQuantity := h.Quantity.Add(quantity)
	if newQuantity.IsPositive() {
		h.AvgCost = newTotalCost.DivRound(newQuantity, moneyScale)
	} else {
		h.AvgCost = decimal.Zero
	}
	h.TotalCost = newTotalCost
	h.Quantity = newQuantity
	h.LastBuyDate = &txDate
	if h.FirstBuyDate == nil {
		h.FirstBuyDate = &txDate
	}
	return nil
}

// ApplySell reduces the position at its current average cost; the average
// cost itself is unchanged. Only called when SELL position updates are
// explicitly enabled.
func ApplySell(h *models.Holding, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return ErrQuantityNotPositive
	}
	if quantity.GreaterThan(h.Quantity) {
		return ErrInsufficientQuantity
	}

	h.Quantity = h.Quantity.Sub(quantity)
	if h.Quantity.IsZero() {
		h.AvgCost = decimal.Zero
		h.TotalCost = decimal.Zero
		return nil
	}
	h.TotalCost = h.Quantity.Mul(h.AvgCost)
	return nil
}

// ClassifyCap buckets a market capitalization. An absent cap yields the
// empty string.
func ClassifyCap(marketCap *int64) string {
	if marketCap == nil {
		return ""
	}
	switch {
	case *marketCap < midCapFloor:
		return models.CapSmall
	case *marketCap < largeCapFloor:
		return models.CapMid
	default:
		return models.CapLarge
	}
}

// TaxClass reports whether the position is long- or short-term as of
// today, or the empty string when the first buy date is unknown. The
// holding period is a calendar-date difference: the time of day and
// timezone of either argument must not shift the boundary.
func TaxClass(h *models.Holding, today time.Time) string {
	if h.FirstBuyDate == nil {
		return ""
	}
	if calendarDays(*h.FirstBuyDate, today) >= longTermDays {
		return models.TaxLong
	}
	return models.TaxShort
}

// calendarDays counts whole calendar days from one date to another,
// taking each value's own calendar day in its own location.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// ApplyQuote writes a fetched market price onto the holding and derives
// the dependent fields from it.
func ApplyQuote(h *models.Holding, price decimal.Decimal, marketCap *int64) {
	h.CurrentPrice = price
	h.MarketCap = marketCap
	h.CapCategory = ClassifyCap(marketCap)
	h.MarketValue = h.Quantity.Mul(price)
	h.UnrealizedPL = h.MarketValue.Sub(h.TotalCost)
}

// PortfolioSummary is the rollup over a portfolio's holdings.
type PortfolioSummary struct {
	TotalCost  decimal.Decimal `json:"total_cost"`
	TotalValue decimal.Decimal `json:"total_value"`
	TotalPL    decimal.Decimal `json:"total_pl"`
}

// Summarize sums cost and market value over the holdings; fields never
// refreshed count as zero.
func Summarize(holdings []models.Holding) PortfolioSummary {
	s := PortfolioSummary{
		TotalCost:  decimal.Zero,
		TotalValue: decimal.Zero,
	}
	for _, h := range holdings {
		s.TotalCost = s.TotalCost.Add(h.TotalCost)
		s.TotalValue = s.TotalValue.Add(h.MarketValue)
	}
	s.TotalPL = s.TotalValue.Sub(s.TotalCost)
	return s
}
