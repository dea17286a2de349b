package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-tracker/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewHolding(t *testing.T) {
	h := NewHolding(1, "  aapl ", dec("10"), dec("100"), nil)

	assert.Equal(t, "AAPL", h.Symbol)
	assert.True(t, h.TotalCost.Equal(dec("1000")), "total cost %s", h.TotalCost)
	assert.Nil(t, h.FirstBuyDate)
}

func TestApplyBuyWeightedAverage(t *testing.T) {
	h := NewHolding(1, "AAPL", dec("10"), dec("100"), nil)

	err := ApplyBuy(&h, dec("5"), dec("120"), dec("1"), date("2026-01-15"))
	require.NoError(t, err)

	assert.True(t, h.Quantity.Equal(dec("15")), "quantity %s", h.Quantity)
	assert.True(t, h.TotalCost.Equal(dec("1601")), "total cost %s", h.TotalCost)
	assert.True(t, h.AvgCost.Equal(dec("106.7333")), "avg cost %s", h.AvgCost)
}

func TestApplyBuySequenceAccumulatesCost(t *testing.T) {
	h := models.Holding{
		Quantity:  decimal.Zero,
		AvgCost:   decimal.Zero,
		TotalCost: decimal.Zero,
	}

	buys := []struct {
		qty, price, fees string
	}{
		{"3", "50.25", "0.5"},
		{"7", "48.1", "0"},
		{"0.5", "52", "1.25"},
	}

	want := decimal.Zero
	for _, b := range buys {
		require.NoError(t, ApplyBuy(&h, dec(b.qty), dec(b.price), dec(b.fees), date("2026-03-01")))
		want = want.Add(dec(b.qty).Mul(dec(b.price))).Add(dec(b.fees))

		assert.True(t, h.TotalCost.Equal(want), "total cost %s, want %s", h.TotalCost, want)
		assert.True(t, h.AvgCost.Equal(h.TotalCost.DivRound(h.Quantity, 4)),
			"avg cost %s not basis/quantity", h.AvgCost)
	}
	assert.True(t, h.Quantity.Equal(dec("10.5")))
}

func TestApplyBuyValidation(t *testing.T) {
	h := NewHolding(1, "AAPL", dec("10"), dec("100"), nil)

	assert.ErrorIs(t, ApplyBuy(&h, dec("0"), dec("100"), dec("0"), date("2026-01-01")), ErrQuantityNotPositive)
	assert.ErrorIs(t, ApplyBuy(&h, dec("-1"), dec("100"), dec("0"), date("2026-01-01")), ErrQuantityNotPositive)
	assert.ErrorIs(t, ApplyBuy(&h, dec("1"), dec("-0.01"), dec("0"), date("2026-01-01")), ErrNegativePrice)
	assert.ErrorIs(t, ApplyBuy(&h, dec("1"), dec("100"), dec("-1"), date("2026-01-01")), ErrNegativeFees)

	// Rejected buys leave the holding untouched.
	assert.True(t, h.Quantity.Equal(dec("10")))
	assert.True(t, h.TotalCost.Equal(dec("1000")))
}

func TestApplyBuyDates(t *testing.T) {
	h := NewHolding(1, "AAPL", dec("0"), dec("0"), nil)

	first := date("2025-06-01")
	require.NoError(t, ApplyBuy(&h, dec("1"), dec("10"), dec("0"), first))
	require.NotNil(t, h.FirstBuyDate)
	require.NotNil(t, h.LastBuyDate)
	assert.True(t, h.FirstBuyDate.Equal(first))

	second := date("2025-07-01")
	require.NoError(t, ApplyBuy(&h, dec("1"), dec("10"), dec("0"), second))
	assert.True(t, h.FirstBuyDate.Equal(first), "first buy date must be set once")
	assert.True(t, h.LastBuyDate.Equal(second))
}

func TestApplySell(t *testing.T) {
	h := NewHolding(1, "AAPL", dec("15"), dec("106.7333"), nil)

	require.NoError(t, ApplySell(&h, dec("5")))
	assert.True(t, h.Quantity.Equal(dec("10")))
	assert.True(t, h.AvgCost.Equal(dec("106.7333")), "avg cost must not change on sell")
	assert.True(t, h.TotalCost.Equal(dec("1067.333")), "total cost %s", h.TotalCost)
}

func TestApplySellToZeroClearsBasis(t *testing.T) {
	h := NewHolding(1, "AAPL", dec("4"), dec("25"), nil)

	require.NoError(t, ApplySell(&h, dec("4")))
	assert.True(t, h.Quantity.IsZero())
	assert.True(t, h.AvgCost.IsZero())
	assert.True(t, h.TotalCost.IsZero())
}

func TestApplySellValidation(t *testing.T) {
	h := NewHolding(1, "AAPL", dec("4"), dec("25"), nil)

	assert.ErrorIs(t, ApplySell(&h, dec("0")), ErrQuantityNotPositive)
	assert.ErrorIs(t, ApplySell(&h, dec("4.0001")), ErrInsufficientQuantity)
	assert.True(t, h.Quantity.Equal(dec("4")))
}

func TestClassifyCap(t *testing.T) {
	mcap := func(v int64) *int64 { return &v }

	assert.Equal(t, "", ClassifyCap(nil))
	assert.Equal(t, models.CapSmall, ClassifyCap(mcap(1_999_999_999)))
	assert.Equal(t, models.CapMid, ClassifyCap(mcap(2_000_000_000)))
	assert.Equal(t, models.CapMid, ClassifyCap(mcap(9_999_999_999)))
	assert.Equal(t, models.CapLarge, ClassifyCap(mcap(10_000_000_000)))
}

func TestTaxClass(t *testing.T) {
	today := date("2026-08-31")

	h := models.Holding{}
	assert.Equal(t, "", TaxClass(&h, today))

	at := func(s string) *time.Time {
		d := date(s)
		return &d
	}

	h.FirstBuyDate = at("2025-08-31") // exactly 365 days
	assert.Equal(t, models.TaxLong, TaxClass(&h, today))

	h.FirstBuyDate = at("2025-09-01") // 364 days
	assert.Equal(t, models.TaxShort, TaxClass(&h, today))
}

func TestTaxClassIgnoresTimeOfDayAndZone(t *testing.T) {
	firstBuy := date("2025-08-31") // stored dates come back as midnight UTC
	h := models.Holding{FirstBuyDate: &firstBuy}

	// Exactly 365 calendar days later, observed on a clock east of UTC:
	// the instant difference is under 365*24h but the calendar says LONG.
	sydney := time.FixedZone("AEST", 10*60*60)
	today := time.Date(2026, 8, 31, 8, 0, 0, 0, sydney)
	assert.Equal(t, models.TaxLong, TaxClass(&h, today),
		"365 calendar days after first buy must be LONG")

	// Late in the evening of day 364 it is still SHORT.
	today = time.Date(2026, 8, 30, 23, 59, 0, 0, sydney)
	assert.Equal(t, models.TaxShort, TaxClass(&h, today))
}

func TestApplyQuote(t *testing.T) {
	h := NewHolding(1, "AAPL", dec("10"), dec("100"), nil)

	mcap := int64(3_000_000_000_000)
	ApplyQuote(&h, dec("150.5"), &mcap)

	assert.True(t, h.CurrentPrice.Equal(dec("150.5")))
	assert.True(t, h.MarketValue.Equal(dec("1505")))
	assert.True(t, h.UnrealizedPL.Equal(dec("505")))
	assert.Equal(t, models.CapLarge, h.CapCategory)

	ApplyQuote(&h, dec("80"), nil)
	assert.Nil(t, h.MarketCap)
	assert.Equal(t, "", h.CapCategory)
	assert.True(t, h.UnrealizedPL.Equal(dec("-200")))
}

func TestSummarize(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.TotalCost.IsZero())
	assert.True(t, s.TotalValue.IsZero())
	assert.True(t, s.TotalPL.IsZero())

	holdings := []models.Holding{
		{TotalCost: dec("1000"), MarketValue: dec("1200")},
		{TotalCost: dec("500")}, // never refreshed, market value counts as 0
	}
	s = Summarize(holdings)
	assert.True(t, s.TotalCost.Equal(dec("1500")))
	assert.True(t, s.TotalValue.Equal(dec("1200")))
	assert.True(t, s.TotalPL.Equal(dec("-300")))
}
