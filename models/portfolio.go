package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TxBuy  = "BUY"
	TxSell = "SELL"
)

const (
	CapSmall = "SMALL"
	CapMid   = "MID"
	CapLarge = "LARGE"
)

const (
	TaxLong  = "LONG"
	TaxShort = "SHORT"
)

type Portfolio struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Holdings []Holding `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"holdings,omitempty"`
}

// Holding aggregates a position in one symbol. TotalCost always equals the
// accumulated buy cost basis; MarketValue and UnrealizedPL are only
// meaningful after a price refresh.
type Holding struct {
	gorm.Model
	PortfolioID uint `gorm:"index;not null" json:"portfolio_id"`

	Symbol    string          `gorm:"size:10;index;not null" json:"symbol"`
	Quantity  decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	AvgCost   decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"avg_cost"`
	TotalCost decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"total_cost"`

	CurrentPrice decimal.Decimal `gorm:"type:numeric(18,4);default:0" json:"current_price"`
	MarketValue  decimal.Decimal `gorm:"type:numeric(18,4);default:0" json:"market_value"`
	UnrealizedPL decimal.Decimal `gorm:"type:numeric(18,4);default:0" json:"unrealized_pl"`

	MarketCap   *int64 `json:"market_cap,omitempty"`
	CapCategory string `gorm:"size:8" json:"cap_category,omitempty"`

	FirstBuyDate *time.Time `gorm:"type:date" json:"first_buy_date,omitempty"`
	LastBuyDate  *time.Time `gorm:"type:date" json:"last_buy_date,omitempty"`

	Transactions []Transaction `gorm:"foreignKey:HoldingID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}

// Transaction is an append-only ledger entry. Only BUY entries mutate the
// parent holding's aggregates (SELL position reduction is opt-in, see
// config.SellUpdatesPosition).
type Transaction struct {
	gorm.Model
	HoldingID uint `gorm:"index;not null" json:"holding_id"`

	TxType   string          `gorm:"size:4;not null" json:"tx_type"`
	Quantity decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"price"`
	TxDate   time.Time       `gorm:"type:date;not null" json:"tx_date"`
	Fees     decimal.Decimal `gorm:"type:numeric(18,4);default:0" json:"fees"`
}
