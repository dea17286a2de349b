package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceSnapshot keeps a history of every quote fetched from the gateway,
// one row per symbol and observation time.
type PriceSnapshot struct {
	gorm.Model
	Symbol    string          `gorm:"size:10;index" json:"symbol"`
	Price     decimal.Decimal `gorm:"type:numeric(18,4)" json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}
