package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"portfolio-tracker/config"
	"portfolio-tracker/database"
	"portfolio-tracker/domain"
	"portfolio-tracker/models"
	"portfolio-tracker/quotes"
)

// QuoteService is what the market handlers need from the quote layer;
// tests substitute a fake.
type QuoteService interface {
	Quote(ctx context.Context, symbol string) (quotes.Quote, error)
	History(ctx context.Context, symbol string) ([]quotes.DailyPrice, error)
}

// Quotes is the wired quote service; main assigns it at startup.
var Quotes QuoteService

// RefreshPortfolio pulls a quote for every holding and persists the
// refreshed valuations in one transaction. Symbols the gateway cannot
// price are left untouched and reported back.
func RefreshPortfolio(c *gin.Context) {
	userID := currentUserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	p, err := database.PortfolioForUser(config.DB, userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found", "status": "danger"})
		return
	}

	holdings, err := database.HoldingsForPortfolio(config.DB, p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch holdings", "status": "danger"})
		return
	}

	ctx := c.Request.Context()
	refreshed := make([]*models.Holding, 0, len(holdings))
	var failed []string

	for i := range holdings {
		h := &holdings[i]
		q, err := Quotes.Quote(ctx, h.Symbol)
		if err != nil || q.Price == nil {
			failed = append(failed, h.Symbol)
			continue
		}
		domain.ApplyQuote(h, *q.Price, q.MarketCap)
		refreshed = append(refreshed, h)
	}

	if len(refreshed) > 0 {
		err = config.DB.Transaction(func(tx *gorm.DB) error {
			for _, h := range refreshed {
				if err := tx.Save(h).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist refreshed prices", "status": "danger"})
			return
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"message":   fmt.Sprintf("Prices updated. No quote available for: %s.", strings.Join(failed, ", ")),
			"status":    "warning",
			"refreshed": len(refreshed),
			"failed":    failed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Prices updated.",
		"status":    "success",
		"refreshed": len(refreshed),
	})
}

// GetQuote returns the current quote for a symbol.
func GetQuote(c *gin.Context) {
	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock symbol is required.", "status": "danger"})
		return
	}

	q, err := Quotes.Quote(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch stock data", "status": "danger"})
		return
	}
	if q.Price == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No quote available for " + symbol, "status": "warning"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":       symbol,
		"price":        q.Price,
		"market_cap":   q.MarketCap,
		"cap_category": domain.ClassifyCap(q.MarketCap),
	})
}

// GetHistory returns the daily closing-price history for a symbol.
func GetHistory(c *gin.Context) {
	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock symbol is required.", "status": "danger"})
		return
	}

	prices, err := Quotes.History(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch historical data", "status": "danger"})
		return
	}
	if len(prices) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Historical data not found", "status": "warning"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "prices": prices})
}
