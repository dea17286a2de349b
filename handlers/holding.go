package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"portfolio-tracker/config"
	"portfolio-tracker/database"
	"portfolio-tracker/domain"
)

const dateLayout = "2006-01-02"

type HoldingInput struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgCost      decimal.Decimal `json:"avg_cost"`
	FirstBuyDate string          `json:"first_buy_date"`
}

func (in *HoldingInput) validate(c *gin.Context) (symbol string, firstBuy *time.Time, ok bool) {
	symbol = domain.NormalizeSymbol(in.Symbol)
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock symbol is required.", "status": "danger"})
		return "", nil, false
	}
	if in.Quantity.IsNegative() || in.AvgCost.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity and average cost must not be negative.", "status": "danger"})
		return "", nil, false
	}
	if s := strings.TrimSpace(in.FirstBuyDate); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid first buy date, expected YYYY-MM-DD.", "status": "danger"})
			return "", nil, false
		}
		firstBuy = &d
	}
	return symbol, firstBuy, true
}

// CreateHolding adds a holding to one of the user's portfolios.
func CreateHolding(c *gin.Context) {
	userID := currentUserID(c)
	portfolioID, ok := pathID(c)
	if !ok {
		return
	}

	p, err := database.PortfolioForUser(config.DB, userID, portfolioID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found", "status": "danger"})
		return
	}

	var input HoldingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body.", "status": "danger"})
		return
	}
	symbol, firstBuy, ok := input.validate(c)
	if !ok {
		return
	}

	h := domain.NewHolding(p.ID, symbol, input.Quantity, input.AvgCost, firstBuy)
	if err := config.DB.Create(&h).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create holding", "status": "danger"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Holding added.", "status": "success", "id": h.ID})
}

// UpdateHolding rewrites the holding's position; total cost is rederived
// from quantity and average cost. An empty first buy date clears it.
func UpdateHolding(c *gin.Context) {
	userID := currentUserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	h, err := database.HoldingForUser(config.DB, userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Holding not found", "status": "danger"})
		return
	}

	var input HoldingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body.", "status": "danger"})
		return
	}
	symbol, firstBuy, ok := input.validate(c)
	if !ok {
		return
	}

	h.Symbol = symbol
	h.Quantity = input.Quantity
	h.AvgCost = input.AvgCost
	h.TotalCost = input.Quantity.Mul(input.AvgCost)
	h.FirstBuyDate = firstBuy

	if err := config.DB.Save(h).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update holding", "status": "danger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Holding updated.", "status": "success"})
}

func DeleteHolding(c *gin.Context) {
	userID := currentUserID(c)
	id, ok := pathID(c)
	if !ok {
		return
	}

	h, err := database.HoldingForUser(config.DB, userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Holding not found", "status": "danger"})
		return
	}

	if err := database.DeleteHolding(config.DB, h); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete holding", "status": "danger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Holding deleted.", "status": "info"})
}
