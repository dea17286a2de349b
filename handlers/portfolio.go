package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-tracker/config"
	"portfolio-tracker/database"
	"portfolio-tracker/domain"
	"portfolio-tracker/models"
)

func currentUserID(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id.", "status": "danger"})
		return 0, false
	}
	return uint(id), true
}

// holdingView decorates a holding with its derived tax classification.
type holdingView struct {
	models.Holding
	TaxClass string `json:"tax_class,omitempty"`
}

func viewHoldings(holdings []models.Holding) []holdingView {
	now := time.Now()
	views := make([]holdingView, len(holdings))
	for i, h := range holdings {
		views[i] = holdingView{Holding: h, TaxClass: domain.TaxClass(&h, now)}
	}
	return views
}

// Dashboard lists the user's portfolios with their cost/value/PL rollups.
func Dashboard(c *gin.Context) {
	userID := currentUserID(c)

	var portfolios []models.Portfolio
	if err := config.DB.Where("user_id = ?", userID).Find(&portfolios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch portfolios", "status": "danger"})
		return
	}

	summaries := make([]gin.H, 0, len(portfolios))
	for _, p := range portfolios {
		holdings, err := database.HoldingsForPortfolio(config.DB, p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch holdings", "status": "danger"})
			return
		}
		summary := domain.Summarize(holdings)
		summaries = append(summaries, gin.H{
			"portfolio":   p,
			"total_cost":  summary.TotalCost,
			"total_value": summary.TotalValue,
			"total_pl":    summary.TotalPL,
		})
	}

	c.JSON(http.StatusOK, gin.H{"portfolios": summaries})
}

func ListPortfolios(c *gin.Context) {
	userID := currentUserID(c)

	var portfolios []models.Portfolio
	if err := config.DB.Where("user_id = ?", userID).Find(&portfolios).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch portfolios", "status": "danger"})
		return
	}
	c.JSON(http.StatusOK, portfolios)
}

type PortfolioInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func CreatePortfolio(c *gin.Context) {
	userID := currentUserID(c)

	var input PortfolioInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body.", "status": "danger"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Portfolio name is required.", "status": "danger"})
		return
	}

	p := models.Portfolio{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := config.DB.Create(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create portfolio", "status": "danger"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Portfolio created.", "status": "success", "id": p.ID})
}

// GetPortfolio returns the portfolio with its holdings, split into
// winners and losers by unrealized P/L.
func GetPortfolio(c *gin.Context) {
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

	views := viewHoldings(holdings)
	makingMoney := []holdingView{}
	losingMoney := []holdingView{}
	for _, v := range views {
		if v.UnrealizedPL.IsPositive() {
			makingMoney = append(makingMoney, v)
		} else {
			losingMoney = append(losingMoney, v)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"portfolio":    p,
		"holdings":     views,
		"summary":      domain.Summarize(holdings),
		"making_money": makingMoney,
		"losing_money": losingMoney,
	})
}

func UpdatePortfolio(c *gin.Context) {
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

	var input PortfolioInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body.", "status": "danger"})
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Portfolio name is required.", "status": "danger"})
		return
	}

	p.Name = name
	p.Description = strings.TrimSpace(input.Description)
	if err := config.DB.Save(p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update portfolio", "status": "danger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Portfolio updated.", "status": "success"})
}

func DeletePortfolio(c *gin.Context) {
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

	if err := database.DeletePortfolio(config.DB, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete portfolio", "status": "danger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Portfolio deleted.", "status": "info"})
}
