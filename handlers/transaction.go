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
	"portfolio-tracker/models"
)

type TransactionInput struct {
	TxType   string          `json:"tx_type" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	TxDate   string          `json:"tx_date"`
	Fees     decimal.Decimal `json:"fees"`
}

// AddTransaction appends a ledger entry to a holding. BUY entries fold
// into the holding's weighted-average cost; SELL entries only touch the
// position when SELL_UPDATES_POSITION is enabled.
func AddTransaction(c *gin.Context) {
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

	var input TransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body.", "status": "danger"})
		return
	}

	txType := strings.ToUpper(strings.TrimSpace(input.TxType))
	if txType != models.TxBuy && txType != models.TxSell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction type must be BUY or SELL.", "status": "danger"})
		return
	}
	if err := domain.ValidateTrade(input.Quantity, input.Price, input.Fees); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "status": "danger"})
		return
	}

	txDate := time.Now()
	if s := strings.TrimSpace(input.TxDate); s != "" {
		txDate, err = time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction date, expected YYYY-MM-DD.", "status": "danger"})
			return
		}
	}

	switch txType {
	case models.TxBuy:
		if err := domain.ApplyBuy(h, input.Quantity, input.Price, input.Fees, txDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "status": "danger"})
			return
		}
	case models.TxSell:
		if config.SellUpdatesPosition() {
			if err := domain.ApplySell(h, input.Quantity); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "status": "danger"})
				return
			}
		}
	}

	record := models.Transaction{
		HoldingID: h.ID,
		TxType:    txType,
		Quantity:  input.Quantity,
		Price:     input.Price,
		TxDate:    txDate,
		Fees:      input.Fees,
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction", "status": "danger"})
		return
	}
	if err := tx.Save(h).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update holding", "status": "danger"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction", "status": "danger"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Transaction added.", "status": "success", "id": record.ID})
}
