package database

import (
	"strings"

	"gorm.io/gorm"

	"portfolio-tracker/models"
)

// All lookups here are scoped by the acting user's id. A row that exists
// but belongs to someone else is indistinguishable from a missing row:
// both come back as gorm.ErrRecordNotFound.

func PortfolioForUser(db *gorm.DB, userID, portfolioID uint) (*models.Portfolio, error) {
	var p models.Portfolio
	err := db.Where("id = ? AND user_id = ?", portfolioID, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func HoldingForUser(db *gorm.DB, userID, holdingID uint) (*models.Holding, error) {
	var h models.Holding
	err := db.
		Select("holdings.*").
		Joins("JOIN portfolios ON portfolios.id = holdings.portfolio_id").
		Where("holdings.id = ? AND portfolios.user_id = ? AND portfolios.deleted_at IS NULL", holdingID, userID).
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func HoldingsForPortfolio(db *gorm.DB, portfolioID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	err := db.Where("portfolio_id = ?", portfolioID).Order("symbol").Find(&holdings).Error
	return holdings, err
}

// DeletePortfolio removes the portfolio and everything under it, leaf
// first: transactions, then holdings, then the portfolio row.
func DeletePortfolio(db *gorm.DB, p *models.Portfolio) error {
	return db.Transaction(func(tx *gorm.DB) error {
		holdingIDs := tx.Model(&models.Holding{}).Select("id").Where("portfolio_id = ?", p.ID)
		if err := tx.Where("holding_id IN (?)", holdingIDs).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", p.ID).Delete(&models.Holding{}).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
}

// DeleteHolding removes the holding and its transaction ledger.
func DeleteHolding(db *gorm.DB, h *models.Holding) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("holding_id = ?", h.ID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(h).Error
	})
}

// Search matches the query, case-insensitively, against the user's own
// portfolio names and holding symbols. An empty query matches nothing.
func Search(db *gorm.DB, userID uint, query string) ([]models.Portfolio, []models.Holding, error) {
	portfolios := []models.Portfolio{}
	holdings := []models.Holding{}

	query = strings.TrimSpace(query)
	if query == "" {
		return portfolios, holdings, nil
	}
	pattern := "%" + strings.ToLower(query) + "%"

	err := db.
		Where("user_id = ? AND LOWER(name) LIKE ?", userID, pattern).
		Find(&portfolios).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.
		Select("holdings.*").
		Joins("JOIN portfolios ON portfolios.id = holdings.portfolio_id").
		Where("portfolios.user_id = ? AND portfolios.deleted_at IS NULL AND LOWER(holdings.symbol) LIKE ?", userID, pattern).
		Find(&holdings).Error
	if err != nil {
		return nil, nil, err
	}

	return portfolios, holdings, nil
}
