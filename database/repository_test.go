package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"portfolio-tracker/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Portfolio{},
		&models.Holding{},
		&models.Transaction{},
		&models.PriceSnapshot{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedPortfolio(t *testing.T, db *gorm.DB, userID uint, name string) models.Portfolio {
	t.Helper()
	p := models.Portfolio{UserID: userID, Name: name}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedHolding(t *testing.T, db *gorm.DB, portfolioID uint, symbol string) models.Holding {
	t.Helper()
	h := models.Holding{
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Quantity:    decimal.NewFromInt(10),
		AvgCost:     decimal.NewFromInt(100),
		TotalCost:   decimal.NewFromInt(1000),
	}
	require.NoError(t, db.Create(&h).Error)
	return h
}

func TestOwnershipScoping(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	p := seedPortfolio(t, db, alice.ID, "Core")
	h := seedHolding(t, db, p.ID, "AAPL")

	got, err := PortfolioForUser(db, alice.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = PortfolioForUser(db, bob.ID, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	gotH, err := HoldingForUser(db, alice.ID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.ID, gotH.ID)

	_, err = HoldingForUser(db, bob.ID, h.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeletePortfolioCascades(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")

	p := seedPortfolio(t, db, alice.ID, "Core")
	h1 := seedHolding(t, db, p.ID, "AAPL")
	h2 := seedHolding(t, db, p.ID, "MSFT")

	other := seedPortfolio(t, db, alice.ID, "Side")
	kept := seedHolding(t, db, other.ID, "NVDA")

	for _, hid := range []uint{h1.ID, h2.ID, kept.ID} {
		tx := models.Transaction{
			HoldingID: hid,
			TxType:    models.TxBuy,
			Quantity:  decimal.NewFromInt(1),
			Price:     decimal.NewFromInt(10),
			TxDate:    time.Now(),
		}
		require.NoError(t, db.Create(&tx).Error)
	}

	require.NoError(t, DeletePortfolio(db, &p))

	var count int64
	db.Model(&models.Portfolio{}).Where("id = ?", p.ID).Count(&count)
	assert.Zero(t, count)

	db.Model(&models.Holding{}).Where("portfolio_id = ?", p.ID).Count(&count)
	assert.Zero(t, count, "holdings must not survive their portfolio")

	db.Model(&models.Transaction{}).Where("holding_id IN ?", []uint{h1.ID, h2.ID}).Count(&count)
	assert.Zero(t, count, "transactions must not survive their holding")

	// The sibling portfolio is untouched.
	db.Model(&models.Holding{}).Where("id = ?", kept.ID).Count(&count)
	assert.EqualValues(t, 1, count)
	db.Model(&models.Transaction{}).Where("holding_id = ?", kept.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeleteHoldingCascades(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	p := seedPortfolio(t, db, alice.ID, "Core")
	h := seedHolding(t, db, p.ID, "AAPL")

	tx := models.Transaction{
		HoldingID: h.ID,
		TxType:    models.TxSell,
		Quantity:  decimal.NewFromInt(2),
		Price:     decimal.NewFromInt(120),
		TxDate:    time.Now(),
	}
	require.NoError(t, db.Create(&tx).Error)

	require.NoError(t, DeleteHolding(db, &h))

	var count int64
	db.Model(&models.Holding{}).Where("id = ?", h.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Transaction{}).Where("holding_id = ?", h.ID).Count(&count)
	assert.Zero(t, count)
}

func TestSearch(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	growth := seedPortfolio(t, db, alice.ID, "AAdvantage Growth")
	seedPortfolio(t, db, alice.ID, "Bonds")
	seedHolding(t, db, growth.ID, "AAPL")
	seedHolding(t, db, growth.ID, "MSFT")

	bobs := seedPortfolio(t, db, bob.ID, "aa bob fund")
	seedHolding(t, db, bobs.ID, "AAPL")

	portfolios, holdings, err := Search(db, alice.ID, "aa")
	require.NoError(t, err)
	require.Len(t, portfolios, 1)
	assert.Equal(t, "AAdvantage Growth", portfolios[0].Name)
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, growth.ID, holdings[0].PortfolioID, "must not leak bob's holding")

	portfolios, holdings, err = Search(db, alice.ID, "")
	require.NoError(t, err)
	assert.Empty(t, portfolios)
	assert.Empty(t, holdings)
}

func TestCreateInBatches(t *testing.T) {
	db := newTestDB(t)

	snapshots := make([]models.PriceSnapshot, 25)
	for i := range snapshots {
		snapshots[i] = models.PriceSnapshot{
			Symbol:    "AAPL",
			Price:     decimal.NewFromInt(int64(100 + i)),
			Timestamp: time.Now().AddDate(0, 0, -i),
		}
	}

	require.NoError(t, CreateInBatches(db, snapshots, 10))

	var count int64
	db.Model(&models.PriceSnapshot{}).Count(&count)
	assert.EqualValues(t, 25, count)

	assert.ErrorIs(t, CreateInBatches(db, snapshots, 0), ErrInvalidBatchSize)
	assert.ErrorIs(t, CreateInBatches(db, "not a slice", 10), ErrInvalidData)
}
