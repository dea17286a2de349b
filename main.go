package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"portfolio-tracker/config"
	"portfolio-tracker/handlers"
	"portfolio-tracker/middleware"
	"portfolio-tracker/models"
	"portfolio-tracker/quotes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	config.InitDB()
	config.InitRedis()

	sqlDB, err := config.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database instance: ", err)
	}
	defer sqlDB.Close()

	if err := config.Rdb.Ping(context.Background()).Err(); err != nil {
		log.Println("Redis unreachable, running without cache:", err)
		config.Rdb = nil
	}

	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Portfolio{},
		&models.Holding{},
		&models.Transaction{},
		&models.PriceSnapshot{},
	); err != nil {
		log.Fatal("Failed to migrate models:", err)
	}

	gateway := quotes.NewAlphaVantage("", os.Getenv("ALPHA_VANTAGE_API_KEY"))
	handlers.Quotes = quotes.NewService(gateway, config.Rdb, config.DB)

	router := gin.Default()

	// Public routes
	router.POST("/register", handlers.Register)
	router.POST("/login", handlers.Login)
	router.POST("/logout", handlers.Logout)
	router.POST("/refresh-token", handlers.RefreshToken)

	// Protected routes
	auth := router.Group("/")
	auth.Use(middleware.JWTAuth())
	{
		auth.GET("/", handlers.Dashboard)
		auth.GET("/portfolios", handlers.ListPortfolios)
		auth.POST("/portfolios", handlers.CreatePortfolio)
		auth.GET("/portfolios/:id", handlers.GetPortfolio)
		auth.PUT("/portfolios/:id", handlers.UpdatePortfolio)
		auth.DELETE("/portfolios/:id", handlers.DeletePortfolio)
		auth.POST("/portfolios/:id/holdings", handlers.CreateHolding)
		auth.POST("/portfolios/:id/refresh", handlers.RefreshPortfolio)
		auth.PUT("/holdings/:id", handlers.UpdateHolding)
		auth.DELETE("/holdings/:id", handlers.DeleteHolding)
		auth.POST("/holdings/:id/transactions", handlers.AddTransaction)
		auth.GET("/search", handlers.Search)
		auth.GET("/quotes/:symbol", handlers.GetQuote)
		auth.GET("/quotes/:symbol/history", handlers.GetHistory)
	}

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if err := router.Run(addr); err != nil {
		log.Fatal(err)
	}
}
