package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-tracker/config"
	"portfolio-tracker/database"
)

// Search matches the query against the user's own portfolio names and
// holding symbols, case-insensitively. An empty query returns empty sets.
func Search(c *gin.Context) {
	userID := currentUserID(c)
	query := strings.TrimSpace(c.Query("q"))

	portfolios, holdings, err := database.Search(config.DB, userID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed", "status": "danger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      query,
		"portfolios": portfolios,
		"holdings":   holdings,
	})
}
