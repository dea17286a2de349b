package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"portfolio-tracker/auth"
	"portfolio-tracker/config"
	"portfolio-tracker/models"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// Hasher is the injected credential-store capability; tests swap in a fake.
var Hasher auth.PasswordHasher = auth.BcryptHasher{}

type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required.", "status": "danger"})
		return
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required.", "status": "danger"})
		return
	}

	var existing models.User
	err := config.DB.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists.", "status": "danger"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "status": "danger"})
		return
	}

	hashed, err := Hasher.Hash(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing password", "status": "danger"})
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		// The pre-check races with concurrent registrations; the unique
		// index has the final word.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists.", "status": "danger"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user", "status": "danger"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful. Please log in.", "status": "success"})
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required.", "status": "danger"})
		return
	}

	var user models.User
	if err := config.DB.Where("username = ?", strings.TrimSpace(input.Username)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password.", "status": "danger"})
		return
	}
	if !Hasher.Verify(input.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password.", "status": "danger"})
		return
	}

	accessToken, err := signToken(user.ID, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token", "status": "danger"})
		return
	}
	refreshToken, err := signToken(user.ID, refreshTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating refresh token", "status": "danger"})
		return
	}

	if config.Rdb != nil {
		if err := config.Rdb.Set(c.Request.Context(), refreshToken, user.ID, refreshTokenTTL).Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error storing refresh token", "status": "danger"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Logged in successfully.",
		"status":        "success",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func Logout(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err == nil && config.Rdb != nil {
		config.Rdb.Del(c.Request.Context(), input.RefreshToken)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out.", "status": "info"})
}

// RefreshToken exchanges a stored refresh token for a fresh access token.
func RefreshToken(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token is required.", "status": "danger"})
		return
	}
	if config.Rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Token refresh is not available.", "status": "danger"})
		return
	}

	raw, err := config.Rdb.Get(c.Request.Context(), input.RefreshToken).Result()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token.", "status": "warning"})
		return
	}
	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token.", "status": "warning"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, uint(userID)).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Your session has expired. Please log in again.", "status": "warning"})
		return
	}

	accessToken, err := signToken(user.ID, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token", "status": "danger"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "status": "success"})
}

func signToken(userID uint, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
