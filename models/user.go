package models

import (
	"gorm.io/gorm"
)

// User is the authentication anchor; every portfolio row is reachable
// only through its owner's id.
type User struct {
	gorm.Model
	Username     string `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	Portfolios []Portfolio `gorm:"foreignKey:UserID" json:"-"`
}
