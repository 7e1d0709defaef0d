// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	FullName     string     `json:"full_name" gorm:"size:255"`
	MarketName   string     `json:"market_name,omitempty" gorm:"size:255"` // officers are attached to a market
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Reports   []MarketPriceReport `json:"reports,omitempty" gorm:"foreignKey:ReporterID"`
	Overrides []PriceOverride     `json:"overrides,omitempty" gorm:"foreignKey:RequesterID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
