package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMethodType discriminates how a payment method is displayed.
type PaymentMethodType string

const (
	PaymentMethodCard   PaymentMethodType = "card"
	PaymentMethodBank   PaymentMethodType = "bank"
	PaymentMethodMobile PaymentMethodType = "mobile"
)

// PaymentMethod is an account-level payment destination shown on
// rendered invoices. Only the default method is printed. Card numbers
// are never stored; only the last four digits are kept.
type PaymentMethod struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// UserID is the owner of this payment method
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Type      PaymentMethodType `gorm:"size:20;not null" json:"type"`
	IsDefault bool              `gorm:"default:false" json:"is_default"`

	// card
	CardLast4 string `gorm:"size:4" json:"card_last4,omitempty"`

	// bank
	BankName      string `gorm:"size:255" json:"bank_name,omitempty"`
	RegNumber     string `gorm:"size:20" json:"reg_number,omitempty"`
	AccountNumber string `gorm:"size:34" json:"account_number,omitempty"`
	IBAN          string `gorm:"size:34" json:"iban,omitempty"`

	// mobile
	MobileNumber   string `gorm:"size:50" json:"mobile_number,omitempty"`
	MobileProvider string `gorm:"size:100" json:"mobile_provider,omitempty"`
}

// GetUserID implements the Ownable interface.
func (pm *PaymentMethod) GetUserID() uint {
	return pm.UserID
}
