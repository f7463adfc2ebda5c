package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is an invoice recipient. Its default fields (currency, tax
// rate, payment terms) are copied onto new invoices at creation time;
// the contact fields are read live when a document is rendered.
// Implements the Ownable interface for ownership-based authorization.
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// UserID is the owner of this customer (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Address string `gorm:"size:500" json:"address,omitempty"`

	// Defaults applied to new invoices for this customer
	Currency        string  `gorm:"size:3;default:'USD'" json:"currency"`
	DefaultTaxRate  float64 `gorm:"type:decimal(5,2);default:0" json:"default_tax_rate"`
	PaymentTermDays int     `gorm:"default:30" json:"payment_term_days"`
}

// GetUserID implements the Ownable interface for authorization.
func (c *Customer) GetUserID() uint {
	return c.UserID
}
