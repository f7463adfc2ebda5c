package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// InvoiceStatus represents the lifecycle status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// transitions lists the allowed status moves.
var transitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:   {InvoiceStatusSent, InvoiceStatusCancelled},
	InvoiceStatusSent:    {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusCancelled},
}

// CanTransition reports whether from may become to.
func CanTransition(from, to InvoiceStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Invoice represents a customer invoice.
// Implements the Ownable interface for ownership-based authorization.
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// UserID is the owner of this invoice (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Invoice identification
	Number string `gorm:"size:50;uniqueIndex" json:"number"`
	// ShareToken enables unauthenticated PDF download links.
	ShareToken string `gorm:"size:36;uniqueIndex" json:"share_token,omitempty"`

	// Customer and optional visual template
	CustomerID uint             `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TemplateID *uint            `gorm:"index" json:"template_id,omitempty"`
	Template   *InvoiceTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`

	// Content
	Currency    string `gorm:"size:3;default:'USD'" json:"currency"`
	Title       string `gorm:"size:255" json:"title,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`

	// Tax rate in percent (0-100)
	TaxRate float64 `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`

	// Stored totals mirror the calculator output; they are recomputed on
	// every write and never trusted over a fresh recomputation.
	Subtotal  float64 `gorm:"type:decimal(12,2);default:0" json:"subtotal"`
	TaxAmount float64 `gorm:"type:decimal(12,2);default:0" json:"tax_amount"`
	Total     float64 `gorm:"type:decimal(12,2);default:0" json:"total"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	Status InvoiceStatus `gorm:"size:20;default:'draft'" json:"status"`

	// Invoice items
	Items []LineItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// IsDraft returns true if the invoice is in draft status.
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// CanEdit returns true if the invoice content can still be edited.
func (i *Invoice) CanEdit() bool {
	return i.Status == InvoiceStatusDraft
}

// PaymentTermDays derives the payment term length shown on documents.
func (i *Invoice) PaymentTermDays() int {
	d := int(i.DueDate.Sub(i.IssueDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// LineItem represents one billable row on an invoice. Amount always
// equals Quantity*Rate unless explicitly overridden at input time; the
// stored amount is what totals sum.
type LineItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	Description string  `gorm:"size:500;not null" json:"description"`
	Quantity    float64 `gorm:"type:decimal(10,3);not null;default:1" json:"quantity"`
	Rate        float64 `gorm:"type:decimal(12,2);not null" json:"rate"`
	Amount      float64 `gorm:"type:decimal(12,2);not null" json:"amount"`

	// Position for ordering
	Position int `gorm:"default:0" json:"position"`
}

// Normalize fills Amount from Quantity*Rate when it was not supplied.
func (li *LineItem) Normalize() {
	if li.Amount == 0 && li.Quantity != 0 && li.Rate != 0 {
		li.Amount = li.Quantity * li.Rate
	}
}

// GenerateInvoiceNumber generates a unique invoice number.
// Format: INV-YYYY-NNNN (e.g., INV-2026-0001)
func GenerateInvoiceNumber(db *gorm.DB, userID uint, year int) (string, error) {
	var count int64
	err := db.Model(&Invoice{}).Unscoped().
		Where("user_id = ? AND number LIKE ?", userID, fmt.Sprintf("INV-%d-%%", year)).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%04d", year, count+1), nil
}
