package models

import (
	"time"

	"gorm.io/gorm"
)

// CompanyProfile holds a user's company identity defaults, exactly one
// row per user. Invoices without a template (or with a partial one)
// fall back to these values. The color columns are legacy: they predate
// templates and only apply when the invoice's template defines no colors.
type CompanyProfile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// UserID is the owner of this profile
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Company identity
	CompanyName     string `gorm:"size:255" json:"company_name,omitempty"`
	CompanyAddress  string `gorm:"size:500" json:"company_address,omitempty"`
	CompanyPhone    string `gorm:"size:50" json:"company_phone,omitempty"`
	CompanyEmail    string `gorm:"size:255" json:"company_email,omitempty"`
	CompanyWebsite  string `gorm:"size:255" json:"company_website,omitempty"`
	TaxID           string `gorm:"size:50" json:"tax_id,omitempty"`
	BusinessLicense string `gorm:"size:100" json:"business_license,omitempty"`
	LogoURL         string `gorm:"size:500" json:"logo_url,omitempty"`

	// Legacy colors, superseded by template colors when a template is set
	PrimaryColor   string `gorm:"size:7" json:"primary_color,omitempty"`
	SecondaryColor string `gorm:"size:7" json:"secondary_color,omitempty"`
}

// GetUserID implements the Ownable interface.
func (p *CompanyProfile) GetUserID() uint {
	return p.UserID
}

// Source exposes the profile as the field map the presentation resolver
// consumes. Keys use the column spelling; nil receiver yields nil.
func (p *CompanyProfile) Source() map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"company_name":     p.CompanyName,
		"company_address":  p.CompanyAddress,
		"company_phone":    p.CompanyPhone,
		"company_email":    p.CompanyEmail,
		"company_website":  p.CompanyWebsite,
		"tax_id":           p.TaxID,
		"business_license": p.BusinessLicense,
		"logo_url":         p.LogoURL,
		"primary_color":    p.PrimaryColor,
		"secondary_color":  p.SecondaryColor,
	}
}
