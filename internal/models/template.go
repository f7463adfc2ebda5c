package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceTemplate is a named, reusable bundle of visual and company
// identity overrides. Many invoices may reference one template. The
// payload keeps its stored JSON spelling (templates created by older
// clients use snake_case keys); the presentation resolver's alias table
// absorbs the difference.
type InvoiceTemplate struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// UserID is the owner of this template (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name      string `gorm:"size:255;not null" json:"name"`
	IsDefault bool   `gorm:"default:false" json:"is_default"`

	// Data holds the template payload: colors (primary/secondary/accent/
	// text hex strings), fontFamily (sans|serif|mono), and company
	// identity overrides including logoUrl.
	Data datatypes.JSON `gorm:"type:json" json:"data"`
}

// GetUserID implements the Ownable interface for authorization.
func (t *InvoiceTemplate) GetUserID() uint {
	return t.UserID
}

// Payload decodes the stored template data. A nil template or malformed
// payload yields nil, which the resolver treats as an absent source.
func (t *InvoiceTemplate) Payload() map[string]any {
	if t == nil || len(t.Data) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(t.Data, &m); err != nil {
		return nil
	}
	return m
}
