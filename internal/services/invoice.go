package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/StediMove/Invoice-2.0-sub000/internal/i18n"
	"github.com/StediMove/Invoice-2.0-sub000/internal/models"
	"github.com/StediMove/Invoice-2.0-sub000/internal/render"
)

// ErrInvalidTransition is returned for a disallowed status change.
var ErrInvalidTransition = errors.New("invalid status transition")

// InvoiceService encapsulates invoice business logic: numbering,
// customer-default application, totals upkeep, status transitions, and
// assembling the inputs both renderers share.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// RenderItems maps stored line items to the rendering core's item type,
// in stored order.
func RenderItems(items []models.LineItem) []render.Item {
	out := make([]render.Item, 0, len(items))
	for _, it := range items {
		out = append(out, render.Item{
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		})
	}
	return out
}

// Recompute refreshes the invoice's stored totals from its items. The
// stored columns are display mirrors; the calculator output is always
// authoritative.
func (s *InvoiceService) Recompute(inv *models.Invoice) render.Totals {
	t := render.ComputeTotals(RenderItems(inv.Items), inv.TaxRate)
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.Total = t.Total
	return t
}

// Create persists a new invoice with its items in one transaction,
// assigning a number, a share token, and the customer's defaults for
// any field the caller left unset.
func (s *InvoiceService) Create(inv *models.Invoice, customer *models.Customer) error {
	if inv.Currency == "" {
		inv.Currency = customer.Currency
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = time.Now().Truncate(24 * time.Hour)
	}
	if inv.DueDate.IsZero() {
		inv.DueDate = inv.IssueDate.AddDate(0, 0, customer.PaymentTermDays)
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusDraft
	}
	inv.ShareToken = uuid.NewString()

	for i := range inv.Items {
		inv.Items[i].Normalize()
		inv.Items[i].Position = i
	}
	s.Recompute(inv)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if inv.Number == "" {
			number, err := models.GenerateInvoiceNumber(tx, inv.UserID, inv.IssueDate.Year())
			if err != nil {
				return err
			}
			inv.Number = number
		}
		return tx.Create(inv).Error
	})
}

// UpdateItems replaces the invoice's items and refreshes totals.
func (s *InvoiceService) UpdateItems(inv *models.Invoice, items []models.LineItem) error {
	for i := range items {
		items[i].Normalize()
		items[i].Position = i
		items[i].InvoiceID = inv.ID
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		inv.Items = items
		s.Recompute(inv)
		return tx.Model(inv).Select("subtotal", "tax_amount", "total").Updates(inv).Error
	})
}

// Transition moves the invoice to a new lifecycle status, enforcing the
// allowed transition graph.
func (s *InvoiceService) Transition(inv *models.Invoice, to models.InvoiceStatus) error {
	if !models.CanTransition(inv.Status, to) {
		return ErrInvalidTransition
	}
	if err := s.db.Model(inv).Update("status", to).Error; err != nil {
		return err
	}
	inv.Status = to
	return nil
}

// ContentLanguage infers the document language from the invoice's own
// free text. This is deliberately decoupled from the user's stored UI
// language: content renders in the language it was written in.
func ContentLanguage(inv *models.Invoice) string {
	parts := []string{inv.Title, inv.Description}
	if len(inv.Items) > 0 {
		parts = append(parts, inv.Items[0].Description)
	}
	return i18n.DetectLanguage(strings.Join(parts, " "))
}

// RenderInput assembles the single (presentation, document) pair both
// the PDF generator and the on-screen preview consume. Template and
// profile may be nil; the resolver handles absence.
func (s *InvoiceService) RenderInput(inv *models.Invoice, profile *models.CompanyProfile, pm *models.PaymentMethod) (render.Presentation, render.Document) {
	presentation := render.Resolve(inv.Template.Payload(), profile.Source())

	items := RenderItems(inv.Items)
	totals := render.ComputeTotals(items, inv.TaxRate)

	doc := render.Document{
		Number:           inv.Number,
		Title:            inv.Title,
		Description:      inv.Description,
		Currency:         inv.Currency,
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		PaymentTermsDays: inv.PaymentTermDays(),
		TaxRate:          inv.TaxRate,
		Items:            items,
		Totals:           &totals,
		Notes:            inv.Notes,
		Lang:             ContentLanguage(inv),
	}
	if inv.Customer != nil {
		doc.Customer = render.Party{
			Name:    inv.Customer.Name,
			Address: inv.Customer.Address,
			Email:   inv.Customer.Email,
			Phone:   inv.Customer.Phone,
		}
	}
	if pm != nil {
		doc.Payment = &render.PaymentInfo{
			Type:           string(pm.Type),
			CardLast4:      pm.CardLast4,
			BankName:       pm.BankName,
			RegNumber:      pm.RegNumber,
			AccountNumber:  pm.AccountNumber,
			IBAN:           pm.IBAN,
			MobileNumber:   pm.MobileNumber,
			MobileProvider: pm.MobileProvider,
		}
	}
	return presentation, doc
}

// DefaultPaymentMethod loads the user's default payment method, or the
// most recent one when none is flagged. Nil when the user has none.
func (s *InvoiceService) DefaultPaymentMethod(userID uint) *models.PaymentMethod {
	var pm models.PaymentMethod
	err := s.db.Where("user_id = ?", userID).
		Order("is_default desc, id desc").
		First(&pm).Error
	if err != nil {
		return nil
	}
	return &pm
}

// MarkOverdue flips sent invoices past their due date to overdue.
// Returns the number of invoices updated.
func (s *InvoiceService) MarkOverdue(now time.Time) (int64, error) {
	res := s.db.Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", models.InvoiceStatusSent, now).
		Update("status", models.InvoiceStatusOverdue)
	return res.RowsAffected, res.Error
}
