package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/StediMove/Invoice-2.0-sub000/internal/auth"
	"github.com/StediMove/Invoice-2.0-sub000/internal/httpx"
	"github.com/StediMove/Invoice-2.0-sub000/internal/models"
	"github.com/StediMove/Invoice-2.0-sub000/internal/pdf"
	"github.com/StediMove/Invoice-2.0-sub000/internal/preview"
	"github.com/StediMove/Invoice-2.0-sub000/internal/render"
	"github.com/StediMove/Invoice-2.0-sub000/internal/services"
	"github.com/StediMove/Invoice-2.0-sub000/internal/validation"
)

// InvoiceHandler serves invoice CRUD plus the two document surfaces
// (PDF and HTML preview) built from the same instruction stream.
type InvoiceHandler struct {
	DB     *gorm.DB
	Svc    *services.InvoiceService
	Drafts services.DraftService
	Log    zerolog.Logger

	pdfr *pdf.Renderer
	prev *preview.Renderer
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService, drafts services.DraftService, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		DB:     db,
		Svc:    svc,
		Drafts: drafts,
		Log:    log,
		pdfr:   pdf.NewRenderer(),
		prev:   preview.NewRenderer(),
	}
}

// Register registers invoice routes. The public share route stays
// outside the auth wrapper.
func (h *InvoiceHandler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /invoices", protect(http.HandlerFunc(h.List)))
	mux.Handle("POST /invoices", protect(http.HandlerFunc(h.Create)))
	mux.Handle("POST /invoices/update", protect(http.HandlerFunc(h.Update)))
	mux.Handle("POST /invoices/delete", protect(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /invoices/status", protect(http.HandlerFunc(h.Status)))
	mux.Handle("POST /invoices/draft", protect(http.HandlerFunc(h.Draft)))
	mux.Handle("GET /invoices/pdf", protect(http.HandlerFunc(h.PDF)))
	mux.Handle("GET /invoices/preview", protect(http.HandlerFunc(h.PreviewHTML)))
	mux.HandleFunc("GET /public/invoices/{token}/pdf", h.PublicPDF)
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q, limit, offset := parseListParams(r)

	dbq := h.DB.Where("user_id = ?", userID)
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(number) LIKE ? OR lower(title) LIKE ? OR lower(status) LIKE ?", like, like, like)
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	var total int64
	dbq.Model(&models.Invoice{}).Count(&total)
	var invoices []models.Invoice
	if err := dbq.Preload("Customer").Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Order("id desc").Limit(limit).Offset(offset).Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": total, "limit": limit, "offset": offset})
}

type lineItemReq struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

type invoiceReq struct {
	CustomerID  uint          `json:"customer_id"`
	TemplateID  *uint         `json:"template_id"`
	Currency    string        `json:"currency"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Notes       string        `json:"notes"`
	TaxRate     *float64      `json:"tax_rate"`
	IssueDate   string        `json:"issue_date"`
	DueDate     string        `json:"due_date"`
	Items       []lineItemReq `json:"items"`
}

func (req *invoiceReq) lineItems(v validation.Violations) []models.LineItem {
	items := make([]models.LineItem, 0, len(req.Items))
	for i, it := range req.Items {
		if strings.TrimSpace(it.Description) == "" {
			v["items"] = "description_required"
			return nil
		}
		if it.Quantity < 0 || it.Rate < 0 || it.Amount < 0 {
			v["items"] = "negative_values"
			return nil
		}
		q := it.Quantity
		if q == 0 {
			q = 1
		}
		items = append(items, models.LineItem{
			Description: it.Description,
			Quantity:    q,
			Rate:        it.Rate,
			Amount:      it.Amount,
			Position:    i,
		})
	}
	return items
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req invoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	if req.CustomerID == 0 {
		v["customer_id"] = "required"
	}
	items := req.lineItems(v)
	issueDate, ok := parseDate(req.IssueDate)
	if !ok {
		v["issue_date"] = "invalid_date"
	}
	dueDate, ok := parseDate(req.DueDate)
	if !ok {
		v["due_date"] = "invalid_date"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var customer models.Customer
	if err := h.DB.Where("id = ? AND user_id = ?", req.CustomerID, userID).First(&customer).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_customer", nil)
		return
	}
	if req.TemplateID != nil {
		var tpl models.InvoiceTemplate
		if err := h.DB.Where("id = ? AND user_id = ?", *req.TemplateID, userID).First(&tpl).Error; err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_template", nil)
			return
		}
	}

	taxRate := customer.DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	if taxRate < 0 || taxRate > 100 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"tax_rate": "out_of_range"})
		return
	}

	inv := models.Invoice{
		UserID:      userID,
		CustomerID:  customer.ID,
		TemplateID:  req.TemplateID,
		Currency:    req.Currency,
		Title:       req.Title,
		Description: req.Description,
		Notes:       req.Notes,
		TaxRate:     taxRate,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		Items:       items,
	}
	if err := h.Svc.Create(&inv, &customer); err != nil {
		h.Log.Error().Err(err).Msg("invoice create failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		return
	}
	inv.Customer = &customer
	httpx.JSON(w, http.StatusCreated, inv)
}

// load fetches an owner-scoped invoice with items and customer.
func (h *InvoiceHandler) load(userID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := h.DB.Where("id = ? AND user_id = ?", id, userID).
		Preload("Customer").
		Preload("Template").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func notFoundOrInternal(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}

// Update: POST /invoices/update?id=... Draft invoices only.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv, err := h.load(userID, id)
	if err != nil {
		notFoundOrInternal(w, err)
		return
	}
	if !inv.CanEdit() {
		httpx.JSONError(w, http.StatusConflict, "not_editable", map[string]string{"status": string(inv.Status)})
		return
	}

	var req invoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	items := req.lineItems(v)
	issueDate, okDate := parseDate(req.IssueDate)
	if !okDate {
		v["issue_date"] = "invalid_date"
	}
	dueDate, okDate := parseDate(req.DueDate)
	if !okDate {
		v["due_date"] = "invalid_date"
	}
	if req.TaxRate != nil && (*req.TaxRate < 0 || *req.TaxRate > 100) {
		v["tax_rate"] = "out_of_range"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	if req.TemplateID != nil {
		var tpl models.InvoiceTemplate
		if err := h.DB.Where("id = ? AND user_id = ?", *req.TemplateID, userID).First(&tpl).Error; err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_template", nil)
			return
		}
	}

	inv.TemplateID = req.TemplateID
	inv.Title = req.Title
	inv.Description = req.Description
	inv.Notes = req.Notes
	if req.Currency != "" {
		inv.Currency = req.Currency
	}
	if req.TaxRate != nil {
		inv.TaxRate = *req.TaxRate
	}
	if !issueDate.IsZero() {
		inv.IssueDate = issueDate
	}
	if !dueDate.IsZero() {
		inv.DueDate = dueDate
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(inv).
			Select("template_id", "title", "description", "notes", "currency", "tax_rate", "issue_date", "due_date").
			Updates(inv).Error
	})
	if err == nil {
		err = h.Svc.UpdateItems(inv, items)
	}
	if err != nil {
		h.Log.Error().Err(err).Uint("invoice_id", inv.ID).Msg("invoice update failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: POST /invoices/delete?id=...
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Invoice{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("invoice_id = ?", id).Delete(&models.LineItem{}).Error
	})
	if err != nil {
		notFoundOrInternal(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Status: POST /invoices/status?id=... body {"status": "sent"}
func (h *InvoiceHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Status models.InvoiceStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	inv, err := h.load(userID, id)
	if err != nil {
		notFoundOrInternal(w, err)
		return
	}
	if err := h.Svc.Transition(inv, req.Status); err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			httpx.JSONError(w, http.StatusConflict, "invalid_transition", map[string]string{
				"from": string(inv.Status), "to": string(req.Status),
			})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_status", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": inv.ID, "status": inv.Status})
}

// Draft: POST /invoices/draft body {"prompt": "..."} Returns a suggested
// invoice body; nothing is persisted.
func (h *InvoiceHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "prompt_required", nil)
		return
	}
	draft, err := h.Drafts.Draft(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, services.ErrDraftUnavailable) {
			httpx.JSONError(w, http.StatusServiceUnavailable, "drafting_unavailable", nil)
			return
		}
		h.Log.Error().Err(err).Msg("invoice draft failed")
		httpx.JSONError(w, http.StatusBadGateway, "drafting_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, draft)
}

// renderOps builds the shared instruction stream for an invoice.
func (h *InvoiceHandler) renderOps(inv *models.Invoice) ([]render.Op, error) {
	var profile models.CompanyProfile
	var p *models.CompanyProfile
	if err := h.DB.Where("user_id = ?", inv.UserID).First(&profile).Error; err == nil {
		p = &profile
	}
	pm := h.Svc.DefaultPaymentMethod(inv.UserID)
	presentation, doc := h.Svc.RenderInput(inv, p, pm)
	return render.Layout(presentation, doc)
}

func (h *InvoiceHandler) writePDF(w http.ResponseWriter, inv *models.Invoice) {
	ops, err := h.renderOps(inv)
	if err != nil {
		var missing *render.MissingDataError
		if errors.As(err, &missing) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "missing_required_data", map[string]string{"field": missing.Field})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "layout_failed", nil)
		return
	}
	data, err := h.pdfr.Render(ops)
	if err != nil {
		h.Log.Error().Err(err).Str("number", inv.Number).Msg("pdf generation failed")
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pdf.Filename(inv.Number)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// PDF: GET /invoices/pdf?id=...
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv, err := h.load(userID, id)
	if err != nil {
		notFoundOrInternal(w, err)
		return
	}
	h.writePDF(w, inv)
}

// PreviewHTML: GET /invoices/preview?id=... Renders the same instruction
// stream as the PDF into an HTML page.
func (h *InvoiceHandler) PreviewHTML(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv, err := h.load(userID, id)
	if err != nil {
		notFoundOrInternal(w, err)
		return
	}
	ops, err := h.renderOps(inv)
	if err != nil {
		var missing *render.MissingDataError
		if errors.As(err, &missing) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "missing_required_data", map[string]string{"field": missing.Field})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "layout_failed", nil)
		return
	}
	page, err := h.prev.Render(ops)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "preview_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// PublicPDF: GET /public/invoices/{token}/pdf. Unauthenticated download
// by share token; drafts are never exposed.
func (h *InvoiceHandler) PublicPDF(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var inv models.Invoice
	err := h.DB.Where("share_token = ?", token).
		Preload("Customer").
		Preload("Template").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&inv).Error
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if inv.IsDraft() {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	h.writePDF(w, &inv)
}
