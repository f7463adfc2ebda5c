package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/StediMove/Invoice-2.0-sub000/internal/auth"
	"github.com/StediMove/Invoice-2.0-sub000/internal/models"
	"github.com/StediMove/Invoice-2.0-sub000/internal/services"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.CompanyProfile{}, &models.Customer{},
		&models.InvoiceTemplate{}, &models.PaymentMethod{}, &models.Invoice{}, &models.LineItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedAccount(t *testing.T, db *gorm.DB) (models.User, models.Customer) {
	t.Helper()
	user := models.User{Email: "owner@test", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	customer := models.Customer{
		UserID: user.ID, Name: "Acme Ltd", Email: "billing@acme.test",
		Currency: "USD", DefaultTaxRate: 20, PaymentTermDays: 30,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	return user, customer
}

func newInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	svc := services.NewInvoiceService(db)
	drafts := services.NewDraftService(services.DraftConfig{}, zerolog.Nop())
	return NewInvoiceHandler(db, svc, drafts, zerolog.Nop())
}

// authedRequest builds a request carrying the user's identity.
func authedRequest(method, target string, body any, userID uint) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r.WithContext(auth.WithUserID(r.Context(), userID))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
	return m
}

func TestInvoiceCreateAndList(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	h := newInvoiceHandler(db)

	body := map[string]any{
		"customer_id": customer.ID,
		"title":       "Website redesign",
		"items": []map[string]any{
			{"description": "Design", "quantity": 10, "rate": 100},
			{"description": "Hosting", "quantity": 1, "rate": 50},
		},
	}
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/invoices", body, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	if created["subtotal"].(float64) != 1050 {
		t.Errorf("subtotal = %v, want 1050", created["subtotal"])
	}
	// customer default tax rate applies when none is sent
	if created["tax_rate"].(float64) != 20 {
		t.Errorf("tax_rate = %v, want 20", created["tax_rate"])
	}
	if !strings.HasPrefix(created["number"].(string), "INV-") {
		t.Errorf("number = %v", created["number"])
	}

	w = httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/invoices", nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	listed := decodeBody(t, w)
	if int(listed["total"].(float64)) != 1 {
		t.Errorf("total = %v, want 1", listed["total"])
	}
}

func TestInvoiceCreateRejectsForeignCustomer(t *testing.T) {
	db := setupHandlerTestDB(t)
	_, customer := seedAccount(t, db)
	other := models.User{Email: "other@test", Password: "x"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	h := newInvoiceHandler(db)

	body := map[string]any{
		"customer_id": customer.ID,
		"items":       []map[string]any{{"description": "X", "quantity": 1, "rate": 1}},
	}
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/invoices", body, other.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if decodeBody(t, w)["error"] != "invalid_customer" {
		t.Errorf("unexpected error body: %s", w.Body.String())
	}
}

func TestInvoiceStatusTransitions(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	h := newInvoiceHandler(db)

	inv := models.Invoice{UserID: user.ID, CustomerID: customer.ID,
		Items: []models.LineItem{{Description: "Work", Quantity: 1, Rate: 100}}}
	if err := h.Svc.Create(&inv, &customer); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	target := fmt.Sprintf("/invoices/status?id=%d", inv.ID)

	w := httptest.NewRecorder()
	h.Status(w, authedRequest(http.MethodPost, target, map[string]string{"status": "paid"}, user.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("draft->paid status = %d, want 409", w.Code)
	}

	w = httptest.NewRecorder()
	h.Status(w, authedRequest(http.MethodPost, target, map[string]string{"status": "sent"}, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("draft->sent status = %d: %s", w.Code, w.Body.String())
	}

	var stored models.Invoice
	if err := db.First(&stored, inv.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.InvoiceStatusSent {
		t.Errorf("stored status = %q, want sent", stored.Status)
	}
}

func TestInvoiceUpdateLockedAfterSend(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	h := newInvoiceHandler(db)

	inv := models.Invoice{UserID: user.ID, CustomerID: customer.ID, Status: models.InvoiceStatusSent,
		Items: []models.LineItem{{Description: "Work", Quantity: 1, Rate: 100}}}
	if err := h.Svc.Create(&inv, &customer); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	body := map[string]any{
		"items": []map[string]any{{"description": "Changed", "quantity": 1, "rate": 999}},
	}
	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPost, fmt.Sprintf("/invoices/update?id=%d", inv.ID), body, user.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestInvoicePDFDownload(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	h := newInvoiceHandler(db)

	inv := models.Invoice{UserID: user.ID, CustomerID: customer.ID,
		Items: []models.LineItem{{Description: "Work", Quantity: 1, Rate: 100}}}
	if err := h.Svc.Create(&inv, &customer); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	w := httptest.NewRecorder()
	h.PDF(w, authedRequest(http.MethodGet, fmt.Sprintf("/invoices/pdf?id=%d", inv.ID), nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "invoice-"+inv.Number+".pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestInvoicePreviewSharesLayoutWithPDF(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	h := newInvoiceHandler(db)

	inv := models.Invoice{UserID: user.ID, CustomerID: customer.ID, Title: "Spring campaign",
		Items: []models.LineItem{{Description: "Ad spend management", Quantity: 1, Rate: 2500}}}
	if err := h.Svc.Create(&inv, &customer); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	w := httptest.NewRecorder()
	h.PreviewHTML(w, authedRequest(http.MethodGet, fmt.Sprintf("/invoices/preview?id=%d", inv.ID), nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	html := w.Body.String()
	for _, want := range []string{inv.Number, "Ad spend management", "USD 2500.00"} {
		if !strings.Contains(html, want) {
			t.Errorf("preview missing %q", want)
		}
	}
}

func TestInvoiceMissingItemsRejectedAtRender(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	h := newInvoiceHandler(db)

	// An itemless draft can exist but cannot be rendered.
	inv := models.Invoice{UserID: user.ID, CustomerID: customer.ID}
	if err := h.Svc.Create(&inv, &customer); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	w := httptest.NewRecorder()
	h.PDF(w, authedRequest(http.MethodGet, fmt.Sprintf("/invoices/pdf?id=%d", inv.ID), nil, user.ID))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "missing_required_data" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestPublicPDFByShareToken(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	h := newInvoiceHandler(db)
	mux := http.NewServeMux()
	h.Register(mux, func(next http.Handler) http.Handler { return next })

	inv := models.Invoice{UserID: user.ID, CustomerID: customer.ID, Status: models.InvoiceStatusSent,
		Items: []models.LineItem{{Description: "Work", Quantity: 1, Rate: 100}}}
	if err := h.Svc.Create(&inv, &customer); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/invoices/"+inv.ShareToken+"/pdf", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}

	// Wrong token is invisible.
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/invoices/not-a-token/pdf", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPublicPDFHidesDrafts(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	h := newInvoiceHandler(db)

	inv := models.Invoice{UserID: user.ID, CustomerID: customer.ID,
		Items: []models.LineItem{{Description: "Work", Quantity: 1, Rate: 100}}}
	if err := h.Svc.Create(&inv, &customer); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/public/invoices/"+inv.ShareToken+"/pdf", nil)
	r.SetPathValue("token", inv.ShareToken)
	w := httptest.NewRecorder()
	h.PublicPDF(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for draft", w.Code)
	}
}

func TestInvoiceDraftUnavailableWithoutKey(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, _ := seedAccount(t, db)
	h := newInvoiceHandler(db)

	w := httptest.NewRecorder()
	h.Draft(w, authedRequest(http.MethodPost, "/invoices/draft", map[string]string{"prompt": "two hours of plumbing"}, user.ID))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestInvoiceOwnerIsolation(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	other := models.User{Email: "other@test", Password: "x"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	h := newInvoiceHandler(db)

	inv := models.Invoice{UserID: user.ID, CustomerID: customer.ID,
		IssueDate: time.Now(), DueDate: time.Now().AddDate(0, 0, 30),
		Items: []models.LineItem{{Description: "Work", Quantity: 1, Rate: 100}}}
	if err := h.Svc.Create(&inv, &customer); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	w := httptest.NewRecorder()
	h.PDF(w, authedRequest(http.MethodGet, fmt.Sprintf("/invoices/pdf?id=%d", inv.ID), nil, other.ID))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for foreign invoice", w.Code)
	}

	w = httptest.NewRecorder()
	h.Delete(w, authedRequest(http.MethodPost, fmt.Sprintf("/invoices/delete?id=%d", inv.ID), nil, other.ID))
	if w.Code != http.StatusNotFound {
		t.Errorf("delete status = %d, want 404", w.Code)
	}
}
