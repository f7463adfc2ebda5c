package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/StediMove/Invoice-2.0-sub000/internal/models"
	"github.com/StediMove/Invoice-2.0-sub000/internal/services"
)

func TestTemplateCreateValidatesColors(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, _ := seedAccount(t, db)
	h := NewTemplateHandler(db)

	body := map[string]any{
		"name": "Broken",
		"data": map[string]any{"primaryColor": "not-a-color"},
	}
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/templates", body, user.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "validation_failed" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}

	body["data"] = map[string]any{"primaryColor": "#ff0000", "fontFamily": "serif"}
	w = httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/templates", body, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
}

func TestTemplateDefaultIsExclusive(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, _ := seedAccount(t, db)
	h := NewTemplateHandler(db)

	first := models.InvoiceTemplate{UserID: user.ID, Name: "First", IsDefault: true}
	second := models.InvoiceTemplate{UserID: user.ID, Name: "Second"}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := httptest.NewRecorder()
	h.SetDefault(w, authedRequest(http.MethodPost, fmt.Sprintf("/templates/default?id=%d", second.ID), nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.InvoiceTemplate{}).Where("user_id = ? AND is_default = ?", user.ID, true).Count(&count)
	if count != 1 {
		t.Errorf("default count = %d, want 1", count)
	}
	var reloaded models.InvoiceTemplate
	db.First(&reloaded, second.ID)
	if !reloaded.IsDefault {
		t.Error("second template should be the default")
	}
}

func TestTemplateDeleteDetachesInvoices(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, customer := seedAccount(t, db)
	h := NewTemplateHandler(db)

	tpl := models.InvoiceTemplate{UserID: user.ID, Name: "Doomed"}
	if err := db.Create(&tpl).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := services.NewInvoiceService(db)
	inv := models.Invoice{UserID: user.ID, CustomerID: customer.ID, TemplateID: &tpl.ID,
		Items: []models.LineItem{{Description: "Work", Quantity: 1, Rate: 100}}}
	if err := svc.Create(&inv, &customer); err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	w := httptest.NewRecorder()
	h.Delete(w, authedRequest(http.MethodPost, fmt.Sprintf("/templates/delete?id=%d", tpl.ID), nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Invoice
	if err := db.First(&reloaded, inv.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.TemplateID != nil {
		t.Error("invoice should have been detached from the deleted template")
	}

	// The detached invoice still renders, on profile and built-in defaults.
	ih := newInvoiceHandler(db)
	w = httptest.NewRecorder()
	ih.PDF(w, authedRequest(http.MethodGet, fmt.Sprintf("/invoices/pdf?id=%d", inv.ID), nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("pdf after template delete = %d: %s", w.Code, w.Body.String())
	}
}

func TestProfileUpsert(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, _ := seedAccount(t, db)
	h := NewProfileHandler(db)

	// No row yet: GET yields an empty editable profile, not 404.
	w := httptest.NewRecorder()
	h.Get(w, authedRequest(http.MethodGet, "/profile", nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	body := map[string]any{"company_name": "Studio Nine", "primary_color": "#112233"}
	w = httptest.NewRecorder()
	h.Put(w, authedRequest(http.MethodPut, "/profile", body, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", w.Code, w.Body.String())
	}

	// Second PUT updates the same row.
	body["company_name"] = "Studio Ten"
	w = httptest.NewRecorder()
	h.Put(w, authedRequest(http.MethodPut, "/profile", body, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("second put status = %d", w.Code)
	}

	var count int64
	db.Model(&models.CompanyProfile{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("profile rows = %d, want 1", count)
	}
	var p models.CompanyProfile
	db.Where("user_id = ?", user.ID).First(&p)
	if p.CompanyName != "Studio Ten" {
		t.Errorf("company name = %q", p.CompanyName)
	}
}

func TestPaymentMethodValidationByType(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, _ := seedAccount(t, db)
	h := NewPaymentMethodHandler(db)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"card needs last4", map[string]any{"type": "card"}, http.StatusBadRequest},
		{"card ok", map[string]any{"type": "card", "card_last4": "4242"}, http.StatusCreated},
		{"bank needs account", map[string]any{"type": "bank", "bank_name": "Nordbank"}, http.StatusBadRequest},
		{"bank iban ok", map[string]any{"type": "bank", "iban": "DE89370400440532013000"}, http.StatusCreated},
		{"mobile ok", map[string]any{"type": "mobile", "mobile_provider": "MobilePay"}, http.StatusCreated},
		{"unknown type", map[string]any{"type": "crypto"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Create(w, authedRequest(http.MethodPost, "/payment-methods", tc.body, user.ID))
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestCustomerCRUD(t *testing.T) {
	db := setupHandlerTestDB(t)
	user, _ := seedAccount(t, db)
	h := NewCustomerHandler(db)

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/customers", map[string]any{"name": "Beta GmbH", "email": "ap@beta.test"}, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	if created["currency"] != "USD" || created["payment_term_days"].(float64) != 30 {
		t.Errorf("defaults not applied: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/customers?q=beta", nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	if int(decodeBody(t, w)["total"].(float64)) != 1 {
		t.Errorf("search miss: %s", w.Body.String())
	}

	id := uint(created["id"].(float64))
	w = httptest.NewRecorder()
	h.Delete(w, authedRequest(http.MethodPost, fmt.Sprintf("/customers/delete?id=%d", id), nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
}
