package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/StediMove/Invoice-2.0-sub000/internal/auth"
	"github.com/StediMove/Invoice-2.0-sub000/internal/httpx"
	"github.com/StediMove/Invoice-2.0-sub000/internal/models"
	"github.com/StediMove/Invoice-2.0-sub000/internal/validation"
)

type CustomerHandler struct {
	DB *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{DB: db}
}

// Register registers customer routes on the mux. All routes require auth.
func (h *CustomerHandler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /customers", protect(http.HandlerFunc(h.List)))
	mux.Handle("POST /customers", protect(http.HandlerFunc(h.Create)))
	mux.Handle("POST /customers/update", protect(http.HandlerFunc(h.Update)))
	mux.Handle("POST /customers/delete", protect(http.HandlerFunc(h.Delete)))
}

// parseListParams extracts the shared q/limit/page query params.
func parseListParams(r *http.Request) (q string, limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	q = strings.TrimSpace(r.URL.Query().Get("q"))
	return
}

// idParam reads and validates the id query parameter.
func idParam(r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// List: GET /customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q, limit, offset := parseListParams(r)

	dbq := h.DB.Where("user_id = ?", userID)
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(email) LIKE ?", like, like)
	}
	var total int64
	dbq.Model(&models.Customer{}).Count(&total)
	var customers []models.Customer
	if err := dbq.Order("name").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var c models.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	c.ID = 0
	c.UserID = userID
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.PaymentTermDays <= 0 {
		c.PaymentTermDays = 30
	}

	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	validation.RangeFloat("default_tax_rate", c.DefaultTaxRate, 0, 100, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Update: POST /customers/update?id=...
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}

	var existing models.Customer
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	var in models.Customer
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.RangeFloat("default_tax_rate", in.DefaultTaxRate, 0, 100, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	existing.Name = in.Name
	existing.Email = in.Email
	existing.Phone = in.Phone
	existing.Address = in.Address
	if in.Currency != "" {
		existing.Currency = in.Currency
	}
	existing.DefaultTaxRate = in.DefaultTaxRate
	if in.PaymentTermDays > 0 {
		existing.PaymentTermDays = in.PaymentTermDays
	}
	if err := h.DB.Save(&existing).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, existing)
}

// Delete: POST /customers/delete?id=...
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Customer{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_customer", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
