package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/StediMove/Invoice-2.0-sub000/internal/auth"
	"github.com/StediMove/Invoice-2.0-sub000/internal/httpx"
	"github.com/StediMove/Invoice-2.0-sub000/internal/models"
	"github.com/StediMove/Invoice-2.0-sub000/internal/validation"
)

type TemplateHandler struct {
	DB *gorm.DB
}

func NewTemplateHandler(db *gorm.DB) *TemplateHandler {
	return &TemplateHandler{DB: db}
}

// Register registers template routes on the mux. All routes require auth.
func (h *TemplateHandler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /templates", protect(http.HandlerFunc(h.List)))
	mux.Handle("POST /templates", protect(http.HandlerFunc(h.Create)))
	mux.Handle("POST /templates/update", protect(http.HandlerFunc(h.Update)))
	mux.Handle("POST /templates/delete", protect(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /templates/default", protect(http.HandlerFunc(h.SetDefault)))
}

// templateColorKeys lists the payload keys validated as hex colors.
// Both spellings are accepted because stored payloads mix them.
var templateColorKeys = []string{
	"primaryColor", "primary_color",
	"secondaryColor", "secondary_color",
	"accentColor", "accent_color",
	"textColor", "text_color",
}

// validatePayload checks the color and font fields of a template payload.
// Unknown keys pass through untouched; the resolver ignores them.
func validatePayload(data map[string]any, v validation.Violations) {
	for _, key := range templateColorKeys {
		if raw, ok := data[key]; ok {
			if s, ok := raw.(string); ok && s != "" {
				validation.HexColor(key, s, v)
			}
		}
	}
	for _, key := range []string{"fontFamily", "font_family"} {
		if raw, ok := data[key]; ok {
			if s, ok := raw.(string); ok && s != "" {
				validation.OneOf(key, strings.ToLower(s), []string{"sans", "serif", "mono"}, v)
			}
		}
	}
}

// List: GET /templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var templates []models.InvoiceTemplate
	if err := h.DB.Where("user_id = ?", userID).Order("is_default desc, name").Find(&templates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_templates", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": templates, "total": len(templates)})
}

type templateReq struct {
	Name      string         `json:"name"`
	IsDefault bool           `json:"is_default"`
	Data      map[string]any `json:"data"`
}

// Create: POST /templates
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req templateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validatePayload(req.Data, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	raw, err := json.Marshal(req.Data)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
		return
	}
	tpl := models.InvoiceTemplate{
		UserID:    userID,
		Name:      req.Name,
		IsDefault: req.IsDefault,
		Data:      datatypes.JSON(raw),
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if tpl.IsDefault {
			if err := tx.Model(&models.InvoiceTemplate{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&tpl).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_template", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, tpl)
}

// Update: POST /templates/update?id=...
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}

	var tpl models.InvoiceTemplate
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	var req templateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validatePayload(req.Data, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	raw, err := json.Marshal(req.Data)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
		return
	}
	tpl.Name = req.Name
	tpl.Data = datatypes.JSON(raw)
	if err := h.DB.Save(&tpl).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_template", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, tpl)
}

// Delete: POST /templates/delete?id=...
// Invoices referencing the template keep rendering: their template_id is
// cleared so they fall back to the profile and hard defaults.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.InvoiceTemplate{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Invoice{}).Where("user_id = ? AND template_id = ?", userID, id).
			Update("template_id", nil).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_template", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetDefault: POST /templates/default?id=...
func (h *TemplateHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var tpl models.InvoiceTemplate
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.InvoiceTemplate{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&tpl).Update("is_default", true).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_set_default", nil)
		return
	}
	tpl.IsDefault = true
	httpx.JSON(w, http.StatusOK, tpl)
}
