package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/StediMove/Invoice-2.0-sub000/internal/auth"
	"github.com/StediMove/Invoice-2.0-sub000/internal/httpx"
	"github.com/StediMove/Invoice-2.0-sub000/internal/models"
	"github.com/StediMove/Invoice-2.0-sub000/internal/validation"
)

type PaymentMethodHandler struct {
	DB *gorm.DB
}

func NewPaymentMethodHandler(db *gorm.DB) *PaymentMethodHandler {
	return &PaymentMethodHandler{DB: db}
}

// Register registers payment method routes on the mux. All require auth.
func (h *PaymentMethodHandler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /payment-methods", protect(http.HandlerFunc(h.List)))
	mux.Handle("POST /payment-methods", protect(http.HandlerFunc(h.Create)))
	mux.Handle("POST /payment-methods/delete", protect(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /payment-methods/default", protect(http.HandlerFunc(h.SetDefault)))
}

// List: GET /payment-methods
func (h *PaymentMethodHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var methods []models.PaymentMethod
	if err := h.DB.Where("user_id = ?", userID).Order("is_default desc, id desc").Find(&methods).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_payment_methods", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": methods, "total": len(methods)})
}

// validate checks the type-specific required fields.
func validatePaymentMethod(pm *models.PaymentMethod, v validation.Violations) {
	validation.OneOf("type", string(pm.Type), []string{"card", "bank", "mobile"}, v)
	switch pm.Type {
	case models.PaymentMethodCard:
		if len(pm.CardLast4) != 4 {
			v["card_last4"] = "must_be_4_digits"
		}
	case models.PaymentMethodBank:
		if pm.IBAN == "" && (pm.RegNumber == "" || pm.AccountNumber == "") {
			v["bank"] = "iban_or_reg_and_account_required"
		}
	case models.PaymentMethodMobile:
		if pm.MobileNumber == "" && pm.MobileProvider == "" {
			v["mobile"] = "number_or_provider_required"
		}
	}
}

// Create: POST /payment-methods
func (h *PaymentMethodHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var pm models.PaymentMethod
	if err := json.NewDecoder(r.Body).Decode(&pm); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	pm.ID = 0
	pm.UserID = userID

	v := make(validation.Violations)
	validatePaymentMethod(&pm, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if pm.IsDefault {
			if err := tx.Model(&models.PaymentMethod{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&pm).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_payment_method", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, pm)
}

// Delete: POST /payment-methods/delete?id=...
func (h *PaymentMethodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.PaymentMethod{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_payment_method", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetDefault: POST /payment-methods/default?id=...
func (h *PaymentMethodHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var pm models.PaymentMethod
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&pm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PaymentMethod{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&pm).Update("is_default", true).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_set_default", nil)
		return
	}
	pm.IsDefault = true
	httpx.JSON(w, http.StatusOK, pm)
}
