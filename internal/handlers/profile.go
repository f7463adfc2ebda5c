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

// ProfileHandler manages the single company profile row per user.
type ProfileHandler struct {
	DB *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{DB: db}
}

// Register registers profile routes on the mux. All routes require auth.
func (h *ProfileHandler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /profile", protect(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /profile", protect(http.HandlerFunc(h.Put)))
}

// Get: GET /profile. A user without a saved profile gets an empty one
// rather than a 404 so clients can treat it as an editable form.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var profile models.CompanyProfile
	if err := h.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSON(w, http.StatusOK, models.CompanyProfile{UserID: userID})
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

// Put: PUT /profile. Upsert on the user's unique row.
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in models.CompanyProfile
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	if in.PrimaryColor != "" {
		validation.HexColor("primary_color", in.PrimaryColor, v)
	}
	if in.SecondaryColor != "" {
		validation.HexColor("secondary_color", in.SecondaryColor, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var profile models.CompanyProfile
	err := h.DB.Where("user_id = ?", userID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	profile.UserID = userID
	profile.CompanyName = in.CompanyName
	profile.CompanyAddress = in.CompanyAddress
	profile.CompanyPhone = in.CompanyPhone
	profile.CompanyEmail = in.CompanyEmail
	profile.CompanyWebsite = in.CompanyWebsite
	profile.TaxID = in.TaxID
	profile.BusinessLicense = in.BusinessLicense
	profile.LogoURL = in.LogoURL
	profile.PrimaryColor = in.PrimaryColor
	profile.SecondaryColor = in.SecondaryColor

	if err := h.DB.Save(&profile).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_profile", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}
