package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/StediMove/Invoice-2.0-sub000/internal/i18n"
)

type ctxKey string

const ctxLang ctxKey = "pref_lang"

// Prefs extracts the UI language preference (cookie > query > header) and
// stores it in context. Query-provided prefs persist in a cookie for ~30
// days. This is the stored display preference only; document content
// language comes from the content itself via i18n.DetectLanguage.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); ql != "" {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: "lang", Value: lang, Path: "/", MaxAge: 86400 * 30})
		}
		if !i18n.IsSupported(lang) {
			lang = fromAcceptLanguage(r.Header.Get("Accept-Language"))
		}
		ctx := context.WithValue(r.Context(), ctxLang, lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// fromAcceptLanguage picks the first supported tag from an
// Accept-Language header, defaulting to English.
func fromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if len(tag) >= 2 {
			code := strings.ToLower(tag[:2])
			if i18n.IsSupported(code) {
				return code
			}
		}
	}
	return i18n.LangEN
}

// LangFrom returns language preference from context or fallback.
func LangFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return i18n.LangEN
}
