package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func langSeen(t *testing.T, build func(*http.Request)) string {
	t.Helper()
	var got string
	h := Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LangFrom(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	build(req)
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestPrefsPrecedence(t *testing.T) {
	if got := langSeen(t, func(r *http.Request) {}); got != "en" {
		t.Errorf("default lang = %q, want en", got)
	}
	if got := langSeen(t, func(r *http.Request) {
		r.Header.Set("Accept-Language", "da-DK,da;q=0.9")
	}); got != "da" {
		t.Errorf("header lang = %q, want da", got)
	}
	if got := langSeen(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "lang", Value: "fr"})
		r.Header.Set("Accept-Language", "da-DK")
	}); got != "fr" {
		t.Errorf("cookie lang = %q, want fr", got)
	}
	if got := langSeen(t, func(r *http.Request) {
		r.URL.RawQuery = "lang=es"
		r.AddCookie(&http.Cookie{Name: "lang", Value: "fr"})
	}); got != "es" {
		t.Errorf("query lang = %q, want es", got)
	}
	// unsupported cookie value falls through to header
	if got := langSeen(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "lang", Value: "xx"})
		r.Header.Set("Accept-Language", "de-DE")
	}); got != "de" {
		t.Errorf("fallback lang = %q, want de", got)
	}
}
