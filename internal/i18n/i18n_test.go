package i18n

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Faktura for bilvask service, 500 DKK, 25% moms", "da"},
		{"Invoice for website design, $1500", "en"},
		{"Rechnung für Webdesign, Betrag 1200 EUR inkl. MwSt", "de"},
		{"Facture pour services de conseil, TVA 20%, montant 3000", "fr"},
		{"Factura por servicios de consultoría, IVA incluido, importe 2000", "es"},
		{"", "en"},
		{"1234567890", "en"},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestDetectLanguageDeterministic(t *testing.T) {
	text := "Faktura for bilvask service, 500 DKK, 25% moms"
	first := DetectLanguage(text)
	for i := 0; i < 10; i++ {
		if got := DetectLanguage(text); got != first {
			t.Fatalf("DetectLanguage not deterministic: %q then %q", first, got)
		}
	}
}

func TestDetectLanguageDiacriticFallback(t *testing.T) {
	// No keyword hits; distinctive characters decide.
	if got := DetectLanguage("søndag på havnen"); got != "da" {
		t.Errorf("expected da for danish diacritics, got %q", got)
	}
	if got := DetectLanguage("größe straße"); got != "de" {
		t.Errorf("expected de for german diacritics, got %q", got)
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("fr", "required") != "Requis" {
		t.Fatalf("expected Requis")
	}
	if T("da", "invoice") != "Faktura" {
		t.Fatalf("expected Faktura")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// unknown language -> fallback to en translation if exists
	if T("pt", "invoice") != "Invoice" {
		t.Fatalf("expected en fallback for unknown lang")
	}
}

func TestEveryLanguageHasLayoutLabels(t *testing.T) {
	codes := []string{
		"invoice", "from", "to", "issue_date", "due_date", "currency",
		"payment_terms", "days", "description", "quantity", "rate",
		"amount", "subtotal", "tax", "total", "notes", "payment_method",
	}
	for _, lang := range []string{LangEN, LangDA, LangDE, LangFR, LangES} {
		for _, code := range codes {
			if _, ok := translations[lang][code]; !ok {
				t.Errorf("missing %s translation for %q", lang, code)
			}
		}
	}
}
