// Package i18n provides invoice label translations and content-based
// language detection for the five supported document languages.
package i18n

import "strings"

// Supported language codes.
const (
	LangEN = "en"
	LangDA = "da"
	LangDE = "de"
	LangFR = "fr"
	LangES = "es"
)

var supported = []string{LangEN, LangDA, LangDE, LangFR, LangES}

// IsSupported reports whether code is a known language code.
func IsSupported(code string) bool {
	for _, l := range supported {
		if l == code {
			return true
		}
	}
	return false
}

// keywords score a text towards a language. Matched as lowercase substrings,
// so short entries should be distinctive enough not to fire everywhere.
var keywords = map[string][]string{
	LangEN: {"invoice", "payment", "amount", "total", " from ", " for ", "usd", "$"},
	LangDA: {"faktura", "moms", "beløb", "betaling", " fra ", " til ", "dkk", "kroner"},
	LangDE: {"rechnung", "mwst", "betrag", "zahlung", " von ", " für ", "eur", "gesamt"},
	LangFR: {"facture", "tva", "montant", "paiement", " de ", " pour ", "euros", "règlement"},
	LangES: {"factura", "iva", "importe", "pago", " de ", " para ", "pesos", "cobro"},
}

// diacritics distinctive to a language, checked in fixed order when keyword
// scoring produces no strict winner.
var diacritics = []struct {
	lang  string
	runes string
}{
	{LangDA, "æøåÆØÅ"},
	{LangDE, "äöüßÄÖÜ"},
	{LangES, "ñ¿¡Ñ"},
	{LangFR, "éèêëàâçîïôûùÉÈÊÀÇ"},
}

// DetectLanguage infers the language of free-text invoice content.
// It never fails: with no signal at all it returns "en".
func DetectLanguage(text string) string {
	lower := " " + strings.ToLower(text) + " "

	best, bestScore, tied := LangEN, 0, false
	for _, lang := range supported {
		score := 0
		for _, kw := range keywords[lang] {
			score += strings.Count(lower, kw)
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = lang, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore > 0 && !tied {
		return best
	}
	for _, d := range diacritics {
		if strings.ContainsAny(text, d.runes) {
			return d.lang
		}
	}
	return LangEN
}

// T returns the translation of code in lang, falling back to English and
// then to the code itself.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := translations[LangEN][code]; ok {
		return s
	}
	return code
}

var translations = map[string]map[string]string{
	LangEN: {
		"invoice":        "Invoice",
		"from":           "From",
		"to":             "To",
		"issue_date":     "Issue Date",
		"due_date":       "Due Date",
		"currency":       "Currency",
		"payment_terms":  "Payment Terms",
		"days":           "days",
		"description":    "Description",
		"quantity":       "Qty",
		"rate":           "Rate",
		"amount":         "Amount",
		"subtotal":       "Subtotal",
		"tax":            "Tax",
		"total":          "Total",
		"notes":          "Notes",
		"payment_method": "Payment Method",
		"required":       "Required",
	},
	LangDA: {
		"invoice":        "Faktura",
		"from":           "Fra",
		"to":             "Til",
		"issue_date":     "Fakturadato",
		"due_date":       "Forfaldsdato",
		"currency":       "Valuta",
		"payment_terms":  "Betalingsbetingelser",
		"days":           "dage",
		"description":    "Beskrivelse",
		"quantity":       "Antal",
		"rate":           "Pris",
		"amount":         "Beløb",
		"subtotal":       "Subtotal",
		"tax":            "Moms",
		"total":          "Total",
		"notes":          "Noter",
		"payment_method": "Betalingsmetode",
		"required":       "Påkrævet",
	},
	LangDE: {
		"invoice":        "Rechnung",
		"from":           "Von",
		"to":             "An",
		"issue_date":     "Rechnungsdatum",
		"due_date":       "Fälligkeitsdatum",
		"currency":       "Währung",
		"payment_terms":  "Zahlungsbedingungen",
		"days":           "Tage",
		"description":    "Beschreibung",
		"quantity":       "Menge",
		"rate":           "Preis",
		"amount":         "Betrag",
		"subtotal":       "Zwischensumme",
		"tax":            "MwSt.",
		"total":          "Gesamt",
		"notes":          "Anmerkungen",
		"payment_method": "Zahlungsmethode",
		"required":       "Erforderlich",
	},
	LangFR: {
		"invoice":        "Facture",
		"from":           "De",
		"to":             "À",
		"issue_date":     "Date d'émission",
		"due_date":       "Date d'échéance",
		"currency":       "Devise",
		"payment_terms":  "Conditions de paiement",
		"days":           "jours",
		"description":    "Description",
		"quantity":       "Qté",
		"rate":           "Prix",
		"amount":         "Montant",
		"subtotal":       "Sous-total",
		"tax":            "TVA",
		"total":          "Total",
		"notes":          "Notes",
		"payment_method": "Moyen de paiement",
		"required":       "Requis",
	},
	LangES: {
		"invoice":        "Factura",
		"from":           "De",
		"to":             "Para",
		"issue_date":     "Fecha de emisión",
		"due_date":       "Fecha de vencimiento",
		"currency":       "Moneda",
		"payment_terms":  "Condiciones de pago",
		"days":           "días",
		"description":    "Descripción",
		"quantity":       "Cant.",
		"rate":           "Precio",
		"amount":         "Importe",
		"subtotal":       "Subtotal",
		"tax":            "IVA",
		"total":          "Total",
		"notes":          "Notas",
		"payment_method": "Método de pago",
		"required":       "Requerido",
	},
}
