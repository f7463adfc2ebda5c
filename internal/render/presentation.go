// Package render is the invoice rendering core: it resolves template,
// profile, and default values into one presentation, computes document
// totals, and lays invoice content out as renderer-agnostic draw
// instructions. Everything in this package is pure and side-effect free.
package render

import "strings"

// Presentation is the single merged set of visual and company identity
// values used for one render. It is derived on every render, never stored.
type Presentation struct {
	PrimaryColor   string
	SecondaryColor string
	AccentColor    string
	TextColor      string
	FontFamily     string

	CompanyName     string
	CompanyAddress  string
	CompanyPhone    string
	CompanyEmail    string
	CompanyWebsite  string
	TaxID           string
	BusinessLicense string
	LogoURL         string
}

// Source is one record's raw field map. Template data arrives as decoded
// JSON (camelCase keys), profile data as the model's snake_case map; some
// stored rows carry legacy spellings, which is why resolution goes through
// the alias table instead of direct key access.
type Source map[string]any

// aliases maps each concept to every field spelling it may be stored
// under, checked in order within a single source.
var aliases = map[string][]string{
	"primaryColor":    {"primaryColor", "primary_color", "brandColor", "brand_color"},
	"secondaryColor":  {"secondaryColor", "secondary_color"},
	"accentColor":     {"accentColor", "accent_color"},
	"textColor":       {"textColor", "text_color"},
	"fontFamily":      {"fontFamily", "font_family", "font"},
	"companyName":     {"companyName", "company_name"},
	"companyAddress":  {"companyAddress", "company_address"},
	"companyPhone":    {"companyPhone", "company_phone", "phone"},
	"companyEmail":    {"companyEmail", "company_email", "email"},
	"companyWebsite":  {"companyWebsite", "company_website", "website"},
	"taxId":           {"taxId", "tax_id", "taxID"},
	"businessLicense": {"businessLicense", "business_license"},
	"logoUrl":         {"logoUrl", "logo_url", "logoURL", "logo"},
}

var colorConcepts = []string{"primaryColor", "secondaryColor", "accentColor", "textColor"}

// Hard fallbacks applied when neither template nor profile supplies a value.
var defaults = map[string]string{
	"primaryColor":   "#3b82f6",
	"secondaryColor": "#1e40af",
	"accentColor":    "#60a5fa",
	"textColor":      "#1f2937",
	"fontFamily":     "sans",
	"companyName":    "Your Company",
	"companyAddress": "123 Business Street",
	"companyEmail":   "your@company.com",
}

var fontFamilies = map[string]bool{"sans": true, "serif": true, "mono": true}

// lookup returns the first non-empty string stored under any alias of
// concept in src.
func lookup(src Source, concept string) (string, bool) {
	if src == nil {
		return "", false
	}
	for _, key := range aliases[concept] {
		if raw, ok := src[key]; ok {
			if s, ok := raw.(string); ok {
				if v := strings.TrimSpace(s); v != "" {
					return v, true
				}
			}
		}
	}
	return "", false
}

// resolveField applies the template > profile > default precedence for one
// concept.
func resolveField(concept string, template, profile Source) string {
	if v, ok := lookup(template, concept); ok {
		return v
	}
	if v, ok := lookup(profile, concept); ok {
		return v
	}
	return defaults[concept]
}

// Resolve merges template and profile data into a Presentation. It never
// fails: absent sources and absent fields fall through to hard defaults.
//
// Colors are resolved as a group: when the attached template defines any
// color, the profile's (legacy) color fields are not consulted at all and
// template gaps fill from defaults. All other concepts resolve
// independently, so a template may set colors but still inherit its logo
// from the profile.
func Resolve(template, profile Source) Presentation {
	templateHasColors := false
	for _, c := range colorConcepts {
		if _, ok := lookup(template, c); ok {
			templateHasColors = true
			break
		}
	}

	color := func(concept string) string {
		if templateHasColors {
			if v, ok := lookup(template, concept); ok {
				return v
			}
			return defaults[concept]
		}
		return resolveField(concept, template, profile)
	}

	font := resolveField("fontFamily", template, profile)
	if !fontFamilies[strings.ToLower(font)] {
		font = defaults["fontFamily"]
	}

	return Presentation{
		PrimaryColor:   color("primaryColor"),
		SecondaryColor: color("secondaryColor"),
		AccentColor:    color("accentColor"),
		TextColor:      color("textColor"),
		FontFamily:     strings.ToLower(font),

		CompanyName:     resolveField("companyName", template, profile),
		CompanyAddress:  resolveField("companyAddress", template, profile),
		CompanyPhone:    resolveField("companyPhone", template, profile),
		CompanyEmail:    resolveField("companyEmail", template, profile),
		CompanyWebsite:  resolveField("companyWebsite", template, profile),
		TaxID:           resolveField("taxId", template, profile),
		BusinessLicense: resolveField("businessLicense", template, profile),
		LogoURL:         resolveField("logoUrl", template, profile),
	}
}
