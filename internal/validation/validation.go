package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// HexColor accepts empty or a #rrggbb / #rgb value.
func HexColor(field, value string, v Violations) {
	if value == "" {
		return
	}
	if !strings.HasPrefix(value, "#") {
		v[field] = "invalid_color"
		return
	}
	hex := value[1:]
	if len(hex) != 3 && len(hex) != 6 {
		v[field] = "invalid_color"
		return
	}
	for _, c := range hex {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			v[field] = "invalid_color"
			return
		}
	}
}

// OneOf validates membership in a closed set. Empty values pass; pair
// with Required when the field is mandatory.
func OneOf(field, value string, allowed []string, v Violations) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	v[field] = "invalid_value"
}
