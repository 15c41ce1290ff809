package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the storefront sells in.
const Currency = "USD"

// ParsePrice converts an external price representation into an exact decimal.
// Upstream feeds are inconsistent: prices arrive as "49", "49.00" or "$49.00".
// Everything except digits, the decimal point and a leading minus is stripped
// before parsing.
func ParsePrice(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-':
			return r
		default:
			return -1
		}
	}, strings.TrimSpace(s))

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("price %q has no numeric content", s)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", s, err)
	}
	return d, nil
}

// FormatPrice renders an amount for display or for an outgoing payload,
// rounded to cents. Rounding happens here and nowhere else.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// decodePriceJSON accepts either a JSON number or a formatted price string.
func decodePriceJSON(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, err
		}
		return ParsePrice(s)
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero, fmt.Errorf("parse price %s: %w", raw, err)
	}
	return d, nil
}
