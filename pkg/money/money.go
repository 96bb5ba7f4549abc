// Package money formats amounts stored in minor currency units.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"jpy": "¥",
	"idr": "Rp",
}

// FromMinor converts an amount in minor units (cents) to its major-unit value.
func FromMinor(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

// ParseMinor parses a numeric string holding a whole number of minor units.
// ok is false when s is not a number, has a fractional part or does not
// fit in an int64.
func ParseMinor(s string) (amount int64, ok bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	// IntPart wraps around outside the int64 range
	if !d.BigInt().IsInt64() {
		return 0, false
	}
	return d.IntPart(), true
}

// FormatMinor renders amount/100 with two decimals, thousands separators
// and the currency symbol, e.g. FormatMinor(123456, "usd") == "$1,234.56".
func FormatMinor(amount int64, currency string) string {
	d := FromMinor(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + Symbol(currency) + groupThousands(whole) + "." + frac
}

// Symbol returns the display symbol for a currency code. Unknown codes are
// rendered upper-case followed by a space.
func Symbol(currency string) string {
	code := strings.ToLower(currency)
	if s, ok := symbols[code]; ok {
		return s
	}
	return strings.ToUpper(code) + " "
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
