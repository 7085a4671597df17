package payment

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// isCurrencyMarker matches the characters allowed around an amount: currency
// codes, currency symbols and padding.
func isCurrencyMarker(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Sc, r) || unicode.IsSpace(r)
}

// ParseFeeCents reads a currency formatted fee such as "$1,500.00", "KES 2500"
// or "1500.5" and returns it in minor units. A currency code or symbol may lead
// or trail the amount. Inside the amount only digits, one decimal point and
// thousands separators are accepted; at most two fraction digits.
func ParseFeeCents(fee string) (int64, error) {
	amount := strings.TrimFunc(fee, isCurrencyMarker)
	var b strings.Builder
	for _, r := range amount {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',', unicode.IsSpace(r):
		default:
			return 0, fmt.Errorf("fee %q contains %q", fee, r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0, fmt.Errorf("fee %q has no amount", fee)
	}

	whole, frac, hasFrac := strings.Cut(digits, ".")
	if strings.Contains(frac, ".") {
		return 0, fmt.Errorf("fee %q has more than one decimal point", fee)
	}
	if hasFrac && len(frac) > 2 {
		return 0, fmt.Errorf("fee %q has more than two decimal places", fee)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("fee %q: %w", fee, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("fee %q: %w", fee, err)
	}
	if units > (math.MaxInt64-cents)/100 {
		return 0, fmt.Errorf("fee %q is too large", fee)
	}
	total := units*100 + cents
	if total <= 0 {
		return 0, fmt.Errorf("fee %q must be positive", fee)
	}
	return total, nil
}
