package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
)

// Symbol is the rupee sign prefixed to every amount
const Symbol = "₹"

var (
	lakh     = decimal.NewFromInt(100000)
	thousand = decimal.NewFromInt(1000)
)

// Format renders a whole-rupee amount with Indian digit grouping, e.g. ₹12,34,567.
func Format(amount domain.Nat) string {
	return Symbol + groupIndian(amount.String())
}

// FormatCompact abbreviates large amounts with one decimal place: ₹1.5L, ₹2.3K.
func FormatCompact(amount domain.Nat) string {
	d := decimal.NewFromBigInt(amount.Big(), 0)
	switch {
	case d.GreaterThanOrEqual(lakh):
		return Symbol + d.Div(lakh).StringFixed(1) + "L"
	case d.GreaterThanOrEqual(thousand):
		return Symbol + d.Div(thousand).StringFixed(1) + "K"
	default:
		return Symbol + d.String()
	}
}

// groupIndian puts a comma before the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(append(groups, tail), ",")
}
