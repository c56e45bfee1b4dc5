package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is shown for values that cannot be computed, such as a
// percentage change against a zero baseline.
const NotAvailable = "n/a"

// FormatMoney renders an amount in Brazilian reais, e.g. "R$ 1.234,56".
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	fixed := d.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")
	return sign + "R$ " + groupThousands(whole) + "," + cents
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPercent renders a signed percentage with one decimal, or n/a for nil.
func FormatPercent(p *float64) string {
	if p == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%+.1f%%", *p)
}
