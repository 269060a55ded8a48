package market

import (
	"fmt"
	"strings"
)

// groupDigits inserts thousands separators into a plain integer string.
func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}

// fmtUSD renders a price like $67,432.18.
func fmtUSD(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	return "$" + groupDigits(s[:dot]) + s[dot:]
}

// fmtBig renders a large amount like $1,234,567 with no decimals.
func fmtBig(v float64) string {
	return "$" + groupDigits(fmt.Sprintf("%.0f", v))
}

// fmtQty renders a quantity like 84,213.55.
func fmtQty(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	return groupDigits(s[:dot]) + s[dot:]
}
