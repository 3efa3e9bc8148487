package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatRupees renders "Rs. 48,000.00"; nil prints as "-".
func FormatRupees(amount *float64) string {
	if amount == nil {
		return "-"
	}
	v := *amount
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%sRs. %s.%02d", sign, formatThousand(cents/100), cents%100)
}

// RoundMoney rounds to the 2 decimals the DECIMAL(12,2) columns keep.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
