package summary

import (
	"math"
	"strconv"
	"strings"
)

func groupThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatEok renders won as "N억 M,MMM" with M in 만원. Amounts under 1억 are plain 만원 and nil is "".
func FormatEok(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}

	sign := ""
	if *v < 0 {
		sign = "-"
	}
	abs := math.Abs(*v)

	eok := int64(math.Floor(abs / 1e8))
	remainder := int64(math.Floor(math.Mod(abs, 1e8) / 1e4))

	if eok == 0 {
		if remainder == 0 {
			return "0"
		}
		return sign + groupThousands(remainder)
	}

	if remainder > 0 {
		return sign + strconv.FormatInt(eok, 10) + "억 " + groupThousands(remainder)
	}
	return sign + strconv.FormatInt(eok, 10) + "억"
}
