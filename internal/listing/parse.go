package listing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	eokUnit = 100_000_000
	manUnit = 10_000
	eokMark = "억"
)

var areaRegexp = regexp.MustCompile(`\d+(\.\d+)?`)

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParsePrice converts a price like "10억 5,000" to won. Amounts without the 억 mark are in 만원,
// so "5,000" is 50,000,000. Unparsable input is 0.
func ParsePrice(price string) int64 {
	s := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(price))

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var eok, man string
	if head, tail, found := strings.Cut(s, eokMark); found {
		eok, man = head, tail
	} else if isDigits(s) {
		man = s
	} else {
		return 0
	}

	// a malformed or out of range part of "N억 M" contributes nothing
	var total int64
	if isDigits(eok) {
		v, err := strconv.ParseInt(eok, 10, 64)
		if err == nil && v <= math.MaxInt64/eokUnit {
			total += v * eokUnit
		}
	}
	if isDigits(man) {
		v, err := strconv.ParseInt(man, 10, 64)
		if err == nil && v <= (math.MaxInt64-total)/manUnit {
			total += v * manUnit
		}
	}

	if negative {
		return -total
	}
	return total
}

// ParseArea returns the first decimal number in an area label such as "84A" or "112/84".
func ParseArea(area string) *float64 {
	match := areaRegexp.FindString(area)
	if match == "" {
		return nil
	}

	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Pyeong converts square meters to pyeong rounded to one decimal.
func Pyeong(area *float64) *float64 {
	if area == nil || *area == 0 {
		return nil
	}

	v := math.Round(*area/3.3*10) / 10
	return &v
}

// ParseYear takes the first four characters of a completion date like "202001".
func ParseYear(completionYearMonth string) *int {
	s := strings.TrimSpace(completionYearMonth)
	if len(s) < 4 || !isDigits(s[:4]) {
		return nil
	}

	v, _ := strconv.Atoi(s[:4])
	return &v
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	v := int(f)
	return &v
}
