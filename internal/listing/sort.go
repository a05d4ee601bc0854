package listing

import (
	"cmp"
	"fmt"
	"slices"
)

type SortKey string

const (
	SortByPrice SortKey = ColumnPrice
	SortByName  SortKey = ColumnName
	SortByYear  SortKey = ColumnYear
	SortByArea  SortKey = ColumnArea
	SortByUnits SortKey = ColumnUnits
)

var SortKeys = []SortKey{SortByPrice, SortByName, SortByYear, SortByArea, SortByUnits}

func ParseSortKey(s string) (SortKey, error) {
	for _, key := range SortKeys {
		if string(key) == s {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown sort key: %q", s)
}

// compareOptional puts nil after any value regardless of direction.
func compareOptional[T cmp.Ordered](a *T, b *T, ascending bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	c := cmp.Compare(*a, *b)
	if !ascending {
		c = -c
	}
	return c
}

func ptr[T any](v T) *T {
	return &v
}

func compareBy(key SortKey, a Row, b Row, ascending bool) int {
	switch key {
	case SortByPrice:
		return compareOptional(ptr(ParsePrice(a.Price)), ptr(ParsePrice(b.Price)), ascending)
	case SortByName:
		return compareOptional(ptr(a.Name), ptr(b.Name), ascending)
	case SortByYear:
		return compareOptional(a.Year, b.Year, ascending)
	case SortByArea:
		return compareOptional(ParseArea(a.Area), ParseArea(b.Area), ascending)
	case SortByUnits:
		return compareOptional(a.Units, b.Units, ascending)
	}
	return 0
}

// Sort returns a stably sorted copy. Price and area are compared numerically.
func Sort(rows []Row, ascending bool, keys ...SortKey) []Row {
	sorted := slices.Clone(rows)
	if len(keys) == 0 {
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b Row) int {
		for _, key := range keys {
			if c := compareBy(key, a, b, ascending); c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted
}
