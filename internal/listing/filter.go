package listing

import "strings"

var lowFloors = map[string]struct{}{
	"1": {},
	"2": {},
	"3": {},
	"저": {},
}

// FloorToken returns the unit's floor from "5/15" style values.
func FloorToken(floorInfo string) string {
	floor, _, _ := strings.Cut(floorInfo, "/")
	return strings.TrimSpace(floor)
}

func IsLowFloor(floorInfo string) bool {
	token := FloorToken(floorInfo)
	if token == "" {
		return true
	}
	_, ok := lowFloors[token]
	return ok
}

// FilterLowFloors drops rows on floors 1-3, rows marked 저 and rows with no floor.
// With exclude unset the input is returned as is.
func FilterLowFloors(rows []Row, exclude bool) []Row {
	if !exclude {
		return rows
	}

	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !IsLowFloor(row.Floor) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
