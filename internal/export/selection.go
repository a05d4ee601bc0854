package export

import (
	"strings"

	"github.com/mishannn/landparser-go/internal/listing"
	"github.com/mishannn/landparser-go/internal/summary"
)

const lowFloorsExcludedSuffix = "_저층제외"

// Selection is a saved area snapshot consumed by the combined report.
type Selection struct {
	Division         string        `json:"division"`
	Neighborhood     string        `json:"neighborhood"`
	ExcludeLowFloors bool          `json:"excludeLowFloors"`
	Detail           []listing.Row `json:"detail"`
	Summary          []summary.Row `json:"summary"`
}

func (s Selection) DisplayName() string {
	name := s.Division + " " + s.Neighborhood
	if s.ExcludeLowFloors {
		name += lowFloorsExcludedSuffix
	}
	return name
}

func (s Selection) tradeCount(tradeType string) int {
	count := 0
	for _, row := range s.Detail {
		if row.TradeType == tradeType {
			count++
		}
	}
	return count
}

func AreaFileName(areaName string, date string, excludeLowFloors bool) string {
	name := areaName + "_" + date
	if excludeLowFloors {
		name += lowFloorsExcludedSuffix
	}
	return name + ".xlsx"
}

func CombinedFileName(selections []Selection, date string) string {
	detail := ""
	if len(selections) > 0 {
		first := selections[0]
		detail = "(" + strings.ReplaceAll(first.Division, " ", "_") + " " + strings.ReplaceAll(first.Neighborhood, " ", "_")
		if len(selections) > 1 {
			detail += " 외"
		}
		detail += ")"
	}
	return "종합_부동산_분석" + detail + "_" + date + ".xlsx"
}

// DateLayout formats the date stamp used in file and sheet names.
const DateLayout = "20060102"
