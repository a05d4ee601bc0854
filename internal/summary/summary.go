package summary

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mishannn/landparser-go/internal/listing"
)

// ExcludedProvider lists association-wide listings that duplicate realtor ones.
const ExcludedProvider = "한국공인중개사협회"

const (
	ColumnDistrict      = "구"
	ColumnNeighborhood  = "동"
	ColumnName          = "아파트명"
	ColumnYear          = "연식"
	ColumnUnits         = "총세대수"
	ColumnArea          = "공급면적"
	ColumnPyeong        = "평형"
	ColumnSaleCount     = "매매개수"
	ColumnLeaseCount    = "전세개수"
	ColumnSaleMean      = "매매평균"
	ColumnSaleMedian    = "매매중간"
	ColumnSaleMax       = "매매최대"
	ColumnSaleMin       = "매매최소"
	ColumnLeaseMean     = "전세평균"
	ColumnLeaseMedian   = "전세중간"
	ColumnLeaseMax      = "전세최대"
	ColumnLeaseMin      = "전세최소"
	ColumnGap           = "갭(매매-전세)(평균)"
	ColumnSelectionName = "지역구분"
)

var Columns = []string{
	ColumnDistrict,
	ColumnNeighborhood,
	ColumnName,
	ColumnYear,
	ColumnUnits,
	ColumnArea,
	ColumnPyeong,
	ColumnSaleCount,
	ColumnLeaseCount,
	ColumnSaleMean,
	ColumnSaleMedian,
	ColumnSaleMax,
	ColumnSaleMin,
	ColumnLeaseMean,
	ColumnLeaseMedian,
	ColumnLeaseMax,
	ColumnLeaseMin,
	ColumnGap,
}

// Stats describes prices of one trade type. Count is zero and the rest nil when there are no prices.
type Stats struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Max    *float64 `json:"max"`
	Min    *float64 `json:"min"`
}

type Row struct {
	District     string   `json:"구"`
	Neighborhood string   `json:"동"`
	Name         string   `json:"아파트명"`
	Year         *int     `json:"연식"`
	Units        *int     `json:"총세대수"`
	Area         string   `json:"공급면적"`
	Pyeong       *float64 `json:"평형"`
	Sale         Stats    `json:"매매"`
	Lease        Stats    `json:"전세"`
	Gap          *float64 `json:"갭(매매-전세)(평균)"`
}

// Values returns the row in Columns order with prices rendered by FormatEok.
func (r Row) Values() []any {
	return []any{
		r.District,
		r.Neighborhood,
		r.Name,
		optional(r.Year),
		optional(r.Units),
		r.Area,
		optional(r.Pyeong),
		r.Sale.Count,
		r.Lease.Count,
		FormatEok(r.Sale.Mean),
		FormatEok(r.Sale.Median),
		FormatEok(r.Sale.Max),
		FormatEok(r.Sale.Min),
		FormatEok(r.Lease.Mean),
		FormatEok(r.Lease.Median),
		FormatEok(r.Lease.Max),
		FormatEok(r.Lease.Min),
		FormatEok(r.Gap),
	}
}

func optional[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

type optionalInt struct {
	value int
	valid bool
}

type optionalFloat struct {
	value float64
	valid bool
}

func newOptionalInt(v *int) optionalInt {
	if v == nil {
		return optionalInt{}
	}
	return optionalInt{value: *v, valid: true}
}

func newOptionalFloat(v *float64) optionalFloat {
	if v == nil {
		return optionalFloat{}
	}
	return optionalFloat{value: *v, valid: true}
}

type groupKey struct {
	district     string
	neighborhood string
	name         string
	area         string
	pyeong       optionalFloat
	year         optionalInt
	units        optionalInt
}

type group struct {
	row         Row
	salePrices  []float64
	leasePrices []float64
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func newStats(prices []float64) Stats {
	if len(prices) == 0 {
		return Stats{}
	}

	sorted := slices.Clone(prices)
	slices.Sort(sorted)

	mean := stat.Mean(sorted, nil)
	med := median(sorted)
	maxPrice := floats.Max(sorted)
	minPrice := floats.Min(sorted)

	return Stats{
		Count:  len(prices),
		Mean:   &mean,
		Median: &med,
		Max:    &maxPrice,
		Min:    &minPrice,
	}
}

func gap(sale Stats, lease Stats) *float64 {
	if sale.Mean == nil || lease.Mean == nil {
		return nil
	}
	v := *sale.Mean - *lease.Mean
	return &v
}

// Build groups rows by complex and area and computes sale and lease price statistics.
// Groups keep the order in which they first appear.
func Build(rows []listing.Row) []Row {
	index := map[groupKey]int{}
	groups := make([]*group, 0)

	for _, row := range rows {
		if row.Provider == ExcludedProvider {
			continue
		}

		pyeong := listing.Pyeong(listing.ParseArea(row.Area))
		key := groupKey{
			district:     row.District,
			neighborhood: row.Neighborhood,
			name:         row.Name,
			area:         row.Area,
			pyeong:       newOptionalFloat(pyeong),
			year:         newOptionalInt(row.Year),
			units:        newOptionalInt(row.Units),
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, &group{row: Row{
				District:     row.District,
				Neighborhood: row.Neighborhood,
				Name:         row.Name,
				Year:         row.Year,
				Units:        row.Units,
				Area:         row.Area,
				Pyeong:       pyeong,
			}})
		}

		price := float64(listing.ParsePrice(row.Price))
		switch row.TradeType {
		case listing.TradeSale:
			groups[i].salePrices = append(groups[i].salePrices, price)
		case listing.TradeLease:
			groups[i].leasePrices = append(groups[i].leasePrices, price)
		}
	}

	summary := make([]Row, 0, len(groups))
	for _, g := range groups {
		row := g.row
		row.Sale = newStats(g.salePrices)
		row.Lease = newStats(g.leasePrices)
		row.Gap = gap(row.Sale, row.Lease)
		summary = append(summary, row)
	}

	return summary
}

// CompareGap orders gaps ascending with nil last.
func CompareGap(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

// SortByGap returns a stably sorted copy, smallest gap first and missing gaps last.
func SortByGap(rows []Row) []Row {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b Row) int {
		return CompareGap(a.Gap, b.Gap)
	})
	return sorted
}
