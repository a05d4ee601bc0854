package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishannn/landparser-go/internal/listing"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func baseRow(tradeType string, price string) listing.Row {
	return listing.Row{
		Name:         "래미안",
		District:     "강남구",
		Neighborhood: "역삼동",
		Year:         intPtr(2020),
		Units:        intPtr(500),
		Area:         "84A",
		TradeType:    tradeType,
		Price:        price,
		Provider:     "부동산뱅크",
	}
}

func TestBuild_Grouping(t *testing.T) {
	rows := []listing.Row{
		baseRow(listing.TradeSale, "100"),
		baseRow(listing.TradeSale, "300"),
	}

	summary := Build(rows)
	require.Len(t, summary, 1)

	sale := summary[0].Sale
	assert.Equal(t, 2, sale.Count)
	assert.Equal(t, 2_000_000.0, *sale.Mean)
	assert.Equal(t, 2_000_000.0, *sale.Median)
	assert.Equal(t, 3_000_000.0, *sale.Max)
	assert.Equal(t, 1_000_000.0, *sale.Min)

	assert.Equal(t, 0, summary[0].Lease.Count)
	assert.Nil(t, summary[0].Lease.Mean)
	assert.Nil(t, summary[0].Gap)
	assert.Equal(t, 25.5, *summary[0].Pyeong)
}

func TestBuild_SaleAndLease(t *testing.T) {
	rows := []listing.Row{
		baseRow(listing.TradeSale, "10억"),
		baseRow(listing.TradeLease, "6억"),
		baseRow(listing.TradeLease, "5억"),
		baseRow(listing.TradeLease, "7억 5,000"),
		baseRow("월세", "1억/150"),
	}

	summary := Build(rows)
	require.Len(t, summary, 1)

	row := summary[0]
	assert.Equal(t, 1, row.Sale.Count)
	assert.Equal(t, 3, row.Lease.Count)
	assert.Equal(t, 600_000_000.0, *row.Lease.Median)
	assert.InDelta(t, 616_666_666.67, *row.Lease.Mean, 0.01)
	assert.InDelta(t, 383_333_333.33, *row.Gap, 0.01)
}

func TestBuild_EvenMedianAndOrder(t *testing.T) {
	other := baseRow(listing.TradeSale, "1억")
	other.Name = "자이"

	rows := []listing.Row{
		other,
		baseRow(listing.TradeSale, "1억"),
		baseRow(listing.TradeSale, "4억"),
		baseRow(listing.TradeSale, "2억"),
		baseRow(listing.TradeSale, "3억"),
	}

	summary := Build(rows)
	require.Len(t, summary, 2)
	assert.Equal(t, "자이", summary[0].Name)
	assert.Equal(t, "래미안", summary[1].Name)
	assert.Equal(t, 250_000_000.0, *summary[1].Sale.Median)
}

func TestBuild_ExcludesAssociationListings(t *testing.T) {
	excluded := baseRow(listing.TradeSale, "100억")
	excluded.Provider = ExcludedProvider

	summary := Build([]listing.Row{excluded, baseRow(listing.TradeSale, "1억")})
	require.Len(t, summary, 1)
	assert.Equal(t, 1, summary[0].Sale.Count)
	assert.Equal(t, 100_000_000.0, *summary[0].Sale.Max)
}

func TestBuild_NullKeysFormTheirOwnGroup(t *testing.T) {
	unknownYear := baseRow(listing.TradeSale, "1억")
	unknownYear.Year = nil

	summary := Build([]listing.Row{unknownYear, baseRow(listing.TradeSale, "1억"), unknownYear})
	require.Len(t, summary, 2)
	assert.Nil(t, summary[0].Year)
	assert.Equal(t, 2, summary[0].Sale.Count)
}

func TestSortByGap(t *testing.T) {
	rows := []Row{
		{Name: "none"},
		{Name: "big", Gap: floatPtr(5e8)},
		{Name: "negative", Gap: floatPtr(-1e7)},
		{Name: "none2"},
		{Name: "small", Gap: floatPtr(1e8)},
	}

	sorted := SortByGap(rows)
	names := make([]string, 0, len(sorted))
	for _, row := range sorted {
		names = append(names, row.Name)
	}
	assert.Equal(t, []string{"negative", "small", "big", "none", "none2"}, names)
	assert.Equal(t, "none", rows[0].Name)
}

func TestFormatEok(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{in: nil, want: ""},
		{in: floatPtr(0), want: "0"},
		{in: floatPtr(1_050_000_000), want: "10억 5,000"},
		{in: floatPtr(1_000_000_000), want: "10억"},
		{in: floatPtr(50_000_000), want: "5,000"},
		{in: floatPtr(9_990_000), want: "999"},
		{in: floatPtr(-383_333_333.33), want: "-3억 8,333"},
		{in: floatPtr(12_345_678_900_000), want: "123456억 7,890"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEok(tt.in))
		})
	}
}

func TestRow_Values(t *testing.T) {
	summary := Build([]listing.Row{baseRow(listing.TradeSale, "10억 5,000")})
	require.Len(t, summary, 1)

	values := summary[0].Values()
	require.Len(t, values, len(Columns))
	assert.Equal(t, "래미안", values[2])
	assert.Equal(t, 2020, values[3])
	assert.Equal(t, 1, values[7])
	assert.Equal(t, "10억 5,000", values[9])
	assert.Equal(t, "", values[13])
	assert.Equal(t, "", values[17])
}
