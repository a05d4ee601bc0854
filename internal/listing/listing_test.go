package listing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishannn/landparser-go/internal/naverland"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testArticle() naverland.Article {
	return naverland.Article{
		ArticleNo:           "2400001",
		ArticleName:         "래미안",
		BuildingName:        "101동",
		DealOrWarrantPrc:    "10억 5,000",
		TradeTypeName:       TradeSale,
		FloorInfo:           "5/15",
		AreaName:            "84A",
		Direction:           "남향",
		ArticleFeatureDesc:  "역세권 대단지",
		TagList:             []string{"25년이내", "대단지"},
		RealtorName:         "행복공인중개사",
		SameAddrCnt:         "3",
		CpName:              "부동산뱅크",
		MarkerID:            "12345",
		Lat:                 floatPtr(37.505),
		Lon:                 floatPtr(127.005),
		CompletionYearMonth: "202001",
		TotalHouseholdCount: "500",
		DivisionName:        "강남구",
		CortarName:          "역삼동",
	}
}

func TestNormalize(t *testing.T) {
	rows := Normalize([]naverland.Article{testArticle()})
	require.Len(t, rows, 1)

	assert.Equal(t, Row{
		Name:          "래미안",
		District:      "강남구",
		Neighborhood:  "역삼동",
		Year:          intPtr(2020),
		Units:         intPtr(500),
		Building:      "101동",
		Price:         "10억 5,000",
		TradeType:     TradeSale,
		Floor:         "5/15",
		Area:          "84A",
		Direction:     "남향",
		Feature:       "역세권 대단지",
		Tags:          "25년이내, 대단지",
		Realtor:       "행복공인중개사",
		SameAddrCount: intPtr(3),
		Provider:      "부동산뱅크",
		Link:          "https://new.land.naver.com/complexes/12345?ms=37.505,127.005,15&a=APT:PRE&b=A1&e=RETAIL&l=300&ad=true&articleNo=2400001",
	}, rows[0])
	assert.Len(t, rows[0].Values(), len(Columns))
}

func TestNormalize_IsIdempotent(t *testing.T) {
	articles := []naverland.Article{testArticle(), {ArticleName: strings.Repeat("가", 70)}, {}}

	assert.Equal(t, Normalize(articles), Normalize(articles))
}

func TestNormalize_MissingValues(t *testing.T) {
	article := testArticle()
	article.Lat = nil
	article.CompletionYearMonth = "준공예정"
	article.TotalHouseholdCount = ""
	article.SameAddrCnt = "many"

	row := NormalizeArticle(article)

	assert.Empty(t, row.Link)
	assert.Nil(t, row.Year)
	assert.Nil(t, row.Units)
	assert.Nil(t, row.SameAddrCount)
	assert.Equal(t, "래미안", row.Name)
	assert.Nil(t, row.Values()[3])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 50))
	assert.Equal(t, strings.Repeat("가", 50), Truncate(strings.Repeat("가", 50), 50))
	assert.Equal(t, strings.Repeat("가", 40)+"...", Truncate(strings.Repeat("가", 41), 40))

	row := NormalizeArticle(naverland.Article{
		ArticleName:        strings.Repeat("a", 60),
		ArticleFeatureDesc: strings.Repeat("b", 51),
		TagList:            []string{strings.Repeat("c", 30), strings.Repeat("d", 30)},
		RealtorName:        strings.Repeat("e", 40),
	})
	assert.Equal(t, strings.Repeat("a", 50)+"...", row.Name)
	assert.Equal(t, strings.Repeat("b", 50)+"...", row.Feature)
	assert.Equal(t, 43, len(row.Tags))
	assert.Equal(t, strings.Repeat("e", 40), row.Realtor)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "10억 5,000", want: 1_050_000_000},
		{in: "10억", want: 1_000_000_000},
		{in: "5,000", want: 50_000_000},
		{in: "0", want: 0},
		{in: "-1억 2,000", want: -120_000_000},
		{in: "협의", want: 0},
		{in: "", want: 0},
		{in: "억", want: 0},
		{in: "1억 abc", want: 100_000_000},
		{in: "100000000000억", want: 0},
		{in: "100000000000억 5,000", want: 50_000_000},
		{in: "-100000000000억", want: 0},
		{in: "9223372036854775807", want: 0},
		{in: "92233720368억", want: 9_223_372_036_800_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.in))
		})
	}
}

func TestParsePrice_RoundTrip(t *testing.T) {
	for _, eok := range []int64{0, 1, 9, 10, 123} {
		for _, rem := range []int64{0, 1, 999, 1000, 5000, 9999} {
			formatted := fmt.Sprintf("%d억 %s", eok, groupThousands(rem))
			assert.Equal(t, eok*100_000_000+rem*10_000, ParsePrice(formatted), formatted)
		}
	}
}

func groupThousands(v int64) string {
	s := fmt.Sprint(v)
	if len(s) <= 3 {
		return s
	}
	return s[:len(s)-3] + "," + s[len(s)-3:]
}

func TestParseArea(t *testing.T) {
	assert.Equal(t, 84.0, *ParseArea("84A"))
	assert.Equal(t, 112.5, *ParseArea("112.5/84"))
	assert.Nil(t, ParseArea("없음"))

	assert.Equal(t, 25.5, *Pyeong(floatPtr(84)))
	assert.Nil(t, Pyeong(floatPtr(0)))
	assert.Nil(t, Pyeong(nil))
}

func TestFilterLowFloors(t *testing.T) {
	rows := []Row{
		{Name: "a", Floor: "1/15"},
		{Name: "b", Floor: "3/20"},
		{Name: "c", Floor: "저/15"},
		{Name: "d", Floor: "4/15"},
		{Name: "e", Floor: "고/20"},
		{Name: "f", Floor: ""},
		{Name: "g", Floor: "12"},
	}

	assert.Equal(t, rows, FilterLowFloors(rows, false))

	filtered := FilterLowFloors(rows, true)
	names := make([]string, 0, len(filtered))
	for _, row := range filtered {
		names = append(names, row.Name)
	}
	assert.Equal(t, []string{"d", "e", "g"}, names)
}

func TestSort(t *testing.T) {
	rows := []Row{
		{Name: "a", Price: "5,000", Area: "84A", Year: intPtr(2010)},
		{Name: "b", Price: "1억", Area: "59B", Year: nil},
		{Name: "c", Price: "9,000", Area: "", Year: intPtr(2020)},
		{Name: "d", Price: "5,000", Area: "114", Year: intPtr(2010)},
	}

	names := func(rows []Row) string {
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(row.Name)
		}
		return b.String()
	}

	assert.Equal(t, "adcb", names(Sort(rows, true, SortByPrice)))
	assert.Equal(t, "bcad", names(Sort(rows, false, SortByPrice)))
	assert.Equal(t, "badc", names(Sort(rows, true, SortByArea)))
	assert.Equal(t, "adcb", names(Sort(rows, true, SortByYear)))
	assert.Equal(t, "cadb", names(Sort(rows, false, SortByYear)))
	assert.Equal(t, "bcda", names(Sort(rows, false, SortByPrice, SortByArea)))
	assert.Equal(t, "abcd", names(rows))
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("가격")
	require.NoError(t, err)
	assert.Equal(t, SortByPrice, key)

	_, err = ParseSortKey("층수")
	assert.Error(t, err)
}
