package listing

const (
	ColumnName          = "매물명"
	ColumnDistrict      = "구"
	ColumnNeighborhood  = "동"
	ColumnYear          = "연식"
	ColumnUnits         = "총세대수"
	ColumnBuilding      = "동/건물명"
	ColumnPrice         = "가격"
	ColumnTradeType     = "거래유형"
	ColumnFloor         = "층수"
	ColumnArea          = "공급면적"
	ColumnDirection     = "방향"
	ColumnFeature       = "특징"
	ColumnTags          = "태그"
	ColumnRealtor       = "중개사"
	ColumnSameAddrCount = "단지매물수"
	ColumnProvider      = "정보제공"
	ColumnLink          = "매물 링크"
)

// Columns is the display order of Row fields.
var Columns = []string{
	ColumnName,
	ColumnDistrict,
	ColumnNeighborhood,
	ColumnYear,
	ColumnUnits,
	ColumnBuilding,
	ColumnPrice,
	ColumnTradeType,
	ColumnFloor,
	ColumnArea,
	ColumnDirection,
	ColumnFeature,
	ColumnTags,
	ColumnRealtor,
	ColumnSameAddrCount,
	ColumnProvider,
	ColumnLink,
}

const (
	TradeSale  = "매매"
	TradeLease = "전세"
)

type Row struct {
	Name          string `json:"매물명"`
	District      string `json:"구"`
	Neighborhood  string `json:"동"`
	Year          *int   `json:"연식"`
	Units         *int   `json:"총세대수"`
	Building      string `json:"동/건물명"`
	Price         string `json:"가격"`
	TradeType     string `json:"거래유형"`
	Floor         string `json:"층수"`
	Area          string `json:"공급면적"`
	Direction     string `json:"방향"`
	Feature       string `json:"특징"`
	Tags          string `json:"태그"`
	Realtor       string `json:"중개사"`
	SameAddrCount *int   `json:"단지매물수"`
	Provider      string `json:"정보제공"`
	Link          string `json:"매물 링크"`
}

// Values returns the row in Columns order. Absent numbers are nil.
func (r Row) Values() []any {
	return []any{
		r.Name,
		r.District,
		r.Neighborhood,
		intOrNil(r.Year),
		intOrNil(r.Units),
		r.Building,
		r.Price,
		r.TradeType,
		r.Floor,
		r.Area,
		r.Direction,
		r.Feature,
		r.Tags,
		r.Realtor,
		intOrNil(r.SameAddrCount),
		r.Provider,
		r.Link,
	}
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
