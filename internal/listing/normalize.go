package listing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mishannn/landparser-go/internal/naverland"
)

const (
	nameMaxLength    = 50
	featureMaxLength = 50
	tagsMaxLength    = 40
	realtorMaxLength = 40

	ellipsis = "..."

	articleURLTemplate = "https://new.land.naver.com/complexes/%s?ms=%s,%s,15&a=APT:PRE&b=A1&e=RETAIL&l=300&ad=true&articleNo=%s"
)

// Truncate cuts s to maxLength runes and marks the cut with "...".
func Truncate(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength]) + ellipsis
}

// ArticleURL returns "" when any part of the link is missing.
func ArticleURL(articleNo string, complexNo string, lat *float64, lon *float64) string {
	if articleNo == "" || complexNo == "" || lat == nil || lon == nil {
		return ""
	}

	return fmt.Sprintf(articleURLTemplate,
		complexNo,
		strconv.FormatFloat(*lat, 'f', -1, 64),
		strconv.FormatFloat(*lon, 'f', -1, 64),
		articleNo,
	)
}

func NormalizeArticle(article naverland.Article) Row {
	return Row{
		Name:          Truncate(article.ArticleName, nameMaxLength),
		District:      article.DivisionName,
		Neighborhood:  article.CortarName,
		Year:          ParseYear(article.CompletionYearMonth),
		Units:         parseInt(article.TotalHouseholdCount),
		Building:      article.BuildingName,
		Price:         article.DealOrWarrantPrc,
		TradeType:     article.TradeTypeName,
		Floor:         article.FloorInfo,
		Area:          article.AreaName,
		Direction:     article.Direction,
		Feature:       Truncate(article.ArticleFeatureDesc, featureMaxLength),
		Tags:          Truncate(strings.Join(article.TagList, ", "), tagsMaxLength),
		Realtor:       Truncate(article.RealtorName, realtorMaxLength),
		SameAddrCount: parseInt(article.SameAddrCnt.String()),
		Provider:      article.CpName,
		Link:          ArticleURL(article.ArticleNo.String(), article.MarkerID, article.Lat, article.Lon),
	}
}

// Normalize projects articles onto display rows, keeping their order.
func Normalize(articles []naverland.Article) []Row {
	rows := make([]Row, 0, len(articles))
	for _, article := range articles {
		rows = append(rows, NormalizeArticle(article))
	}
	return rows
}
