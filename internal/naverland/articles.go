package naverland

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/mishannn/landparser-go/internal/utils"
)

const articlesPathPrefix = "/api/articles/complex/"

// Article is one listing with its complex's metadata copied in.
type Article struct {
	ArticleNo          FlexString `json:"articleNo"`
	ArticleName        string     `json:"articleName"`
	BuildingName       string     `json:"buildingName"`
	DealOrWarrantPrc   string     `json:"dealOrWarrantPrc"`
	TradeTypeName      string     `json:"tradeTypeName"`
	FloorInfo          string     `json:"floorInfo"`
	AreaName           string     `json:"areaName"`
	Direction          string     `json:"direction"`
	ArticleFeatureDesc string     `json:"articleFeatureDesc"`
	TagList            []string   `json:"tagList"`
	RealtorName        string     `json:"realtorName"`
	SameAddrCnt        FlexString `json:"sameAddrCnt"`
	CpName             string     `json:"cpName"`

	MarkerID            string   `json:"markerId"`
	Lat                 *float64 `json:"latitude"`
	Lon                 *float64 `json:"longitude"`
	ComplexName         string   `json:"complexName"`
	CompletionYearMonth string   `json:"completionYearMonth"`
	TotalHouseholdCount string   `json:"totalHouseholdCount"`
	DivisionName        string   `json:"divisionName"`
	CortarName          string   `json:"cortarName"`
}

type articlesResponseBody struct {
	ArticleList []Article `json:"articleList"`
	IsMoreData  bool      `json:"isMoreData"`
}

func articlesQuery(complexNo string, page int) url.Values {
	query := url.Values{}
	query.Set("realEstateType", realEstateType)
	query.Set("tradeType", "")
	query.Set("tag", emptyTagFilter)
	query.Set("rentPriceMin", "0")
	query.Set("rentPriceMax", maxRangeValue)
	query.Set("priceMin", "0")
	query.Set("priceMax", maxRangeValue)
	query.Set("areaMin", "0")
	query.Set("areaMax", maxRangeValue)
	query.Set("oldBuildYears", "")
	query.Set("recentlyBuildYears", "")
	query.Set("minHouseHoldCount", "")
	query.Set("maxHouseHoldCount", "")
	query.Set("showArticle", "false")
	query.Set("sameAddressGroup", "true")
	query.Set("minMaintenanceCost", "")
	query.Set("maxMaintenanceCost", "")
	query.Set("priceType", priceType)
	query.Set("directions", "")
	query.Set("page", strconv.Itoa(page))
	query.Set("complexNo", complexNo)
	query.Set("buildingNos", "")
	query.Set("areaNos", "")
	query.Set("type", "list")
	query.Set("order", "prc")
	return query
}

func (p *Parser) getArticlesPage(ctx context.Context, complexNo string, page int) ([]Article, bool, error) {
	respBody, err := p.get(ctx, articlesPathPrefix+url.PathEscape(complexNo), articlesQuery(complexNo, page))
	if err != nil {
		return nil, false, err
	}

	var body articlesResponseBody
	err = json.Unmarshal(respBody, &body)
	if err != nil {
		return nil, false, fmt.Errorf("can't parse response body: %w", err)
	}

	return body.ArticleList, body.IsMoreData, nil
}

func withMarker(article Article, marker Marker) Article {
	lat, lon := marker.Lat, marker.Lon

	article.MarkerID = marker.ComplexNo
	article.Lat = &lat
	article.Lon = &lon
	article.ComplexName = marker.ComplexName
	article.CompletionYearMonth = marker.CompletionYearMonth
	article.TotalHouseholdCount = marker.TotalHouseholdCount
	article.DivisionName = marker.DivisionName
	article.CortarName = marker.CortarName
	return article
}

// getComplexArticles pages through one complex. A failed page ends the complex but keeps earlier pages.
func (p *Parser) getComplexArticles(ctx context.Context, marker Marker) ([]Article, error) {
	articles := make([]Article, 0)

	for page := 1; page <= p.cfg.MaxPages; page++ {
		if page > 1 {
			if err := sleep(ctx, p.cfg.PageDelay); err != nil {
				return articles, err
			}
		}

		pageArticles, isMoreData, err := p.getArticlesPage(ctx, marker.ComplexNo, page)
		if err != nil {
			if ctx.Err() != nil {
				return articles, ctx.Err()
			}
			p.logger.Warn("can't get articles page",
				zap.String("complexNo", marker.ComplexNo),
				zap.Int("page", page),
				zap.Error(err))
			break
		}

		for _, article := range pageArticles {
			articles = append(articles, withMarker(article, marker))
		}

		if !isMoreData || len(pageArticles) == 0 {
			break
		}
	}

	return articles, nil
}

func (p *Parser) GetArticles(ctx context.Context, markers []Marker) ([]Article, error) {
	workerPool := utils.NewWorkerPool(p.getComplexArticles, p.cfg.MaxWorkersCollectArticles)
	workerPool.OnProgress(func(current, total int) {
		p.logger.Debug("get articles progress", zap.Int("percent", current*100/total))
	})

	articlesList, err := workerPool.Map(ctx, markers)
	if err != nil {
		return nil, fmt.Errorf("can't get articles: %w", err)
	}

	articles := make([]Article, 0)
	for _, complexArticles := range articlesList {
		articles = append(articles, complexArticles...)
	}

	p.logger.Info("articles collected", zap.Int("complexes", len(markers)), zap.Int("count", len(articles)))

	return articles, nil
}
