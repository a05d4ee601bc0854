package naverland

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/mishannn/landparser-go/internal/geo"
	"github.com/mishannn/landparser-go/internal/geocode"
	"github.com/mishannn/landparser-go/internal/utils"
)

const singleMarkersPath = "/api/complexes/single-markers/2.0"

// Unresolved replaces district names that reverse geocoding could not provide.
const Unresolved = "unresolved"

type Marker struct {
	ComplexNo           string  `json:"markerId"`
	Lat                 float64 `json:"latitude"`
	Lon                 float64 `json:"longitude"`
	ComplexName         string  `json:"complexName"`
	CompletionYearMonth string  `json:"completionYearMonth"`
	TotalHouseholdCount string  `json:"totalHouseholdCount"`
	DealCount           int     `json:"dealCount"`
	LeaseCount          int     `json:"leaseCount"`
	RentCount           int     `json:"rentCount"`
	DivisionName        string  `json:"divisionName"`
	CortarName          string  `json:"cortarName"`
}

type markerItem struct {
	MarkerID            FlexString `json:"markerId"`
	Latitude            *float64   `json:"latitude"`
	Longitude           *float64   `json:"longitude"`
	ComplexName         string     `json:"complexName"`
	CompletionYearMonth FlexString `json:"completionYearMonth"`
	TotalHouseholdCount FlexString `json:"totalHouseholdCount"`
	DealCount           FlexInt    `json:"dealCount"`
	LeaseCount          FlexInt    `json:"leaseCount"`
	RentCount           FlexInt    `json:"rentCount"`
}

func (m markerItem) coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: *m.Latitude, Lon: *m.Longitude}
}

func (p *Parser) markersQuery(district *District, box geo.Box) url.Values {
	query := url.Values{}
	query.Set("cortarNo", district.CortarNo.String())
	query.Set("zoom", strconv.Itoa(p.cfg.Zoom))
	query.Set("priceType", priceType)
	query.Set("markerId", "")
	query.Set("markerType", "")
	query.Set("selectedComplexNo", "")
	query.Set("selectedComplexBuildingNo", "")
	query.Set("fakeComplexMarker", "")
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
	query.Set("minHouseHoldCount", strconv.Itoa(p.cfg.MinHouseholdCount))
	query.Set("maxHouseHoldCount", "")
	query.Set("showArticle", "false")
	query.Set("sameAddressGroup", "false")
	query.Set("minMaintenanceCost", "")
	query.Set("maxMaintenanceCost", "")
	query.Set("directions", "")
	query.Set("leftLon", strconv.FormatFloat(box.LeftLon, 'f', -1, 64))
	query.Set("rightLon", strconv.FormatFloat(box.RightLon, 'f', -1, 64))
	query.Set("topLat", strconv.FormatFloat(box.TopLat, 'f', -1, 64))
	query.Set("bottomLat", strconv.FormatFloat(box.BottomLat, 'f', -1, 64))
	query.Set("isPresale", "false")
	return query
}

func (p *Parser) searchMarkers(ctx context.Context, district *District) ([]markerItem, error) {
	box, err := geo.PolygonBound(district.Polygon())
	if err != nil {
		return nil, fmt.Errorf("can't get polygon bound: %w", err)
	}

	respBody, err := p.get(ctx, singleMarkersPath, p.markersQuery(district, box))
	if err != nil {
		return nil, err
	}

	var rawItems []json.RawMessage
	err = json.Unmarshal(respBody, &rawItems)
	if err != nil {
		return nil, fmt.Errorf("can't parse response body as list: %w", err)
	}

	items := make([]markerItem, 0, len(rawItems))
	for _, rawItem := range rawItems {
		var item markerItem
		err := json.Unmarshal(rawItem, &item)
		if err != nil || item.MarkerID == "" || item.Latitude == nil || item.Longitude == nil {
			p.logger.Warn("skip invalid marker", zap.ByteString("item", rawItem))
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func (p *Parser) clip(district *District, items []markerItem) []markerItem {
	polygon, err := geo.NewPolygon(district.Polygon())
	if err != nil {
		p.logger.Warn("can't build district polygon, markers are not clipped", zap.Error(err))
		return items
	}

	clipped := make([]markerItem, 0, len(items))
	for _, item := range items {
		if polygon.Contains(*item.Latitude, *item.Longitude) {
			clipped = append(clipped, item)
		}
	}
	return clipped
}

// GetMarkers finds complexes inside the district's bounding box and names each one by its own coordinate.
// Only an unauthorized geocoder is reported as an error; other failures degrade to fewer markers.
func (p *Parser) GetMarkers(ctx context.Context, district *District) ([]Marker, error) {
	items, err := p.searchMarkers(ctx, district)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("can't search markers", zap.String("cortarNo", district.CortarNo.String()), zap.Error(err))
		return nil, nil
	}

	items = utils.UniqueBy(items, markerItem.coordinate)

	if p.cfg.ClipToPolygon {
		items = p.clip(district, items)
	}

	markers := make([]Marker, 0, len(items))
	for i, item := range items {
		if i > 0 {
			if err := sleep(ctx, p.cfg.GeocodeDelay); err != nil {
				return nil, err
			}
		}

		region, err := p.geocoder.Reverse(ctx, *item.Latitude, *item.Longitude)
		if errors.Is(err, geocode.ErrUnauthorized) {
			return nil, fmt.Errorf("can't reverse geocode marker %s: %w", item.MarkerID, err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("can't reverse geocode marker", zap.String("markerId", item.MarkerID.String()), zap.Error(err))
			region = geocode.Region{Division: Unresolved, Neighborhood: Unresolved}
		}

		markers = append(markers, Marker{
			ComplexNo:           item.MarkerID.String(),
			Lat:                 *item.Latitude,
			Lon:                 *item.Longitude,
			ComplexName:         item.ComplexName,
			CompletionYearMonth: item.CompletionYearMonth.String(),
			TotalHouseholdCount: item.TotalHouseholdCount.String(),
			DealCount:           int(item.DealCount),
			LeaseCount:          int(item.LeaseCount),
			RentCount:           int(item.RentCount),
			DivisionName:        region.Division,
			CortarName:          region.Neighborhood,
		})
	}

	p.logger.Info("markers collected", zap.String("cortarNo", district.CortarNo.String()), zap.Int("count", len(markers)))

	return markers, nil
}
