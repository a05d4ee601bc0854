package naverland

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mishannn/landparser-go/internal/geo"
)

const cortarsPath = "/api/cortars"

var ErrDistrictNotFound = errors.New("district boundary not found")

type District struct {
	CortarNo          FlexString     `json:"cortarNo"`
	CortarName        string         `json:"cortarName"`
	CityName          string         `json:"cityName"`
	DivisionName      string         `json:"divisionName"`
	SectorName        string         `json:"sectorName"`
	CityNo            FlexString     `json:"cityNo"`
	DivisionNo        FlexString     `json:"divisionNo"`
	SectorNo          FlexString     `json:"sectorNo"`
	CortarType        string         `json:"cortarType"`
	CenterLat         float64        `json:"centerLat"`
	CenterLon         float64        `json:"centerLon"`
	CortarZoom        FlexInt        `json:"cortarZoom"`
	CortarVertexLists [][]geo.Vertex `json:"cortarVertexLists"`
}

// Polygon is the first vertex list, the district's outer ring.
func (d *District) Polygon() []geo.Vertex {
	if len(d.CortarVertexLists) == 0 {
		return nil
	}
	return d.CortarVertexLists[0]
}

func (d *District) DisplayName() string {
	return d.DivisionName + " " + d.CortarName
}

func (p *Parser) GetDistrict(ctx context.Context, coord geo.Coordinate, zoom int) (*District, error) {
	query := url.Values{}
	query.Set("zoom", strconv.Itoa(zoom))
	query.Set("centerLat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	query.Set("centerLon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))

	respBody, err := p.get(ctx, cortarsPath, query)
	if err != nil {
		return nil, err
	}

	var district District
	err = json.Unmarshal(respBody, &district)
	if err != nil {
		return nil, fmt.Errorf("can't parse response body: %w, %s", err, respBody)
	}

	if len(district.Polygon()) == 0 {
		return nil, ErrDistrictNotFound
	}

	return &district, nil
}
