package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-geos"
)

var (
	ErrEmptyPolygon      = errors.New("polygon has no vertices")
	ErrDegeneratePolygon = errors.New("polygon needs at least three distinct vertices")
)

// Vertex is a [lat, lon] pair as the listings provider sends it.
type Vertex [2]float64

func (v Vertex) Lat() float64 { return v[0] }
func (v Vertex) Lon() float64 { return v[1] }

func (v Vertex) point() orb.Point {
	return orb.Point{v.Lon(), v.Lat()}
}

// Box is the bounding box in the provider's marker-search parameter names.
type Box struct {
	LeftLon   float64
	RightLon  float64
	TopLat    float64
	BottomLat float64
}

func orbBoundToBox(bound orb.Bound) Box {
	return Box{
		LeftLon:   bound.Left(),
		RightLon:  bound.Right(),
		TopLat:    bound.Top(),
		BottomLat: bound.Bottom(),
	}
}

// PolygonBound returns the min/max of the vertices' components. A single vertex yields a zero-area box.
func PolygonBound(vertices []Vertex) (Box, error) {
	if len(vertices) == 0 {
		return Box{}, ErrEmptyPolygon
	}

	points := make(orb.MultiPoint, 0, len(vertices))
	for _, v := range vertices {
		points = append(points, v.point())
	}

	return orbBoundToBox(points.Bound()), nil
}

func ring(vertices []Vertex) orb.Ring {
	r := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		r = append(r, v.point())
	}
	if !r.Closed() {
		r = append(r, r[0])
	}
	return r
}

// Polygon answers containment questions against a district boundary.
type Polygon struct {
	geom *geos.Geom
}

func NewPolygon(vertices []Vertex) (*Polygon, error) {
	if len(vertices) == 0 {
		return nil, ErrEmptyPolygon
	}

	r := ring(vertices)
	if len(r) < 4 {
		return nil, ErrDegeneratePolygon
	}

	geojsonBytes, err := geojson.NewGeometry(orb.Polygon{r}).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("can't marshal polygon: %w", err)
	}

	geom, err := geos.NewGeomFromGeoJSON(string(geojsonBytes))
	if err != nil {
		return nil, fmt.Errorf("can't parse geojson: %w", err)
	}

	return &Polygon{geom: geom}, nil
}

// Contains reports whether the point lies inside or on the boundary.
func (p *Polygon) Contains(lat, lon float64) bool {
	point := geos.NewPointFromXY(lon, lat)
	return p.geom.Intersects(point)
}
