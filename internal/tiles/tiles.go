// Package tiles covers the map-tile side of a trail download: slippy-map
// coordinate math, a filesystem tile cache with per-trail buckets, and a
// batched downloader that tolerates individual tile failures.
package tiles

import (
	"math"

	"github.com/krawl-app/krawl-offline/internal/models"
)

// Coordinate addresses one slippy-map tile.
type Coordinate struct {
	X int
	Y int
	Z int
}

// BoundingBox is a geographic rectangle in degrees.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Maximum service area. Trail bounding boxes never extend past Cebu City;
// gems outside it cannot be created in the first place.
const (
	serviceAreaNorth = 10.45
	serviceAreaSouth = 10.20
	serviceAreaEast  = 124.00
	serviceAreaWest  = 123.70
)

// DefaultZoomLevels covers city overview down to street-level detail.
var DefaultZoomLevels = []int{10, 11, 12, 13, 14, 15, 16, 17, 18}

// TileForLatLon converts a geographic point to the tile containing it.
func TileForLatLon(lat, lon float64, zoom int) Coordinate {
	n := math.Exp2(float64(zoom))
	x := int(math.Floor((lon + 180) / 360 * n))
	latRad := lat * math.Pi / 180
	y := int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))
	return Coordinate{X: x, Y: y, Z: zoom}
}

// BoundingBoxForGems returns the rectangle covering every gem, padded by 10%
// on each side and clamped to the service area. With no gems it falls back to
// the whole service area.
func BoundingBoxForGems(gems []models.GemDetail) BoundingBox {
	if len(gems) == 0 {
		return BoundingBox{
			North: serviceAreaNorth,
			South: serviceAreaSouth,
			East:  serviceAreaEast,
			West:  serviceAreaWest,
		}
	}

	north, south := gems[0].Coordinates[1], gems[0].Coordinates[1]
	east, west := gems[0].Coordinates[0], gems[0].Coordinates[0]
	for _, g := range gems[1:] {
		lon, lat := g.Coordinates[0], g.Coordinates[1]
		north = math.Max(north, lat)
		south = math.Min(south, lat)
		east = math.Max(east, lon)
		west = math.Min(west, lon)
	}

	latBuffer := (north - south) * 0.1
	lonBuffer := (east - west) * 0.1

	return BoundingBox{
		North: math.Min(north+latBuffer, serviceAreaNorth),
		South: math.Max(south-latBuffer, serviceAreaSouth),
		East:  math.Min(east+lonBuffer, serviceAreaEast),
		West:  math.Max(west-lonBuffer, serviceAreaWest),
	}
}

// TilesForBoundingBox enumerates every tile intersecting bbox at the given
// zoom levels. Nil zoomLevels means DefaultZoomLevels.
func TilesForBoundingBox(bbox BoundingBox, zoomLevels []int) []Coordinate {
	if zoomLevels == nil {
		zoomLevels = DefaultZoomLevels
	}

	var tiles []Coordinate
	for _, zoom := range zoomLevels {
		// Y grows southward in the slippy scheme: the south-west corner has
		// the minimum X and the maximum Y.
		minTile := TileForLatLon(bbox.South, bbox.West, zoom)
		maxTile := TileForLatLon(bbox.North, bbox.East, zoom)
		for x := minTile.X; x <= maxTile.X; x++ {
			for y := maxTile.Y; y <= minTile.Y; y++ {
				tiles = append(tiles, Coordinate{X: x, Y: y, Z: zoom})
			}
		}
	}
	return tiles
}
