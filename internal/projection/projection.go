package projection

import (
	"math"
)

// WebMercatorLatLimit is the highest latitude representable in the slippy
// tile scheme. Latitudes are clamped here so the projection math can never
// produce NaN near the poles.
const WebMercatorLatLimit = 85.05112877980659

// Point locates a geographic coordinate on the tile grid: the fractional
// tile position, the containing tile and the pixel offset within that tile.
type Point struct {
	XTileFloat float64
	YTileFloat float64
	XTile      int
	YTile      int
	XPixel     int
	YPixel     int
}

// Project maps lat/lon to slippy-map tile coordinates at the given zoom.
// tileEdge is the edge length of one tile in pixels.
func Project(lat, lon float64, zoom, tileEdge int) Point {
	lat = math.Max(-WebMercatorLatLimit, math.Min(WebMercatorLatLimit, lat))

	n := math.Exp2(float64(zoom))
	latRad := lat * math.Pi / 180

	xTileFloat := (lon + 180) / 360 * n
	yTileFloat := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n

	// Boundary inputs (lon = 180, clamped polar latitudes) may land exactly
	// on n or drift just below 0, keep the floor inside the grid.
	xTileFloat = clampFloat(xTileFloat, n)
	yTileFloat = clampFloat(yTileFloat, n)

	xTile := math.Floor(xTileFloat)
	yTile := math.Floor(yTileFloat)

	return Point{
		XTileFloat: xTileFloat,
		YTileFloat: yTileFloat,
		XTile:      int(xTile),
		YTile:      int(yTile),
		XPixel:     int((xTileFloat - xTile) * float64(tileEdge)),
		YPixel:     int((yTileFloat - yTile) * float64(tileEdge)),
	}
}

func clampFloat(v, n float64) float64 {
	if v < 0 {
		return 0
	}
	if v >= n {
		return math.Nextafter(n, 0)
	}
	return v
}

// WrapX normalizes a tile column index onto [0, 2^zoom), the world wraps
// horizontally.
func WrapX(x, zoom int) int {
	n := 1 << zoom
	return ((x % n) + n) % n
}

// ClampY restricts a tile row index to [0, 2^zoom - 1]. Mercator has no
// vertical wraparound.
func ClampY(y, zoom int) int {
	n := 1 << zoom
	if y < 0 {
		return 0
	}
	if y > n-1 {
		return n - 1
	}
	return y
}
