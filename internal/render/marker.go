package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"staticmap/pkg/config"
)

// markerPlan is the resolved drawing plan for one request: either a
// configured image asset or the built-in vector fallback.
type markerPlan interface {
	draw(dst *image.RGBA, center image.Point)
}

type imageMarker struct {
	img    image.Image
	anchor config.Anchor
}

func (m imageMarker) draw(dst *image.RGBA, center image.Point) {
	b := m.img.Bounds()
	w, h := b.Dx(), b.Dy()

	// The anchor point of the marker lands exactly on the canvas center.
	pos := image.Point{
		X: center.X - int(m.anchor.X*float64(w)),
		Y: center.Y - int(m.anchor.Y*float64(h)),
	}

	r := image.Rect(pos.X, pos.Y, pos.X+w, pos.Y+h)
	draw.Draw(dst, r, m.img, b.Min, draw.Over)
}

type vectorMarker struct {
	radius int
	fill   color.NRGBA
	border color.NRGBA
}

func (m vectorMarker) draw(dst *image.RGBA, center image.Point) {
	r := m.radius
	if r < 2 {
		r = 2
	}
	borderWidth := 2

	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d2 := dx*dx + dy*dy
			if d2 > r*r {
				continue
			}
			col := m.fill
			if d2 >= (r-borderWidth)*(r-borderWidth) {
				col = m.border
			}
			dst.Set(center.X+dx, center.Y+dy, col)
		}
	}

	cross := r / 2
	for d := -cross; d <= cross; d++ {
		dst.Set(center.X+d, center.Y, m.border)
		dst.Set(center.X, center.Y+d, m.border)
	}
}

type svgCacheKey struct {
	path    string
	size    int
	modTime int64
}

// svgRasterCache memoizes rasterized vector assets by file, target size and
// modification time so repeated requests do not re-rasterize.
type svgRasterCache struct {
	mu    sync.Mutex
	items map[svgCacheKey]image.Image
}

func newSVGRasterCache() *svgRasterCache {
	return &svgRasterCache{
		items: make(map[svgCacheKey]image.Image),
	}
}

func (c *svgRasterCache) rasterize(path string, size int, fit string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	key := svgCacheKey{path: path, size: size, modTime: info.ModTime().UnixNano()}

	c.mu.Lock()
	cached, ok := c.items[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	icon, err := oksvg.ReadIcon(path, oksvg.WarnErrorMode)
	if err != nil {
		return nil, err
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("svg %s has no usable viewbox", path)
	}

	w, h := fitDims(vw, vh, size, fit)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.SetTarget(0, 0, float64(w), float64(h))
	icon.Draw(raster, 1.0)

	c.mu.Lock()
	c.items[key] = img
	c.mu.Unlock()

	return img, nil
}

// loadMarkerImage loads a marker asset scaled to the target footprint. SVG
// assets are rasterized (and memoized), raster assets are decoded and
// resampled.
func (c *Compositor) loadMarkerImage(spec config.Marker, size int) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(spec.Path), ".svg") {
		img, err := c.svgCache.rasterize(spec.Path, size, spec.Fit)
		if err != nil {
			return nil, err
		}
		return cropToFootprint(img, size, spec.Fit), nil
	}

	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	w, h := fitDims(float64(b.Dx()), float64(b.Dy()), size, spec.Fit)
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, b, xdraw.Src, nil)

	return cropToFootprint(scaled, size, spec.Fit), nil
}

// fitDims scales (w, h) into a size×size box preserving aspect ratio.
// "cover" fills the box and overflows on one axis, anything else contains.
func fitDims(w, h float64, size int, fit string) (int, int) {
	sx := float64(size) / w
	sy := float64(size) / h

	var s float64
	if fit == "cover" {
		s = sx
		if sy > sx {
			s = sy
		}
	} else {
		s = sx
		if sy < sx {
			s = sy
		}
	}

	dw := int(w*s + 0.5)
	dh := int(h*s + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	return dw, dh
}

// cropToFootprint center-crops a cover-fitted image back to the footprint.
func cropToFootprint(img image.Image, size int, fit string) image.Image {
	if fit != "cover" {
		return img
	}

	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return img
	}

	x0 := b.Min.X + (b.Dx()-size)/2
	y0 := b.Min.Y + (b.Dy()-size)/2
	rect := image.Rect(x0, y0, x0+size, y0+size).Intersect(b)

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(rect)
	}
	return img
}
