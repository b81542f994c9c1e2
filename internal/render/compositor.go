package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"
	"time"

	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"staticmap/internal/projection"
	"staticmap/internal/tile"
	"staticmap/pkg/config"
	"staticmap/pkg/logger"
	"staticmap/pkg/metrics"
)

// Request describes one map image to compose. Values are validated by the
// HTTP layer before they reach the compositor.
type Request struct {
	Lat    float64
	Lon    float64
	Zoom   int
	Marker string
	Anchor string
	Scale  int
}

// Compositor stitches upstream tiles into a canvas centered on the requested
// coordinate, draws the marker and the attribution bar and encodes the
// result. It holds no per-request state.
type Compositor struct {
	fetcher     *tile.Fetcher
	cfg         config.Map
	attribution config.Attribution
	markers     config.MarkerCatalog
	anchors     config.AnchorCatalog
	svgCache    *svgRasterCache
	logger      logger.Logger

	markerFill     color.NRGBA
	markerBorder   color.NRGBA
	attrBackground color.NRGBA
	attrText       color.NRGBA
}

func NewCompositor(
	cfg config.Map,
	attribution config.Attribution,
	markers config.MarkerCatalog,
	anchors config.AnchorCatalog,
	fetcher *tile.Fetcher,
	l logger.Logger,
) *Compositor {
	return &Compositor{
		fetcher:        fetcher,
		cfg:            cfg,
		attribution:    attribution,
		markers:        markers,
		anchors:        anchors,
		svgCache:       newSVGRasterCache(),
		logger:         l,
		markerFill:     parseHexColorOr(cfg.MarkerFill, color.NRGBA{R: 0xE7, G: 0x4C, B: 0x3C, A: 0xFF}),
		markerBorder:   parseHexColorOr(cfg.MarkerBorder, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}),
		attrBackground: parseHexColorOr(attribution.Background, color.NRGBA{A: 0xFF}),
		attrText:       parseHexColorOr(attribution.TextColor, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}),
	}
}

type tileRef struct {
	x int
	y int
}

type placement struct {
	ref     tileRef
	offsetX int
	offsetY int
}

// Compose renders the map image for one request. Any tile that cannot be
// fetched aborts the whole composition, partial composites are never
// returned.
func (c *Compositor) Compose(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.ComposeDuration.Observe(time.Since(start).Seconds())
	}()

	edge := c.cfg.TileEdge
	scale := clampScale(req.Scale)

	placements := c.placements(req.Lat, req.Lon, req.Zoom, edge)

	images, err := c.fetchTiles(ctx, req.Zoom, placements)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, edge, edge))
	for _, pl := range placements {
		img := images[pl.ref]
		rect := image.Rect(pl.offsetX, pl.offsetY, pl.offsetX+edge, pl.offsetY+edge)
		draw.Draw(canvas, rect, img, img.Bounds().Min, draw.Src)
	}

	out := canvas
	if scale > 1 {
		out = image.NewRGBA(image.Rect(0, 0, edge*scale, edge*scale))
		xdraw.NearestNeighbor.Scale(out, out.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)
	}

	center := image.Point{X: edge * scale / 2, Y: edge * scale / 2}
	plan := c.resolveMarker(req.Marker, req.Anchor, scale)
	plan.draw(out, center)

	if c.attribution.Enabled && c.attribution.Text != "" {
		c.drawAttribution(out)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, &RenderError{Stage: "encode", Err: err}
	}

	return buf.Bytes(), nil
}

// placements computes the 2x2 tile neighborhood overlapping an edge-sized
// canvas centered on the coordinate, with each tile's draw offset. Columns
// wrap around the antimeridian, rows clamp at the poles.
func (c *Compositor) placements(lat, lon float64, zoom, edge int) []placement {
	p := projection.Project(lat, lon, zoom, edge)

	centerWorldX := p.XTileFloat * float64(edge)
	centerWorldY := p.YTileFloat * float64(edge)
	topLeftX := centerWorldX - float64(edge)/2
	topLeftY := centerWorldY - float64(edge)/2

	baseTileX := int(math.Floor(topLeftX / float64(edge)))
	baseTileY := int(math.Floor(topLeftY / float64(edge)))

	placements := make([]placement, 0, 4)
	for dy := 0; dy <= 1; dy++ {
		for dx := 0; dx <= 1; dx++ {
			ref := tileRef{
				x: projection.WrapX(baseTileX+dx, zoom),
				y: projection.ClampY(baseTileY+dy, zoom),
			}
			placements = append(placements, placement{
				ref:     ref,
				offsetX: int(math.Round(float64((baseTileX+dx)*edge) - topLeftX)),
				offsetY: int(math.Round(float64((baseTileY+dy)*edge) - topLeftY)),
			})
		}
	}

	return placements
}

// fetchTiles retrieves every distinct tile in parallel and decodes it. The
// first failure cancels the remaining fetches.
func (c *Compositor) fetchTiles(ctx context.Context, zoom int, placements []placement) (map[tileRef]image.Image, error) {
	unique := make([]tileRef, 0, len(placements))
	seen := make(map[tileRef]struct{}, len(placements))
	for _, pl := range placements {
		if _, ok := seen[pl.ref]; ok {
			continue
		}
		seen[pl.ref] = struct{}{}
		unique = append(unique, pl.ref)
	}

	var mu sync.Mutex
	images := make(map[tileRef]image.Image, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	for _, ref := range unique {
		g.Go(func() error {
			data, err := c.fetcher.FetchTile(gctx, zoom, ref.x, ref.y)
			if err != nil {
				return err
			}

			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				return &RenderError{Stage: "decode tile", Err: err}
			}

			mu.Lock()
			images[ref] = img
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return images, nil
}

func (c *Compositor) resolveMarker(markerName, anchorName string, scale int) markerPlan {
	name := markerName
	if name == "" {
		name = c.cfg.DefaultMarker
	}

	if name != "" {
		if spec, ok := c.markers[name]; ok {
			img, err := c.loadMarkerImage(spec, c.cfg.MarkerSize*scale)
			if err == nil {
				return imageMarker{img: img, anchor: c.resolveAnchor(anchorName, spec.Anchor)}
			}
			assetErr := &AssetError{Name: name, Path: spec.Path, Err: err}
			c.logger.Warn("marker asset unavailable, using vector fallback", "marker", name, "error", assetErr)
		} else {
			c.logger.Warn("unknown marker name, using vector fallback", "marker", name)
		}
	}

	return vectorMarker{
		radius: c.cfg.MarkerRadius * scale,
		fill:   c.markerFill,
		border: c.markerBorder,
	}
}

func (c *Compositor) resolveAnchor(requested, markerDefault string) config.Anchor {
	for _, name := range []string{requested, markerDefault, c.cfg.DefaultAnchor} {
		if name == "" {
			continue
		}
		if anchor, ok := c.anchors[name]; ok {
			return anchor
		}
	}
	return config.Anchor{X: 0.5, Y: 0.5}
}

func clampScale(scale int) int {
	if scale < 1 {
		return 1
	}
	if scale > 4 {
		return 4
	}
	return scale
}
