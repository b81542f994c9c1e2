package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticmap/internal/render"
	"staticmap/internal/repository/cache"
	"staticmap/internal/repository/resultcache"
	"staticmap/internal/tile"
	"staticmap/pkg/config"
	"staticmap/pkg/logger"
)

func solidPNG(t testing.TB, c color.NRGBA, edge int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, edge, edge))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestMapUseCase(t *testing.T, upstreamCalls *int64) *MapUseCase {
	t.Helper()

	tileBytes := solidPNG(t, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}, 256)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(upstreamCalls, 1)
		w.Write(tileBytes)
	}))
	t.Cleanup(srv.Close)

	upstream := config.Upstream{
		BaseURL:        srv.URL,
		UserAgent:      "staticmap-test/1.0",
		Timeout:        2 * time.Second,
		MaxRetries:     1,
		RetryBaseDelay: time.Millisecond,
	}
	fetcher := tile.NewFetcher(upstream, cache.NewMemoryCache(100, time.Hour), tile.NewLimiter(8, 100000), logger.NewNoOp())

	mapCfg := config.Map{
		TileEdge:      256,
		MarkerSize:    48,
		MarkerRadius:  12,
		MarkerFill:    "#E74C3C",
		MarkerBorder:  "#FFFFFF",
		DefaultAnchor: "center",
	}
	compositor := render.NewCompositor(mapCfg, config.Attribution{}, nil, config.BuiltinAnchors(), fetcher, logger.NewNoOp())

	results, err := resultcache.New(t.TempDir(), logger.NewNoOp())
	require.NoError(t, err)

	return NewMapUseCase(compositor, results, logger.NewNoOp())
}

func TestGetMapComposesAndCaches(t *testing.T) {
	var upstreamCalls int64
	uc := newTestMapUseCase(t, &upstreamCalls)

	req := render.Request{Lat: -34.6037, Lon: -58.3816, Zoom: 12, Scale: 1}

	first, err := uc.GetMap(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	callsAfterFirst := atomic.LoadInt64(&upstreamCalls)
	require.Greater(t, callsAfterFirst, int64(0))

	img, err := png.Decode(bytes.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())

	// The marker fill sits just off the canvas center.
	r, g, b, _ := img.At(131, 131).RGBA()
	assert.Equal(t, uint32(0xE7), r>>8)
	assert.Equal(t, uint32(0x4C), g>>8)
	assert.Equal(t, uint32(0x3C), b>>8)

	// A second identical request is served from the disk cache.
	second, err := uc.GetMap(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, atomic.LoadInt64(&upstreamCalls), "second request must not hit upstream")
}

func TestGetMapDistinguishesScale(t *testing.T) {
	var upstreamCalls int64
	uc := newTestMapUseCase(t, &upstreamCalls)

	base := render.Request{Lat: 10, Lon: 20, Zoom: 6, Scale: 1}
	scaled := base
	scaled.Scale = 2

	first, err := uc.GetMap(context.Background(), base)
	require.NoError(t, err)
	second, err := uc.GetMap(context.Background(), scaled)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "different scales must not share a cache entry")
}

func TestGetMapWithoutResultCache(t *testing.T) {
	var upstreamCalls int64
	uc := newTestMapUseCase(t, &upstreamCalls)
	uc.results = nil

	req := render.Request{Lat: 1, Lon: 2, Zoom: 3, Scale: 1}

	first, err := uc.GetMap(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.GetMap(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second, "composition is deterministic even without the disk cache")
}
