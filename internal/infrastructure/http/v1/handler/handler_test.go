package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staticmap/internal/render"
	"staticmap/internal/repository/cache"
	"staticmap/internal/repository/resultcache"
	"staticmap/internal/tile"
	"staticmap/internal/usecase"
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

func newTestRouter(t *testing.T, upstreamStatus int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tileBytes := solidPNG(t, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}, 256)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if upstreamStatus != http.StatusOK {
			w.WriteHeader(upstreamStatus)
			return
		}
		w.Write(tileBytes)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Map = config.Map{
		TileEdge:      256,
		MinZoom:       0,
		MaxZoom:       19,
		MarkerSize:    48,
		MarkerRadius:  12,
		MarkerFill:    "#E74C3C",
		MarkerBorder:  "#FFFFFF",
		DefaultAnchor: "center",
	}

	upstream := config.Upstream{
		BaseURL:        srv.URL,
		UserAgent:      "staticmap-test/1.0",
		Timeout:        2 * time.Second,
		MaxRetries:     1,
		RetryBaseDelay: time.Millisecond,
	}
	fetcher := tile.NewFetcher(upstream, cache.NewMemoryCache(100, time.Hour), tile.NewLimiter(8, 100000), logger.NewNoOp())
	compositor := render.NewCompositor(cfg.Map, config.Attribution{}, nil, config.BuiltinAnchors(), fetcher, logger.NewNoOp())

	results, err := resultcache.New(t.TempDir(), logger.NewNoOp())
	require.NoError(t, err)

	mapUC := usecase.NewMapUseCase(compositor, results, logger.NewNoOp())
	tileUC := usecase.NewTileUseCase(fetcher, logger.NewNoOp())

	h := NewHandler(validator.New(), cfg, mapUC, tileUC, logger.NewNoOp())

	r := gin.New()
	r.GET("/api/v1/map", h.Map)
	r.GET("/api/v1/tile/:z/:x/:y", h.Tile)
	r.GET("/healthz", h.Healthz)
	return r
}

func TestMapHandlerServesImage(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map?lat=-34.6037&lon=-58.3816&zoom=12&scale=1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestMapHandlerRejectsBadParameters(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	cases := []struct {
		name  string
		query string
	}{
		{"latitude out of range", "lat=91&lon=0&zoom=5"},
		{"longitude out of range", "lat=0&lon=181&zoom=5"},
		{"zoom out of range", "lat=0&lon=0&zoom=25"},
		{"scale out of range", "lat=0&lon=0&zoom=5&scale=9"},
		{"malformed latitude", "lat=abc&lon=0&zoom=5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/map?"+tc.query, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestMapHandlerReportsUpstreamFailure(t *testing.T) {
	router := newTestRouter(t, http.StatusNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/map?lat=10&lon=10&zoom=5", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestTileHandlerServesTile(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tile/5/10/12", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestTileHandlerValidatesCoordinates(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	cases := []string{
		"/api/v1/tile/abc/0/0",
		"/api/v1/tile/5/abc/0",
		"/api/v1/tile/5/0/abc",
		"/api/v1/tile/25/0/0",
		"/api/v1/tile/3/99/0",
	}

	for _, path := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "path %s", path)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, http.StatusOK)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
