package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		HTTP        HTTP        `envPrefix:"HTTP_"`
		Logger      Logger      `envPrefix:"LOGGER_"`
		Telemetry   Telemetry   `envPrefix:"TELEMETRY_"`
		Upstream    Upstream    `envPrefix:"UPSTREAM_"`
		TileCache   TileCache   `envPrefix:"TILE_CACHE_"`
		Redis       Redis       `envPrefix:"REDIS_"`
		SQLite      SQLite      `envPrefix:"SQLITE_"`
		Limiter     Limiter     `envPrefix:"LIMITER_"`
		ResultCache ResultCache `envPrefix:"RESULT_CACHE_"`
		Map         Map         `envPrefix:"MAP_"`
		Attribution Attribution `envPrefix:"ATTRIBUTION_"`
	}

	HTTP struct {
		Server  Server        `envPrefix:"SERVER_"`
		Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	}

	Server struct {
		Port         string        `env:"PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	}

	Logger struct {
		Level string `env:"LEVEL" envDefault:"info"`
	}

	Telemetry struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		ServiceName    string `env:"SERVICE_NAME" envDefault:"staticmap"`
		ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
		Environment    string `env:"ENVIRONMENT" envDefault:"production"`
		OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	}

	Upstream struct {
		BaseURL        string        `env:"BASE_URL" envDefault:"https://tile.openstreetmap.org"`
		UserAgent      string        `env:"USER_AGENT" envDefault:"staticmap/1.0"`
		Referer        string        `env:"REFERER" envDefault:""`
		Timeout        time.Duration `env:"TIMEOUT" envDefault:"10s"`
		MaxRetries     int           `env:"MAX_RETRIES" envDefault:"3"`
		RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY" envDefault:"1s"`
	}

	TileCache struct {
		// Backend selects the tile cache implementation: memory, redis or sqlite.
		Backend string        `env:"BACKEND" envDefault:"memory"`
		MaxSize int           `env:"MAX_SIZE" envDefault:"1000"`
		TTL     time.Duration `env:"TTL" envDefault:"60m"`
	}

	Redis struct {
		Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
		Password string        `env:"PASSWORD" envDefault:""`
		DB       int           `env:"DB" envDefault:"0"`
		TTL      time.Duration `env:"TTL" envDefault:"24h"`
	}

	SQLite struct {
		Path string `env:"PATH" envDefault:"./cache/tiles.db"`
	}

	Limiter struct {
		MaxConcurrent     int     `env:"MAX_CONCURRENT" envDefault:"2"`
		RequestsPerSecond float64 `env:"REQUESTS_PER_SECOND" envDefault:"2"`
	}

	ResultCache struct {
		Enabled bool   `env:"ENABLED" envDefault:"true"`
		Dir     string `env:"DIR" envDefault:"./cache/maps"`
	}

	Map struct {
		TileEdge      int    `env:"TILE_EDGE" envDefault:"256"`
		MinZoom       int    `env:"MIN_ZOOM" envDefault:"0"`
		MaxZoom       int    `env:"MAX_ZOOM" envDefault:"19"`
		MarkerSize    int    `env:"MARKER_SIZE" envDefault:"48"`
		MarkerRadius  int    `env:"MARKER_RADIUS" envDefault:"12"`
		MarkerFill    string `env:"MARKER_FILL" envDefault:"#E74C3C"`
		MarkerBorder  string `env:"MARKER_BORDER" envDefault:"#FFFFFF"`
		DefaultMarker string `env:"DEFAULT_MARKER" envDefault:""`
		DefaultAnchor string `env:"DEFAULT_ANCHOR" envDefault:"center"`
		// MarkerCatalog points at a JSON file mapping marker names to assets.
		MarkerCatalog string `env:"MARKER_CATALOG" envDefault:""`
		AnchorCatalog string `env:"ANCHOR_CATALOG" envDefault:""`
	}

	Attribution struct {
		Enabled    bool    `env:"ENABLED" envDefault:"true"`
		Text       string  `env:"TEXT" envDefault:"(c) OpenStreetMap contributors"`
		Background string  `env:"BACKGROUND" envDefault:"#000000"`
		TextColor  string  `env:"TEXT_COLOR" envDefault:"#FFFFFF"`
		Opacity    float64 `env:"OPACITY" envDefault:"0.6"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
