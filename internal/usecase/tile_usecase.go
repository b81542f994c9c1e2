package usecase

import (
	"context"

	"staticmap/internal/tile"
	"staticmap/pkg/logger"
)

// TileUseCase serves raw upstream tiles through the shared fetcher, so the
// passthrough endpoint benefits from the same cache and rate limits as map
// composition.
type TileUseCase struct {
	fetcher *tile.Fetcher
	logger  logger.Logger
}

func NewTileUseCase(fetcher *tile.Fetcher, l logger.Logger) *TileUseCase {
	return &TileUseCase{
		fetcher: fetcher,
		logger:  l,
	}
}

func (uc *TileUseCase) GetTile(ctx context.Context, z, x, y int) ([]byte, error) {
	uc.logger.Debug("tile request", "z", z, "x", x, "y", y)
	return uc.fetcher.FetchTile(ctx, z, x, y)
}
