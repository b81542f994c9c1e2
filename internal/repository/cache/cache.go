package cache

type TileCacheKey struct {
	X int
	Y int
	Z int
}

type TileCacheValue []byte

type TileCache interface {
	Get(TileCacheKey) (TileCacheValue, bool, error)
	Set(TileCacheKey, TileCacheValue) error
}

// Stats is a read-only snapshot of the memory cache's occupancy.
type Stats struct {
	Size    int
	MaxSize int
}
