package resultcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"staticmap/pkg/logger"
)

// Store is a content-addressed disk cache of composed map images: one file
// per distinct request key under the root directory.
type Store struct {
	root   string
	logger logger.Logger
}

func New(root string, l logger.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create result cache directory: %w", err)
	}

	return &Store{
		root:   root,
		logger: l,
	}, nil
}

// Key derives the cache digest for one request. Fields are separated so that
// distinct parameter tuples can never collide by concatenation; floats keep
// their shortest exact representation.
func Key(zoom int, lat, lon float64, markerName, anchorName string, scale int) string {
	hashString := fmt.Sprintf("zoom=%d|lat=%s|lon=%s|marker=%s|anchor=%s|scale=%d",
		zoom,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
		markerName,
		anchorName,
		scale,
	)

	sum := sha256.Sum256([]byte(hashString))
	return hex.EncodeToString(sum[:])
}

func (s *Store) path(digest string) string {
	return filepath.Join(s.root, digest+".png")
}

func (s *Store) Exists(digest string) bool {
	_, err := os.Stat(s.path(digest))
	return err == nil
}

// Read returns the cached image for the digest. Any read failure is treated
// as a miss.
func (s *Store) Read(digest string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(digest))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("result cache read failed, treating as miss", "digest", digest, "error", err)
		}
		return nil, false
	}

	return data, true
}

// Write stores the image atomically. Concurrent writers for the same digest
// race harmlessly, the rename makes last-writer-wins safe.
func (s *Store) Write(digest string, data []byte) error {
	filePath := s.path(digest)

	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write result cache file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move result cache file into place: %w", err)
	}

	return nil
}
