package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Marker describes one entry of the marker catalog: an image asset on disk,
// the anchor to use when none is requested and how the asset is fitted into
// the marker footprint ("contain" or "cover").
type Marker struct {
	Path   string `json:"path"`
	Anchor string `json:"anchor"`
	Fit    string `json:"fit"`
}

// Anchor is a normalized point within a marker image, x/y in [0,1].
type Anchor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type (
	MarkerCatalog map[string]Marker
	AnchorCatalog map[string]Anchor
)

// BuiltinAnchors returns the anchors every deployment has regardless of the
// configured catalog file.
func BuiltinAnchors() AnchorCatalog {
	return AnchorCatalog{
		"center":       {X: 0.5, Y: 0.5},
		"top":          {X: 0.5, Y: 0.0},
		"bottom":       {X: 0.5, Y: 1.0},
		"left":         {X: 0.0, Y: 0.5},
		"right":        {X: 1.0, Y: 0.5},
		"top-left":     {X: 0.0, Y: 0.0},
		"top-right":    {X: 1.0, Y: 0.0},
		"bottom-left":  {X: 0.0, Y: 1.0},
		"bottom-right": {X: 1.0, Y: 1.0},
	}
}

// LoadMarkerCatalog reads the marker catalog JSON file. An empty path yields
// an empty catalog.
func LoadMarkerCatalog(path string) (MarkerCatalog, error) {
	catalog := MarkerCatalog{}
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read marker catalog: %w", err)
	}

	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse marker catalog: %w", err)
	}

	return catalog, nil
}

// LoadAnchorCatalog merges the built-in anchors with the ones from the
// configured JSON file. File entries win on name collision.
func LoadAnchorCatalog(path string) (AnchorCatalog, error) {
	catalog := BuiltinAnchors()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read anchor catalog: %w", err)
	}

	extra := AnchorCatalog{}
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse anchor catalog: %w", err)
	}

	for name, anchor := range extra {
		catalog[name] = anchor
	}

	return catalog, nil
}
