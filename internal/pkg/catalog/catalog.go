// Package catalog loads the gift shop and music catalog from YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/speaky/gateway/internal/core/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type file struct {
	Gifts    []domain.Gift  `yaml:"gifts"`
	Tracks   []domain.Track `yaml:"tracks"`
	Playlist []int64        `yaml:"playlist"`
}

// Catalog is an immutable catalog. Accessors return copies.
type Catalog struct {
	gifts    []domain.Gift
	tracks   []domain.Track
	playlist []domain.Track
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[int64]bool, len(f.Gifts))
	for _, g := range f.Gifts {
		if seen[g.ID] {
			return nil, fmt.Errorf("parse catalog: duplicate gift id %d", g.ID)
		}
		if g.Price <= 0 {
			return nil, fmt.Errorf("parse catalog: gift %d has non-positive price", g.ID)
		}
		seen[g.ID] = true
	}

	byID := make(map[int64]domain.Track, len(f.Tracks))
	for _, t := range f.Tracks {
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate track id %d", t.ID)
		}
		byID[t.ID] = t
	}
	playlist := make([]domain.Track, 0, len(f.Playlist))
	for _, id := range f.Playlist {
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("parse catalog: playlist references unknown track %d", id)
		}
		playlist = append(playlist, t)
	}

	return &Catalog{gifts: f.Gifts, tracks: f.Tracks, playlist: playlist}, nil
}

func (c *Catalog) Gifts() []domain.Gift { return slices.Clone(c.gifts) }

func (c *Catalog) Tracks() []domain.Track { return slices.Clone(c.tracks) }

func (c *Catalog) Playlist() []domain.Track { return slices.Clone(c.playlist) }
