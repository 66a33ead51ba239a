package ports

import "github.com/speaky/gateway/internal/core/domain"

// Catalog is the read-only gift shop and music catalog.
type Catalog interface {
	Gifts() []domain.Gift
	Tracks() []domain.Track
	// Playlist is the playlist a music panel starts with.
	Playlist() []domain.Track
}
