package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/speaky/gateway/internal/core/domain"
)

// MusicState is what the music view renders besides the track list.
type MusicState struct {
	Current  *domain.Track  `json:"current,omitempty"`
	Playing  bool           `json:"playing"`
	Playlist []domain.Track `json:"playlist"`
}

// MusicPanel browses the music catalog. Playback and the playlist are local.
type MusicPanel struct {
	env *panelEnv

	mu       sync.Mutex
	tracks   []domain.Track
	playlist []domain.Track
	current  *domain.Track
	playing  bool
}

func newMusicPanel(env *panelEnv) *MusicPanel {
	return &MusicPanel{env: env}
}

func (p *MusicPanel) Mount(context.Context) {
	if p.env.catalog == nil {
		return
	}
	p.mu.Lock()
	p.tracks = p.env.catalog.Tracks()
	p.playlist = p.env.catalog.Playlist()
	p.mu.Unlock()
}

// Search returns the tracks whose title or artist contains query, ignoring case.
func (p *MusicPanel) Search(query string) []domain.Track {
	query = strings.ToLower(strings.TrimSpace(query))
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Track, 0, len(p.tracks))
	for _, t := range p.tracks {
		if query == "" ||
			strings.Contains(strings.ToLower(t.Title), query) ||
			strings.Contains(strings.ToLower(t.Artist), query) {
			out = append(out, t)
		}
	}
	return out
}

func (p *MusicPanel) State() MusicState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := MusicState{Playing: p.playing, Playlist: append([]domain.Track{}, p.playlist...)}
	if p.current != nil {
		t := *p.current
		st.Current = &t
	}
	return st
}

// Play starts trackID.
func (p *MusicPanel) Play(trackID int64) (MusicState, error) {
	p.mu.Lock()
	t, ok := p.findLocked(trackID)
	if !ok {
		p.mu.Unlock()
		return MusicState{}, fmt.Errorf("track %d: %w", trackID, domain.ErrTrackNotFound)
	}
	p.current = &t
	p.playing = true
	p.mu.Unlock()

	p.env.notes.Success("now playing: " + t.Title)
	return p.State(), nil
}

// TogglePlayback pauses or resumes the current track. It does nothing when
// no track was started.
func (p *MusicPanel) TogglePlayback() MusicState {
	p.mu.Lock()
	if p.current != nil {
		p.playing = !p.playing
	}
	p.mu.Unlock()
	return p.State()
}

// AddToPlaylist appends trackID to the playlist unless it is already there.
func (p *MusicPanel) AddToPlaylist(trackID int64) (MusicState, error) {
	p.mu.Lock()
	t, ok := p.findLocked(trackID)
	if !ok {
		p.mu.Unlock()
		return MusicState{}, fmt.Errorf("track %d: %w", trackID, domain.ErrTrackNotFound)
	}
	dup := false
	for _, have := range p.playlist {
		if have.ID == trackID {
			dup = true
			break
		}
	}
	if !dup {
		p.playlist = append(p.playlist, t)
	}
	p.mu.Unlock()

	if !dup {
		p.env.notes.Success("added to playlist")
	}
	return p.State(), nil
}

func (p *MusicPanel) findLocked(id int64) (domain.Track, bool) {
	for _, t := range p.tracks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Track{}, false
}
