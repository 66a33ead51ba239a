// Package db holds what the storage drivers share.
package db

import (
	"encoding/json"
	"fmt"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
	"github.com/speaky/gateway/internal/pkg/sealer"
)

// SessionCodec turns a session record into the bytes a driver stores.
// Records are JSON, sealed with the client's storage key as associated data
// when a sealer is configured.
type SessionCodec struct {
	sealer *sealer.Sealer
}

func NewSessionCodec(s *sealer.Sealer) SessionCodec {
	return SessionCodec{sealer: s}
}

func (c SessionCodec) Encode(clientID string, user domain.User) ([]byte, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	blob, err := c.sealer.Seal(raw, []byte(ports.SessionKey(clientID)))
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return blob, nil
}

// Decode rejects records that fail to open, fail to parse or violate the
// session invariants. Every rejection wraps domain.ErrInvalidSession.
func (c SessionCodec) Decode(clientID string, blob []byte) (domain.User, error) {
	raw, err := c.sealer.Open(blob, []byte(ports.SessionKey(clientID)))
	if err != nil {
		return domain.User{}, fmt.Errorf("decode session: %w: %w", domain.ErrInvalidSession, err)
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, fmt.Errorf("decode session: %w: %w", domain.ErrInvalidSession, err)
	}
	u = u.Normalize()
	if err := u.Validate(); err != nil {
		return domain.User{}, fmt.Errorf("decode session: %w: %w", domain.ErrInvalidSession, err)
	}
	return u, nil
}
