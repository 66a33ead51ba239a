package db

import (
	"errors"
	"testing"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/pkg/sealer"
)

func TestSessionCodec_RoundTrip(t *testing.T) {
	s, err := sealer.New("seal-key")
	if err != nil {
		t.Fatal(err)
	}
	for name, codec := range map[string]SessionCodec{
		"plain":  NewSessionCodec(nil),
		"sealed": NewSessionCodec(s),
	} {
		t.Run(name, func(t *testing.T) {
			in := domain.User{ID: 42, Phone: "9991234567", Nickname: "Ivan", Username: "@ivan", Enots: 10}
			blob, err := codec.Encode("c1", in)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			out, err := codec.Decode("c1", blob)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if out.ID != 42 || out.Username != "@ivan" || out.Enots != 10 {
				t.Fatalf("unexpected user: %+v", out)
			}
			if out.Language != domain.DefaultLanguage || out.Theme != domain.DefaultTheme {
				t.Fatalf("decode must normalize defaults: %+v", out)
			}
		})
	}
}

func TestSessionCodec_SealedRecordBoundToClient(t *testing.T) {
	s, _ := sealer.New("seal-key")
	codec := NewSessionCodec(s)
	blob, _ := codec.Encode("c1", domain.User{ID: 1})

	_, err := codec.Decode("c2", blob)
	if !errors.Is(err, sealer.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("unreadable record must be an invalid session, got %v", err)
	}
}

func TestSessionCodec_RotatedKeyIsInvalidSession(t *testing.T) {
	old, _ := sealer.New("old-key")
	rotated, _ := sealer.New("new-key")
	blob, _ := NewSessionCodec(old).Encode("c1", domain.User{ID: 1})

	if _, err := NewSessionCodec(rotated).Decode("c1", blob); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after key rotation, got %v", err)
	}
}

func TestSessionCodec_RejectsInvalidRecord(t *testing.T) {
	codec := NewSessionCodec(nil)
	_, err := codec.Decode("c1", []byte(`{"id":1,"enots":-5}`))
	if !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := codec.Decode("c1", []byte(`not json`)); !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for garbage, got %v", err)
	}
}
