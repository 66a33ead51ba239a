package service

import (
	"context"
	"errors"
	"testing"

	"github.com/speaky/gateway/internal/core/domain"
)

func TestProfilePanel_MountLoadsStats(t *testing.T) {
	f := newFakes()
	f.users.stats = domain.ProfileStats{FriendsCount: 3, GroupsCount: 2, ChannelsCount: 1}
	p := newProfilePanel(f.env(t, domain.User{ID: 42}))
	p.Mount(context.Background())

	if got := p.Stats(); got != f.users.stats {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestProfilePanel_MountFailureIsSilent(t *testing.T) {
	f := newFakes()
	f.users.fail("stats", domain.ErrTransport)
	env := f.env(t, domain.User{ID: 42})
	p := newProfilePanel(env)
	p.Mount(context.Background())

	if p.Stats() != (domain.ProfileStats{}) {
		t.Fatal("stats must stay zero")
	}
	if env.notes.Pending() != 0 {
		t.Fatal("stats failure is logged only")
	}
}

func TestProfilePanel_UpdateProfile(t *testing.T) {
	f := newFakes()
	env := f.env(t, domain.User{ID: 42, Nickname: "Ivan", Username: "@ivan"})
	p := newProfilePanel(env)

	snap, err := p.UpdateProfile(context.Background(), " Ivan P ", "@ivanp")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if snap.User.Nickname != "Ivan P" || snap.User.Username != "@ivanp" {
		t.Fatalf("unexpected session: %+v", snap.User)
	}
	if len(f.users.updates) != 1 || f.users.updates[0].AvatarURL != nil {
		t.Fatalf("unexpected update payloads: %+v", f.users.updates)
	}
}

func TestProfilePanel_UpdateProfileValidation(t *testing.T) {
	cases := []struct {
		nickname, username string
		want               error
	}{
		{"", "@ivan", domain.ErrNicknameRequired},
		{"Ivan", "ivan", domain.ErrInvalidUsername},
		{"Ivan", "@", domain.ErrInvalidUsername},
		{"Ivan", "@iv an", domain.ErrInvalidUsername},
	}
	for _, tc := range cases {
		f := newFakes()
		env := f.env(t, domain.User{ID: 42})
		p := newProfilePanel(env)
		if _, err := p.UpdateProfile(context.Background(), tc.nickname, tc.username); !errors.Is(err, tc.want) {
			t.Errorf("UpdateProfile(%q, %q): expected %v, got %v", tc.nickname, tc.username, tc.want, err)
		}
		if f.users.total() != 0 || env.notes.Pending() != 0 {
			t.Errorf("UpdateProfile(%q, %q): no request or notification expected", tc.nickname, tc.username)
		}
	}
}

func TestProfilePanel_UpdateProfileKeepsConcurrentChange(t *testing.T) {
	f := newFakes()
	env := f.env(t, domain.User{ID: 42, Nickname: "Ivan", Username: "@ivan"})
	p := newProfilePanel(env)

	// A theme change landing while the profile update is in flight must survive.
	if _, err := env.store.Patch(1, domain.UserPatch{Theme: domain.Ptr(domain.ThemeLight)}); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	snap, err := p.UpdateProfile(context.Background(), "Ivan", "@ivan2")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if snap.User.Theme != domain.ThemeLight || snap.User.Username != "@ivan2" {
		t.Fatalf("unexpected session: %+v", snap.User)
	}
}

func TestProfilePanel_UploadAvatar(t *testing.T) {
	f := newFakes()
	env := f.env(t, domain.User{ID: 42})
	p := newProfilePanel(env)

	snap, err := p.UploadAvatar(context.Background(), []byte{0xff, 0xd8})
	if err != nil {
		t.Fatalf("UploadAvatar: %v", err)
	}
	if snap.User.AvatarURL != "https://cdn.example.com/avatar" {
		t.Fatalf("unexpected avatar url: %q", snap.User.AvatarURL)
	}
	if len(f.users.updates) != 1 || f.users.updates[0].AvatarURL == nil {
		t.Fatalf("expected update_profile with avatar_url, got %+v", f.users.updates)
	}

	if _, err := p.UploadBanner(context.Background(), nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty banner: expected ErrValidation, got %v", err)
	}
}

func TestProfilePanel_RequestVerification(t *testing.T) {
	f := newFakes()
	env := f.env(t, domain.User{ID: 42})
	p := newProfilePanel(env)

	if err := p.RequestVerification(); err != nil {
		t.Fatalf("RequestVerification: %v", err)
	}
	if f.users.total() != 0 {
		t.Fatal("verification request is local")
	}
	notes := env.notes.Drain()
	if len(notes) != 1 || notes[0].Message != msgVerificationReceived {
		t.Fatalf("unexpected notifications: %+v", notes)
	}

	verified := newProfilePanel(f.env(t, domain.User{ID: 42, Verified: true}))
	if err := verified.RequestVerification(); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}
