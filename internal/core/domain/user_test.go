package domain

import "testing"

func TestDeriveUsername(t *testing.T) {
	cases := []struct {
		nickname string
		want     string
	}{
		{"Alice Smith", "@alicesmith"},
		{"Ivan", "@ivan"},
		{"  ", "@"},
		{"", "@"},
		{" Мария\tИванова\n", "@марияиванова"},
	}
	for _, tc := range cases {
		if got := DeriveUsername(tc.nickname); got != tc.want {
			t.Errorf("DeriveUsername(%q) = %q, want %q", tc.nickname, got, tc.want)
		}
	}
}

func TestValidUsername(t *testing.T) {
	valid := []string{"@a", "@ivan", "@user_123"}
	invalid := []string{"", "@", "ivan", "@iv an", " @ivan"}
	for _, s := range valid {
		if !ValidUsername(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if ValidUsername(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestUser_NormalizeAndValidate(t *testing.T) {
	u := User{ID: 1, Nickname: "Ivan"}.Normalize()
	if u.Language != LanguageRU {
		t.Fatalf("expected default language ru, got %q", u.Language)
	}
	if u.Theme != ThemeDark {
		t.Fatalf("expected default theme dark, got %q", u.Theme)
	}
	if err := u.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u.Enots = -1
	if err := u.Validate(); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	u.Enots = 0
	u.Language = "de"
	if err := u.Validate(); err != ErrInvalidLanguage {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
}
