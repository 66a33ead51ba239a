package domain

import (
	"strings"
	"unicode"
)

// Language is the interface language of a session.
type Language string

const (
	LanguageRU Language = "ru"
	LanguageEN Language = "en"
	LanguageUK Language = "uk"

	DefaultLanguage = LanguageRU
)

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	switch l {
	case LanguageRU, LanguageEN, LanguageUK:
		return true
	}
	return false
}

// Theme is the colour theme picked in settings.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	DefaultTheme = ThemeDark
)

func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// User is the authenticated session record as returned by the auth service.
type User struct {
	ID        int64    `json:"id"`
	Phone     string   `json:"phone"`
	Nickname  string   `json:"nickname"`
	Username  string   `json:"username"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	BannerURL string   `json:"banner_url,omitempty"`
	Verified  bool     `json:"verified"`
	Enots     int64    `json:"enots"`
	IsAdmin   bool     `json:"is_admin"`
	Language  Language `json:"language"`
	Theme     Theme    `json:"theme,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// Normalize fills in defaults the services may leave empty.
func (u User) Normalize() User {
	if u.Language == "" {
		u.Language = DefaultLanguage
	}
	if u.Theme == "" {
		u.Theme = DefaultTheme
	}
	return u
}

// Validate checks the invariants every stored session must hold.
func (u User) Validate() error {
	if u.Enots < 0 {
		return ErrInsufficientFunds
	}
	if !u.Language.Valid() {
		return ErrInvalidLanguage
	}
	if u.Theme != "" && !u.Theme.Valid() {
		return ErrInvalidTheme
	}
	return nil
}

// DeriveUsername builds the @handle assigned at registration:
// "@" followed by the lower-cased nickname with all whitespace removed.
func DeriveUsername(nickname string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, nickname)
	return "@" + strings.ToLower(stripped)
}

// ValidUsername reports whether s is an @handle with at least one visible character.
func ValidUsername(s string) bool {
	if !strings.HasPrefix(s, "@") || len(s) < 2 {
		return false
	}
	return !strings.ContainsFunc(s, unicode.IsSpace)
}

// PublicUser is the projection of another user shown in search results,
// friend lists and block lists.
type PublicUser struct {
	ID         int64  `json:"id"`
	Nickname   string `json:"nickname"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Verified   bool   `json:"verified"`
	ShowOnline bool   `json:"show_online,omitempty"`
}

// ProfileStats are the counters shown on the profile card.
type ProfileStats struct {
	FriendsCount  int `json:"friends_count"`
	GroupsCount   int `json:"groups_count"`
	ChannelsCount int `json:"channels_count"`
}
