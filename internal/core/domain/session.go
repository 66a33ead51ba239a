package domain

// Field names a user attribute that a patch may overwrite.
type Field string

const (
	FieldNickname  Field = "nickname"
	FieldUsername  Field = "username"
	FieldAvatarURL Field = "avatar_url"
	FieldBannerURL Field = "banner_url"
	FieldVerified  Field = "verified"
	FieldLanguage  Field = "language"
	FieldTheme     Field = "theme"
)

// Snapshot is a versioned read of the session store.
type Snapshot struct {
	User    User   `json:"user"`
	Version uint64 `json:"version"`
}

// UserPatch is a field-level change to the session. Absolute fields are
// applied only if untouched since the base version; EnotsDelta is applied
// atomically and never conflicts.
type UserPatch struct {
	Nickname   *string   `json:"nickname,omitempty"`
	Username   *string   `json:"username,omitempty"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	BannerURL  *string   `json:"banner_url,omitempty"`
	Verified   *bool     `json:"verified,omitempty"`
	Language   *Language `json:"language,omitempty"`
	Theme      *Theme    `json:"theme,omitempty"`
	EnotsDelta int64     `json:"enots_delta,omitempty"`
}

// Fields lists the absolute fields the patch sets.
func (p UserPatch) Fields() []Field {
	var out []Field
	if p.Nickname != nil {
		out = append(out, FieldNickname)
	}
	if p.Username != nil {
		out = append(out, FieldUsername)
	}
	if p.AvatarURL != nil {
		out = append(out, FieldAvatarURL)
	}
	if p.BannerURL != nil {
		out = append(out, FieldBannerURL)
	}
	if p.Verified != nil {
		out = append(out, FieldVerified)
	}
	if p.Language != nil {
		out = append(out, FieldLanguage)
	}
	if p.Theme != nil {
		out = append(out, FieldTheme)
	}
	return out
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.EnotsDelta == 0 && len(p.Fields()) == 0
}

// ApplyTo returns u with the patch applied. It does not check invariants.
func (p UserPatch) ApplyTo(u User) User {
	if p.Nickname != nil {
		u.Nickname = *p.Nickname
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.BannerURL != nil {
		u.BannerURL = *p.BannerURL
	}
	if p.Verified != nil {
		u.Verified = *p.Verified
	}
	if p.Language != nil {
		u.Language = *p.Language
	}
	if p.Theme != nil {
		u.Theme = *p.Theme
	}
	u.Enots += p.EnotsDelta
	return u
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
