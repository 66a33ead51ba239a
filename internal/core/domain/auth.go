package domain

import (
	"strings"
	"unicode/utf8"
)

// AuthStep is the current step of the sign-up flow.
type AuthStep string

const (
	AuthStepPhone   AuthStep = "phone"
	AuthStepCode    AuthStep = "code"
	AuthStepProfile AuthStep = "profile"
)

const (
	MinPhoneLength = 10
	CodeLength     = 6
)

// authTransitions defines the allowed auth step transitions. Leaving the
// profile step happens only by producing a session.
var authTransitions = map[AuthStep][]AuthStep{
	AuthStepPhone: {AuthStepCode},
	AuthStepCode:  {AuthStepProfile, AuthStepPhone},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s AuthStep) CanTransitionTo(next AuthStep) bool {
	for _, allowed := range authTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AuthProgress is the transient state of an unfinished sign-up.
type AuthProgress struct {
	Step     AuthStep `json:"step"`
	Phone    string   `json:"phone"`
	Code     string   `json:"code"`
	Nickname string   `json:"nickname"`
}

// NewAuthProgress returns progress positioned at the phone step.
func NewAuthProgress() AuthProgress {
	return AuthProgress{Step: AuthStepPhone}
}

// NormalizePhone trims the surrounding whitespace of an entered phone number.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

// PhoneAccepted reports whether the normalized phone is long enough to request a code.
func PhoneAccepted(phone string) bool {
	return utf8.RuneCountInString(NormalizePhone(phone)) >= MinPhoneLength
}

// SanitizeCode keeps ASCII digits only, clipped to CodeLength.
func SanitizeCode(code string) string {
	var b strings.Builder
	for i := 0; i < len(code) && b.Len() < CodeLength; i++ {
		if c := code[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// CodeComplete reports whether a sanitized code has exactly CodeLength digits.
func CodeComplete(code string) bool {
	return len(code) == CodeLength
}
