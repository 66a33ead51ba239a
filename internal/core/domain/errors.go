package domain

import "errors"

// Validation failures. The action is blocked locally and no request is sent.
var (
	ErrValidation        = errors.New("validation failed")
	ErrPhoneTooShort     = errors.New("phone number is too short")
	ErrInvalidCode       = errors.New("confirmation code must have 6 digits")
	ErrNicknameRequired  = errors.New("nickname is required")
	ErrInvalidUsername   = errors.New("username must start with @")
	ErrUsernamePrefix    = errors.New("enter username with @")
	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrInsufficientFunds = errors.New("not enough enots")
	ErrInvalidLanguage   = errors.New("unsupported language")
	ErrInvalidTheme      = errors.New("unsupported theme")
	ErrInvalidChatType   = errors.New("chat type must be group or channel")
	ErrChatNameRequired  = errors.New("chat name is required")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrAlreadyVerified   = errors.New("profile is already verified")
	ErrEmptyPatch        = errors.New("patch has no fields")
)

// State conflicts.
var (
	ErrInvalidTransition = errors.New("invalid auth step transition")
	ErrStaleSession      = errors.New("session changed since it was read")
	ErrInvalidSession    = errors.New("session record violates invariants")
	ErrViewNotActive     = errors.New("view not active")
	ErrNoChatSelected    = errors.New("no chat selected")
	ErrBusy              = errors.New("request already in progress")
)

// Lookup and access errors.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("access forbidden")
	ErrUnknownView      = errors.New("unknown view")
	ErrChatNotFound     = errors.New("chat not found")
	ErrGiftNotFound     = errors.New("gift not found")
	ErrTrackNotFound    = errors.New("track not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSessionNotFound  = errors.New("persisted session not found")
	ErrWorkspaceClosed  = errors.New("workspace closed")
)

// Remote collaborator failures.
var (
	// ErrRemoteRejected is returned when a service answers without a success indicator.
	ErrRemoteRejected = errors.New("remote service rejected the request")
	// ErrTransport is returned when the request could not complete or the reply was unreadable.
	ErrTransport = errors.New("remote service unreachable")
)

// IsValidation reports whether err is one of the client-side validation failures.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrPhoneTooShort, ErrInvalidCode, ErrNicknameRequired,
		ErrInvalidUsername, ErrUsernamePrefix, ErrInvalidAmount, ErrInsufficientFunds,
		ErrInvalidLanguage, ErrInvalidTheme, ErrInvalidChatType, ErrChatNameRequired,
		ErrEmptyMessage, ErrAlreadyVerified, ErrEmptyPatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsRemote reports whether err came from a remote collaborator.
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemoteRejected) || errors.Is(err, ErrTransport)
}
