package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/api/metrics"
	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
)

const (
	msgRegistrationFailed = "registration failed"
	persistTimeout        = 5 * time.Second
)

// AuthFlow drives the phone -> code -> profile sign-up of one client. It
// talks to the auth service exactly once, on the profile submit.
type AuthFlow struct {
	mu       sync.Mutex
	progress domain.AuthProgress
	done     bool

	clientID string
	auth     ports.AuthAPI
	sessions ports.SessionRepository
	guard    ports.SubmitGuard
	notes    *Notifications
	onStep   func(domain.AuthProgress)
	log      zerolog.Logger
}

// NewAuthFlow returns a flow positioned at the phone step. onStep, when set,
// receives the progress after every accepted transition.
func NewAuthFlow(
	clientID string,
	auth ports.AuthAPI,
	sessions ports.SessionRepository,
	guard ports.SubmitGuard,
	notes *Notifications,
	onStep func(domain.AuthProgress),
	log zerolog.Logger,
) *AuthFlow {
	return &AuthFlow{
		progress: domain.NewAuthProgress(),
		clientID: clientID,
		auth:     auth,
		sessions: sessions,
		guard:    guard,
		notes:    notes,
		onStep:   onStep,
		log:      log,
	}
}

// Progress returns a copy of the current progress.
func (f *AuthFlow) Progress() domain.AuthProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress
}

// SubmitPhone records phone and advances to the code step when it is long enough.
func (f *AuthFlow) SubmitPhone(phone string) error {
	f.mu.Lock()
	if err := f.expect(domain.AuthStepPhone, domain.AuthStepCode); err != nil {
		f.mu.Unlock()
		return err
	}
	f.progress.Phone = phone
	if !domain.PhoneAccepted(phone) {
		f.mu.Unlock()
		return domain.ErrPhoneTooShort
	}
	p := f.advance(domain.AuthStepCode)
	f.mu.Unlock()

	f.stepped(p)
	return nil
}

// SubmitCode records the digits of code and advances to the profile step when six are present.
func (f *AuthFlow) SubmitCode(code string) error {
	f.mu.Lock()
	if err := f.expect(domain.AuthStepCode, domain.AuthStepProfile); err != nil {
		f.mu.Unlock()
		return err
	}
	f.progress.Code = domain.SanitizeCode(code)
	if !domain.CodeComplete(f.progress.Code) {
		f.mu.Unlock()
		return domain.ErrInvalidCode
	}
	p := f.advance(domain.AuthStepProfile)
	f.mu.Unlock()

	f.stepped(p)
	return nil
}

// Back returns from the code step to the phone step and discards the code.
func (f *AuthFlow) Back() error {
	f.mu.Lock()
	if err := f.expect(domain.AuthStepCode, domain.AuthStepPhone); err != nil {
		f.mu.Unlock()
		return err
	}
	f.progress.Code = ""
	p := f.advance(domain.AuthStepPhone)
	f.mu.Unlock()

	f.stepped(p)
	return nil
}

// SubmitProfile registers the account with the entered nickname and the
// derived username. The returned user is validated, then persisted for the
// client; a persistence failure is logged and does not fail the sign-up.
func (f *AuthFlow) SubmitProfile(ctx context.Context, nickname string) (domain.User, error) {
	f.mu.Lock()
	if f.done || f.progress.Step != domain.AuthStepProfile {
		step := f.progress.Step
		f.mu.Unlock()
		return domain.User{}, fmt.Errorf("submit profile in step %s: %w", step, domain.ErrInvalidTransition)
	}
	f.progress.Nickname = nickname
	phone := domain.NormalizePhone(f.progress.Phone)
	f.mu.Unlock()

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return domain.User{}, domain.ErrNicknameRequired
	}
	username := domain.DeriveUsername(nickname)

	var user domain.User
	err := guarded(ctx, f.guard, f.log, "auth:register:"+f.clientID, func() error {
		var err error
		user, err = f.auth.Register(ctx, phone, nickname, username)
		return err
	})
	switch {
	case errors.Is(err, domain.ErrBusy):
		return domain.User{}, err
	case err != nil:
		result := "rejected"
		if errors.Is(err, domain.ErrTransport) {
			result = "transport"
		}
		metrics.RegistrationsTotal.WithLabelValues(result).Inc()
		f.notes.RemoteFailure(err, msgRegistrationFailed)
		f.log.Warn().Err(err).Str("client_id", f.clientID).Msg("registration failed")
		return domain.User{}, fmt.Errorf("register: %w", err)
	}

	// A record that breaks the session invariants counts as a rejection and
	// leaves the profile step open for another submit.
	user = user.Normalize()
	if verr := user.Validate(); verr != nil {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		f.notes.Error(msgRegistrationFailed)
		f.log.Warn().Err(verr).Str("client_id", f.clientID).Msg("registration returned an invalid record")
		return domain.User{}, fmt.Errorf("register: %w: %v", domain.ErrRemoteRejected, verr)
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	f.mu.Lock()
	f.done = true
	f.mu.Unlock()

	f.persist(ctx, user)

	f.log.Info().
		Str("client_id", f.clientID).
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("registration completed")
	return user, nil
}

func (f *AuthFlow) persist(ctx context.Context, user domain.User) {
	if f.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := f.sessions.Save(ctx, f.clientID, user); err != nil {
		f.log.Error().Err(err).Str("client_id", f.clientID).Msg("failed to persist session")
	}
}

// expect checks the current step and the transition table. Callers hold f.mu.
func (f *AuthFlow) expect(from, to domain.AuthStep) error {
	if f.done || f.progress.Step != from || !from.CanTransitionTo(to) {
		return fmt.Errorf("%s -> %s in step %s: %w", from, to, f.progress.Step, domain.ErrInvalidTransition)
	}
	return nil
}

// advance moves to step and returns the new progress. Callers hold f.mu.
func (f *AuthFlow) advance(step domain.AuthStep) domain.AuthProgress {
	metrics.AuthStepTransitionsTotal.WithLabelValues(string(f.progress.Step), string(step)).Inc()
	f.progress.Step = step
	return f.progress
}

func (f *AuthFlow) stepped(p domain.AuthProgress) {
	f.log.Debug().Str("client_id", f.clientID).Str("step", string(p.Step)).Msg("auth step")
	if f.onStep != nil {
		f.onStep(p)
	}
}
