// Package remote talks to the Speaky auth, users, chats and upload services.
//
// Every service is one URL. GET requests carry the action in the query
// string; mutations carry it in the JSON body next to the arguments.
// Mutations answer an envelope with a success flag; reads answer the bare
// object or array.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/api/metrics"
	"github.com/speaky/gateway/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxReplyBytes  = 4 << 20
)

// Config holds the service URLs.
type Config struct {
	AuthURL   string
	UsersURL  string
	ChatsURL  string
	UploadURL string
	Timeout   time.Duration
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// endpoint is one remote resource.
type endpoint struct {
	http     *http.Client
	url      string
	resource string
	log      zerolog.Logger
	// notFound lists the actions whose 404 means domain.ErrUserNotFound.
	notFound map[string]bool
}

func newEndpoint(client *http.Client, rawURL, resource string, log zerolog.Logger, notFound ...string) endpoint {
	nf := make(map[string]bool, len(notFound))
	for _, a := range notFound {
		nf[a] = true
	}
	return endpoint{
		http:     client,
		url:      rawURL,
		resource: resource,
		log:      log.With().Str("resource", resource).Logger(),
		notFound: nf,
	}
}

// get issues a read. out receives the reply as is.
func (e endpoint) get(ctx context.Context, action string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("action", action)

	u, err := url.Parse(e.url)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", e.resource, action, domain.ErrTransport, err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", e.resource, action, domain.ErrTransport, err)
	}
	return e.do(req, action, false, out)
}

// send issues a mutation. args are merged with the action discriminator and
// the reply must carry success: true. out, when non-nil, receives the whole reply.
func (e endpoint) send(ctx context.Context, method, action string, args map[string]any, out any) error {
	payload := make(map[string]any, len(args)+1)
	for k, v := range args {
		payload[k] = v
	}
	payload["action"] = action
	return e.post(ctx, method, action, payload, out)
}

func (e endpoint) post(ctx context.Context, method, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s %s: encode request: %w", e.resource, action, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", e.resource, action, domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, action, true, out)
}

func (e endpoint) do(req *http.Request, action string, mutation bool, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RemoteRequestDuration.WithLabelValues(e.resource).Observe(time.Since(start).Seconds())
		metrics.RemoteRequestsTotal.WithLabelValues(e.resource, action, resultLabel(err)).Inc()
		if err != nil {
			e.log.Debug().Err(err).Str("action", action).Msg("remote request failed")
		}
	}()

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", e.resource, action, domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: %w: read reply: %w", e.resource, action, domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound && e.notFound[action] {
			return fmt.Errorf("%s %s: %w", e.resource, action, domain.ErrUserNotFound)
		}
		return fmt.Errorf("%s %s: %w: %s", e.resource, action, domain.ErrRemoteRejected, rejection(resp.StatusCode, raw))
	}

	if mutation {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("%s %s: %w: decode reply: %w", e.resource, action, domain.ErrTransport, err)
		}
		if !env.Success {
			return fmt.Errorf("%s %s: %w: %s", e.resource, action, domain.ErrRemoteRejected, rejection(resp.StatusCode, raw))
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: %w: decode reply: %w", e.resource, action, domain.ErrTransport, err)
	}
	return nil
}

// rejection extracts the service's error text, falling back to the status.
func rejection(status int, raw []byte) string {
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Error != "" {
		return env.Error
	}
	return fmt.Sprintf("status %d", status)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTransport):
		return "transport"
	default:
		return "rejected"
	}
}

// Client bundles one adapter per resource.
type Client struct {
	Auth   *AuthClient
	Users  *UsersClient
	Chats  *ChatsClient
	Upload *UploadClient
}

// New builds the adapters over one shared http.Client.
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := &http.Client{Timeout: timeout}
	return &Client{
		Auth:   &AuthClient{ep: newEndpoint(hc, cfg.AuthURL, "auth", log, actionLogin)},
		Users:  &UsersClient{ep: newEndpoint(hc, cfg.UsersURL, "users", log, actionSearch)},
		Chats:  &ChatsClient{ep: newEndpoint(hc, cfg.ChatsURL, "chats", log)},
		Upload: &UploadClient{ep: newEndpoint(hc, cfg.UploadURL, "upload", log)},
	}
}
