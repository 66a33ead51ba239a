package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
	"github.com/speaky/gateway/internal/core/service"
	"github.com/speaky/gateway/internal/infrastructure/memory"
	"github.com/speaky/gateway/internal/pkg/catalog"
)

// ---------------------------------------------------------------------------
// Remote stubs
// ---------------------------------------------------------------------------

type remoteLog struct {
	mu      sync.Mutex
	actions []string
}

func (l *remoteLog) hit(action string) {
	l.mu.Lock()
	l.actions = append(l.actions, action)
	l.mu.Unlock()
}

func (l *remoteLog) count(action string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, a := range l.actions {
		if a == action {
			n++
		}
	}
	return n
}

type fakeRemote struct {
	remoteLog
	user      domain.User
	registers [][3]string
}

func (f *fakeRemote) Register(_ context.Context, phone, nickname, username string) (domain.User, error) {
	f.hit("register")
	f.mu.Lock()
	f.registers = append(f.registers, [3]string{phone, nickname, username})
	f.mu.Unlock()
	u := f.user
	u.Phone, u.Nickname, u.Username = phone, nickname, username
	return u, nil
}

func (f *fakeRemote) Login(_ context.Context, phone string) (domain.User, error) {
	f.hit("login")
	return domain.User{}, domain.ErrUserNotFound
}

func (f *fakeRemote) Stats(context.Context, int64) (domain.ProfileStats, error) {
	f.hit("stats")
	return domain.ProfileStats{}, nil
}

func (f *fakeRemote) Friends(context.Context, int64) ([]domain.PublicUser, error) {
	f.hit("friends")
	return nil, nil
}

func (f *fakeRemote) Blocked(context.Context, int64) ([]domain.PublicUser, error) {
	f.hit("blocked")
	return nil, nil
}

func (f *fakeRemote) Gifts(context.Context, int64) (domain.GiftBox, error) {
	f.hit("gifts")
	return domain.GiftBox{}, nil
}

func (f *fakeRemote) Search(context.Context, string) (domain.PublicUser, error) {
	f.hit("search")
	return domain.PublicUser{}, domain.ErrUserNotFound
}

func (f *fakeRemote) UpdateProfile(context.Context, int64, ports.ProfileUpdate) (domain.User, error) {
	f.hit("update_profile")
	return domain.User{}, nil
}

func (f *fakeRemote) Block(context.Context, int64, int64) error   { f.hit("block"); return nil }
func (f *fakeRemote) Unblock(context.Context, int64, int64) error { f.hit("unblock"); return nil }

func (f *fakeRemote) AddFriend(context.Context, int64, string) error { f.hit("add_friend"); return nil }

func (f *fakeRemote) VerifyUser(context.Context, int64, int64) error   { f.hit("verify_user"); return nil }
func (f *fakeRemote) UnverifyUser(context.Context, int64, int64) error { f.hit("unverify_user"); return nil }

func (f *fakeRemote) TopUp(context.Context, int64, int64, int64, domain.PaymentMethod) error {
	f.hit("top_up")
	return nil
}

func (f *fakeRemote) PurchaseGift(context.Context, int64, int64, int64) error {
	f.hit("purchase_gift")
	return nil
}

func (f *fakeRemote) SellGift(context.Context, int64, int64, int64) error {
	f.hit("sell_gift")
	return nil
}

func (f *fakeRemote) List(context.Context, int64) ([]domain.Chat, error) {
	f.hit("list")
	return []domain.Chat{{ID: 1, Type: domain.ChatPersonal, Name: "Anna"}}, nil
}

func (f *fakeRemote) Create(_ context.Context, _ int64, t domain.ChatType, name string) (domain.Chat, error) {
	f.hit("create")
	return domain.Chat{ID: 2, Type: t, Name: name}, nil
}

func (f *fakeRemote) Upload(context.Context, int64, ports.UploadKind, []byte) (string, error) {
	f.hit("upload")
	return "https://cdn.example.com/file", nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

const testSecret = "test-secret"

type harness struct {
	e        *echo.Echo
	remote   *fakeRemote
	sessions *memory.SessionRepository
}

func newHarness(t *testing.T, user domain.User) *harness {
	t.Helper()
	h := &harness{
		remote:   &fakeRemote{user: user},
		sessions: memory.NewSessionRepository(),
	}
	h.e = h.router()
	return h
}

// router builds a fresh process over the same remote and session storage.
func (h *harness) router() *echo.Echo {
	registry := service.NewRegistry(service.Deps{
		Remote: ports.Remote{
			Auth:   h.remote,
			Users:  h.remote,
			Wallet: h.remote,
			Chats:  h.remote,
			Upload: h.remote,
		},
		Sessions: h.sessions,
		Ledger:   memory.NewLedgerRepository(),
		Guard:    memory.NewSubmitGuard(),
		Catalog:  catalog.Default(),
		Log:      zerolog.Nop(),
	})
	return NewRouter(Deps{
		Registry:  registry,
		Tokens:    service.NewTokenIssuer(testSecret, time.Hour),
		JWTSecret: testSecret,
		Metrics:   prometheus.NewRegistry(),
		Log:       zerolog.Nop(),
	})
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int, out any) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
}

// signUp opens a client and walks it through the three auth steps.
func (h *harness) signUp(t *testing.T) (string, domain.Snapshot) {
	t.Helper()
	var opened struct {
		ClientID string              `json:"client_id"`
		Token    string              `json:"token"`
		Auth     domain.AuthProgress `json:"auth"`
	}
	expect(t, h.do(t, http.MethodPost, "/v1/clients", "", nil), http.StatusCreated, &opened)
	if opened.Auth.Step != domain.AuthStepPhone {
		t.Fatalf("new client starts at %q", opened.Auth.Step)
	}

	var p domain.AuthProgress
	expect(t, h.do(t, http.MethodPost, "/v1/auth/phone", opened.Token, map[string]string{"phone": "9991234567"}), http.StatusOK, &p)
	if p.Step != domain.AuthStepCode {
		t.Fatalf("after phone: step %q", p.Step)
	}
	expect(t, h.do(t, http.MethodPost, "/v1/auth/code", opened.Token, map[string]string{"code": "123456"}), http.StatusOK, &p)
	if p.Step != domain.AuthStepProfile {
		t.Fatalf("after code: step %q", p.Step)
	}

	var snap domain.Snapshot
	expect(t, h.do(t, http.MethodPost, "/v1/auth/profile", opened.Token, map[string]string{"nickname": "Ivan"}), http.StatusCreated, &snap)
	return opened.Token, snap
}

type viewBody struct {
	View         domain.ViewID   `json:"view"`
	AccessDenied bool            `json:"access_denied"`
	Panel        json.RawMessage `json:"panel"`
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRouter_SignUpOpensChats(t *testing.T) {
	h := newHarness(t, domain.User{ID: 7})
	token, snap := h.signUp(t)

	if len(h.remote.registers) != 1 || h.remote.registers[0] != [3]string{"9991234567", "Ivan", "@ivan"} {
		t.Fatalf("register calls: %v", h.remote.registers)
	}
	if snap.User.ID != 7 || snap.User.Username != "@ivan" {
		t.Fatalf("unexpected session: %+v", snap.User)
	}

	var v viewBody
	expect(t, h.do(t, http.MethodGet, "/v1/view", token, nil), http.StatusOK, &v)
	if v.View != domain.ViewChats {
		t.Fatalf("expected chats view, got %q", v.View)
	}

	var state struct {
		Authenticated bool `json:"authenticated"`
	}
	expect(t, h.do(t, http.MethodGet, "/v1/auth", token, nil), http.StatusOK, &state)
	if !state.Authenticated {
		t.Fatalf("auth state not authenticated after sign-up")
	}
}

func TestRouter_ShortPhoneStaysOnPhoneStep(t *testing.T) {
	h := newHarness(t, domain.User{ID: 7})
	var opened struct {
		Token string `json:"token"`
	}
	expect(t, h.do(t, http.MethodPost, "/v1/clients", "", nil), http.StatusCreated, &opened)

	expect(t, h.do(t, http.MethodPost, "/v1/auth/phone", opened.Token, map[string]string{"phone": "12345"}), http.StatusUnprocessableEntity, nil)

	var p domain.AuthProgress
	expect(t, h.do(t, http.MethodGet, "/v1/auth", opened.Token, nil), http.StatusOK, &struct {
		Auth *domain.AuthProgress `json:"auth"`
	}{Auth: &p})
	if p.Step != domain.AuthStepPhone {
		t.Fatalf("expected phone step, got %q", p.Step)
	}
	if h.remote.count("register") != 0 {
		t.Fatalf("register must not be called")
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	h := newHarness(t, domain.User{ID: 7})
	expect(t, h.do(t, http.MethodGet, "/v1/session", "", nil), http.StatusUnauthorized, nil)
	expect(t, h.do(t, http.MethodGet, "/v1/session", "garbage", nil), http.StatusUnauthorized, nil)
}

func TestRouter_PanelEndpointsNeedTheirView(t *testing.T) {
	h := newHarness(t, domain.User{ID: 7})
	token, _ := h.signUp(t)

	var body struct {
		Error string `json:"error"`
	}
	expect(t, h.do(t, http.MethodGet, "/v1/wallet", token, nil), http.StatusConflict, &body)
	if body.Error != domain.ErrViewNotActive.Error() {
		t.Fatalf("unexpected error %q", body.Error)
	}

	expect(t, h.do(t, http.MethodPut, "/v1/view", token, map[string]string{"view": "wallet"}), http.StatusOK, nil)
	var q struct {
		Amount int64 `json:"amount"`
		Enots  int64 `json:"enots"`
	}
	expect(t, h.do(t, http.MethodGet, "/v1/wallet/quote?amount=150", token, nil), http.StatusOK, &q)
	if q.Enots != 300 {
		t.Fatalf("quote for 150: %d enots", q.Enots)
	}
	expect(t, h.do(t, http.MethodGet, "/v1/wallet/quote?amount=0", token, nil), http.StatusUnprocessableEntity, nil)

	expect(t, h.do(t, http.MethodPut, "/v1/view", token, map[string]string{"view": "nowhere"}), http.StatusNotFound, nil)
}

func TestRouter_PurchaseNeedsFunds(t *testing.T) {
	h := newHarness(t, domain.User{ID: 7, Enots: 40})
	token, _ := h.signUp(t)

	expect(t, h.do(t, http.MethodPut, "/v1/view", token, map[string]string{"view": "shop"}), http.StatusOK, nil)
	// Rose costs 50.
	expect(t, h.do(t, http.MethodPost, "/v1/shop/purchases", token, map[string]int64{"gift_id": 2}), http.StatusUnprocessableEntity, nil)
	if h.remote.count("purchase_gift") != 0 {
		t.Fatalf("purchase sent with insufficient funds")
	}

	expect(t, h.do(t, http.MethodPut, "/v1/view", token, map[string]string{"view": "wallet"}), http.StatusOK, nil)
	var snap domain.Snapshot
	expect(t, h.do(t, http.MethodPost, "/v1/wallet/top-up", token, map[string]string{"amount": "5", "method": "card"}), http.StatusOK, &snap)
	if snap.User.Enots != 50 {
		t.Fatalf("balance after top-up: %d", snap.User.Enots)
	}

	expect(t, h.do(t, http.MethodPut, "/v1/view", token, map[string]string{"view": "shop"}), http.StatusOK, nil)
	expect(t, h.do(t, http.MethodPost, "/v1/shop/purchases", token, map[string]int64{"gift_id": 2}), http.StatusOK, &snap)
	if snap.User.Enots != 0 {
		t.Fatalf("balance after purchase: %d", snap.User.Enots)
	}
}

func TestRouter_AdminIsGuarded(t *testing.T) {
	h := newHarness(t, domain.User{ID: 7})
	token, _ := h.signUp(t)

	var v viewBody
	expect(t, h.do(t, http.MethodPut, "/v1/view", token, map[string]string{"view": "admin"}), http.StatusOK, &v)
	if !v.AccessDenied {
		t.Fatalf("admin view rendered for a non-admin")
	}
	expect(t, h.do(t, http.MethodPost, "/v1/admin/search", token, map[string]string{"username": "@anna"}), http.StatusForbidden, nil)
	if h.remote.count("search") != 0 {
		t.Fatalf("search reached the remote for a non-admin")
	}
}

func TestRouter_SessionSurvivesRestart(t *testing.T) {
	h := newHarness(t, domain.User{ID: 7, Enots: 12})
	token, _ := h.signUp(t)

	h.e = h.router()

	var snap domain.Snapshot
	expect(t, h.do(t, http.MethodGet, "/v1/session", token, nil), http.StatusOK, &snap)
	if snap.User.ID != 7 || snap.User.Enots != 12 {
		t.Fatalf("restored session: %+v", snap.User)
	}
	if h.remote.count("login") != 1 {
		t.Fatalf("expected one login refresh, got %d", h.remote.count("login"))
	}

	expect(t, h.do(t, http.MethodDelete, "/v1/clients/me", token, nil), http.StatusNoContent, nil)
	expect(t, h.do(t, http.MethodGet, "/v1/session", token, nil), http.StatusUnauthorized, nil)
}

func TestRouter_Probes(t *testing.T) {
	h := newHarness(t, domain.User{ID: 7})
	expect(t, h.do(t, http.MethodGet, "/health", "", nil), http.StatusOK, nil)
	expect(t, h.do(t, http.MethodGet, "/health/ready", "", nil), http.StatusOK, nil)
	expect(t, h.do(t, http.MethodGet, "/metrics", "", nil), http.StatusOK, nil)
}
