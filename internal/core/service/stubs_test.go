package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// calls records remote actions and returns the configured error per action.
type calls struct {
	mu   sync.Mutex
	log  []string
	errs map[string]error
}

func (c *calls) hit(action string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, action)
	return c.errs[action]
}

func (c *calls) fail(action string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.errs == nil {
		c.errs = make(map[string]error)
	}
	c.errs[action] = err
}

func (c *calls) count(action string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range c.log {
		if a == action {
			n++
		}
	}
	return n
}

func (c *calls) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.log)
}

type registerCall struct {
	phone, nickname, username string
}

type stubAuth struct {
	calls
	user      domain.User
	registers []registerCall
	block     chan struct{} // when set, Register waits on it
}

func (a *stubAuth) Register(_ context.Context, phone, nickname, username string) (domain.User, error) {
	if a.block != nil {
		<-a.block
	}
	a.mu.Lock()
	a.registers = append(a.registers, registerCall{phone, nickname, username})
	a.mu.Unlock()
	if err := a.hit("register"); err != nil {
		return domain.User{}, err
	}
	u := a.user
	u.Phone, u.Nickname, u.Username = phone, nickname, username
	return u, nil
}

func (a *stubAuth) Login(_ context.Context, phone string) (domain.User, error) {
	if err := a.hit("login"); err != nil {
		return domain.User{}, err
	}
	u := a.user
	u.Phone = phone
	return u, nil
}

type stubUsers struct {
	calls
	stats   domain.ProfileStats
	friends []domain.PublicUser
	blocked []domain.PublicUser
	gifts   domain.GiftBox
	found   map[string]domain.PublicUser
	updates []ports.ProfileUpdate
	echo    domain.User // returned by UpdateProfile, merged with the update
}

func (u *stubUsers) Stats(context.Context, int64) (domain.ProfileStats, error) {
	return u.stats, u.hit("stats")
}

func (u *stubUsers) Friends(context.Context, int64) ([]domain.PublicUser, error) {
	return u.friends, u.hit("friends")
}

func (u *stubUsers) Blocked(context.Context, int64) ([]domain.PublicUser, error) {
	return u.blocked, u.hit("blocked")
}

func (u *stubUsers) Gifts(context.Context, int64) (domain.GiftBox, error) {
	return u.gifts, u.hit("gifts")
}

func (u *stubUsers) Search(_ context.Context, username string) (domain.PublicUser, error) {
	if err := u.hit("search"); err != nil {
		return domain.PublicUser{}, err
	}
	found, ok := u.found[username]
	if !ok {
		return domain.PublicUser{}, domain.ErrUserNotFound
	}
	return found, nil
}

func (u *stubUsers) UpdateProfile(_ context.Context, _ int64, upd ports.ProfileUpdate) (domain.User, error) {
	if err := u.hit("update_profile"); err != nil {
		return domain.User{}, err
	}
	u.mu.Lock()
	u.updates = append(u.updates, upd)
	u.mu.Unlock()
	out := u.echo
	if upd.Nickname != nil {
		out.Nickname = *upd.Nickname
	}
	if upd.Username != nil {
		out.Username = *upd.Username
	}
	return out, nil
}

func (u *stubUsers) Block(context.Context, int64, int64) error   { return u.hit("block") }
func (u *stubUsers) Unblock(context.Context, int64, int64) error { return u.hit("unblock") }

func (u *stubUsers) AddFriend(context.Context, int64, string) error { return u.hit("add_friend") }

func (u *stubUsers) VerifyUser(context.Context, int64, int64) error   { return u.hit("verify_user") }
func (u *stubUsers) UnverifyUser(context.Context, int64, int64) error { return u.hit("unverify_user") }

type stubWallet struct {
	calls
	block chan struct{} // when set, PurchaseGift waits on it
}

func (w *stubWallet) TopUp(context.Context, int64, int64, int64, domain.PaymentMethod) error {
	return w.hit("top_up")
}

func (w *stubWallet) PurchaseGift(context.Context, int64, int64, int64) error {
	if w.block != nil {
		<-w.block
	}
	return w.hit("purchase_gift")
}

func (w *stubWallet) SellGift(context.Context, int64, int64, int64) error {
	return w.hit("sell_gift")
}

type stubChats struct {
	calls
	list   []domain.Chat
	nextID int64
}

func (c *stubChats) List(context.Context, int64) ([]domain.Chat, error) {
	return append([]domain.Chat(nil), c.list...), c.hit("list")
}

func (c *stubChats) Create(_ context.Context, _ int64, t domain.ChatType, name string) (domain.Chat, error) {
	if err := c.hit("create"); err != nil {
		return domain.Chat{}, err
	}
	c.nextID++
	return domain.Chat{ID: 1000 + c.nextID, Type: t, Name: name}, nil
}

type stubUpload struct {
	calls
	url string
}

func (s *stubUpload) Upload(_ context.Context, _ int64, kind ports.UploadKind, _ []byte) (string, error) {
	return s.url + "/" + string(kind), s.hit("upload")
}

type stubSessions struct {
	mu      sync.Mutex
	records map[string]domain.User
	saves   int
	saveErr error
	loadErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{records: make(map[string]domain.User)}
}

func (s *stubSessions) Save(_ context.Context, clientID string, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.records[clientID] = u
	return nil
}

func (s *stubSessions) Load(_ context.Context, clientID string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.User{}, s.loadErr
	}
	u, ok := s.records[clientID]
	if !ok {
		return domain.User{}, domain.ErrSessionNotFound
	}
	return u, nil
}

func (s *stubSessions) Delete(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, clientID)
	return nil
}

func (s *stubSessions) get(clientID string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.records[clientID]
	return u, ok
}

type stubLedger struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func (l *stubLedger) Append(_ context.Context, e domain.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

func (l *stubLedger) List(_ context.Context, userID int64, limit int) ([]domain.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.LedgerEntry
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if l.entries[i].UserID == userID {
			out = append(out, l.entries[i])
		}
	}
	return out, nil
}

type stubGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func newStubGuard() *stubGuard { return &stubGuard{held: make(map[string]bool)} }

func (g *stubGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

// waitHeld blocks until key is held or fails the test after two seconds.
func (g *stubGuard) waitHeld(t *testing.T, key string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		g.mu.Lock()
		held := g.held[key]
		g.mu.Unlock()
		if held {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("guard %q never acquired", key)
		}
		time.Sleep(time.Millisecond)
	}
}

type stubCatalog struct {
	gifts    []domain.Gift
	tracks   []domain.Track
	playlist []domain.Track
}

func (c stubCatalog) Gifts() []domain.Gift     { return c.gifts }
func (c stubCatalog) Tracks() []domain.Track   { return c.tracks }
func (c stubCatalog) Playlist() []domain.Track { return c.playlist }

type stubEvents struct {
	mu     sync.Mutex
	events []domain.Event
}

func (e *stubEvents) Publish(ev domain.Event) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
}

func (e *stubEvents) ofType(t domain.EventType) []domain.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []domain.Event
	for _, ev := range e.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

type fakes struct {
	auth     *stubAuth
	users    *stubUsers
	wallet   *stubWallet
	chats    *stubChats
	upload   *stubUpload
	sessions *stubSessions
	ledger   *stubLedger
	guard    *stubGuard
	events   *stubEvents
	catalog  stubCatalog
}

func newFakes() *fakes {
	return &fakes{
		auth:     &stubAuth{user: domain.User{ID: 42, Enots: 0}},
		users:    &stubUsers{found: map[string]domain.PublicUser{}},
		wallet:   &stubWallet{},
		chats:    &stubChats{},
		upload:   &stubUpload{url: "https://cdn.example.com"},
		sessions: newStubSessions(),
		ledger:   &stubLedger{},
		guard:    newStubGuard(),
		events:   &stubEvents{},
		catalog: stubCatalog{
			gifts: []domain.Gift{
				{ID: 1, Emoji: "🌹", Name: "Rose", Price: 50},
				{ID: 2, Emoji: "💎", Name: "Diamond", Price: 500},
			},
			tracks: []domain.Track{
				{ID: 1, Title: "Bohemian Rhapsody", Artist: "Queen"},
				{ID: 2, Title: "Imagine", Artist: "John Lennon"},
				{ID: 3, Title: "Hey Jude", Artist: "The Beatles"},
			},
			playlist: []domain.Track{{ID: 1, Title: "Bohemian Rhapsody", Artist: "Queen"}},
		},
	}
}

func (f *fakes) deps() Deps {
	return Deps{
		Remote: ports.Remote{
			Auth:   f.auth,
			Users:  f.users,
			Wallet: f.wallet,
			Chats:  f.chats,
			Upload: f.upload,
		},
		Sessions: f.sessions,
		Ledger:   f.ledger,
		Guard:    f.guard,
		Catalog:  f.catalog,
		Events:   f.events,
		Log:      zerolog.Nop(),
		Now:      func() time.Time { return fixedNow },
	}
}

// env returns a panel environment over a fresh store holding user.
func (f *fakes) env(t *testing.T, user domain.User) *panelEnv {
	t.Helper()
	store, err := NewSessionStore(user)
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	d := f.deps()
	return &panelEnv{
		clientID: "client-1",
		store:    store,
		remote:   d.Remote,
		ledger:   d.Ledger,
		guard:    d.Guard,
		catalog:  d.Catalog,
		notes:    NewNotifications(NotificationLimit, nil),
		now:      d.Now,
		log:      zerolog.Nop(),
	}
}

func levels(notes []domain.Notification) []domain.NotificationLevel {
	out := make([]domain.NotificationLevel, len(notes))
	for i, n := range notes {
		out[i] = n.Level
	}
	return out
}
