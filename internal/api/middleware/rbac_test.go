package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/service"
)

type fakeHolder struct {
	store *service.SessionStore
	err   error
}

func (f fakeHolder) Session() (*service.SessionStore, error) {
	return f.store, f.err
}

func newStore(t *testing.T, admin bool) *service.SessionStore {
	t.Helper()
	store, err := service.NewSessionStore(domain.User{ID: 1, IsAdmin: admin}.Normalize())
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	return store
}

func TestRequireAdmin_Allows(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set("workspace", fakeHolder{store: newStore(t, true)})

	called := false
	handler := RequireAdmin()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireAdmin_Forbids(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("workspace", fakeHolder{store: newStore(t, false)})

	handler := RequireAdmin()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireAdmin_RevocationIsImmediate(t *testing.T) {
	e := echo.New()
	store := newStore(t, true)
	ok := RequireAdmin()(func(c echo.Context) error { return nil })

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("workspace", fakeHolder{store: store})
	if err := ok(c); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}

	snap := store.Current()
	revoked := snap.User
	revoked.IsAdmin = false
	if _, err := store.Replace(revoked, snap.Version); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := ok(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden after revocation, got %v", err)
	}
}

func TestRequireAdmin_NoSession(t *testing.T) {
	e := echo.New()
	handler := RequireAdmin()(func(c echo.Context) error { return nil })

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := handler(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated without workspace, got %v", err)
	}

	c.Set("workspace", fakeHolder{err: domain.ErrNotAuthenticated})
	if err := handler(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated before sign-in, got %v", err)
	}
}

type fakeResolver struct {
	w   *service.Workspace
	err error
	got string
}

func (f *fakeResolver) Resolve(_ context.Context, clientID string) (*service.Workspace, error) {
	f.got = clientID
	return f.w, f.err
}

func TestWorkspaceMiddleware(t *testing.T) {
	e := echo.New()
	ws := &service.Workspace{}
	r := &fakeResolver{w: ws}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("client_id", "c1")
	handler := Workspace(r)(func(c echo.Context) error {
		if c.Get("workspace") != ws {
			t.Fatalf("workspace not set")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if r.got != "c1" {
		t.Fatalf("resolved %q, want c1", r.got)
	}

	r.err = domain.ErrNotAuthenticated
	if err := handler(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}
