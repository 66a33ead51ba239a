package service

import (
	"context"
	"errors"
	"testing"

	"github.com/speaky/gateway/internal/core/domain"
)

func newTestRouter(t *testing.T, f *fakes, u domain.User) (*Router, *panelEnv, *[]View) {
	t.Helper()
	env := f.env(t, u)
	var changes []View
	r := newRouter(env, func(v View) { changes = append(changes, v) })
	return r, env, &changes
}

func TestRouter_SetView_UnknownID(t *testing.T) {
	r, _, _ := newTestRouter(t, newFakes(), domain.User{ID: 1})
	if _, err := r.SetView(context.Background(), "casino"); !errors.Is(err, domain.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

func TestRouter_SameViewKeepsPanelState(t *testing.T) {
	f := newFakes()
	f.chats.list = []domain.Chat{{ID: 7, Name: "Anna"}}
	r, _, changes := newTestRouter(t, f, domain.User{ID: 1})
	ctx := context.Background()

	v, err := r.SetView(ctx, domain.ViewChats)
	if err != nil {
		t.Fatalf("SetView: %v", err)
	}
	chats := v.(ChatsView)
	if _, err := chats.Panel.Select(7); err != nil {
		t.Fatalf("Select: %v", err)
	}

	again, _ := r.SetView(ctx, domain.ViewChats)
	if again.(ChatsView).Panel != chats.Panel {
		t.Fatal("setting the active view again must keep the panel")
	}
	if _, ok := chats.Panel.Selection().Current(); !ok {
		t.Fatal("selection lost on a no-op switch")
	}
	if f.chats.count("list") != 1 || len(*changes) != 1 {
		t.Fatalf("no-op switch must not remount: list=%d changes=%d", f.chats.count("list"), len(*changes))
	}
}

func TestRouter_LeavingChatsResetsSelection(t *testing.T) {
	f := newFakes()
	f.chats.list = []domain.Chat{{ID: 7, Name: "Anna"}}
	r, _, _ := newTestRouter(t, f, domain.User{ID: 1})
	ctx := context.Background()

	v, _ := r.SetView(ctx, domain.ViewChats)
	if _, err := v.(ChatsView).Panel.Select(7); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := r.SetView(ctx, domain.ViewMusic); err != nil {
		t.Fatalf("SetView music: %v", err)
	}
	back, _ := r.SetView(ctx, domain.ViewChats)

	if _, ok := back.(ChatsView).Panel.Selection().Current(); ok {
		t.Fatal("chats -> music -> chats must reset the selected chat")
	}
}

func TestRouter_AdminAccessDenied(t *testing.T) {
	r, _, changes := newTestRouter(t, newFakes(), domain.User{ID: 1})

	v, err := r.SetView(context.Background(), domain.ViewAdmin)
	if err != nil {
		t.Fatalf("SetView: %v", err)
	}
	if _, ok := v.(AccessDeniedView); !ok {
		t.Fatalf("expected AccessDeniedView, got %T", v)
	}
	if _, ok := r.Current().(AccessDeniedView); !ok {
		t.Fatalf("Current: expected AccessDeniedView, got %T", r.Current())
	}
	if _, ok := (*changes)[0].(AccessDeniedView); !ok {
		t.Fatal("view change must report access denied")
	}
	if _, err := Active[AdminView](r); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Active[AdminView]: expected ErrForbidden, got %v", err)
	}
}

func TestRouter_AdminRecheckedOnEveryRender(t *testing.T) {
	r, env, _ := newTestRouter(t, newFakes(), domain.User{ID: 1, IsAdmin: true})

	v, _ := r.SetView(context.Background(), domain.ViewAdmin)
	admin, ok := v.(AdminView)
	if !ok {
		t.Fatalf("expected AdminView, got %T", v)
	}

	snap := env.store.Current()
	demoted := snap.User
	demoted.IsAdmin = false
	if _, err := env.store.Replace(demoted, snap.Version); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if _, ok := r.Current().(AccessDeniedView); !ok {
		t.Fatalf("expected AccessDeniedView after demotion, got %T", r.Current())
	}
	if _, err := admin.Panel.Search(context.Background(), "@anna"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("detached admin panel must re-check: got %v", err)
	}
}

func TestActive_WrongView(t *testing.T) {
	r, _, _ := newTestRouter(t, newFakes(), domain.User{ID: 1})
	_, _ = r.SetView(context.Background(), domain.ViewChats)

	if _, err := Active[WalletView](r); !errors.Is(err, domain.ErrViewNotActive) {
		t.Fatalf("expected ErrViewNotActive, got %v", err)
	}
	if _, err := Active[ChatsView](r); err != nil {
		t.Fatalf("Active[ChatsView]: %v", err)
	}
}

func TestRouter_MountFailureKeepsViewAndNotifies(t *testing.T) {
	f := newFakes()
	f.users.fail("gifts", domain.ErrTransport)
	r, env, _ := newTestRouter(t, f, domain.User{ID: 1})

	v, err := r.SetView(context.Background(), domain.ViewGifts)
	if err != nil {
		t.Fatalf("SetView: %v", err)
	}
	if v.ID() != domain.ViewGifts {
		t.Fatalf("expected gifts view, got %s", v.ID())
	}
	got := env.notes.Drain()
	if len(got) != 1 || got[0].Message != msgUnreachable {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}
