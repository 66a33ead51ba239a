package service

import (
	"context"
	"sync"

	"github.com/speaky/gateway/internal/api/metrics"
	"github.com/speaky/gateway/internal/core/domain"
)

// View is the active top-level view. The set of implementations is closed:
// each case carries exactly the panel it renders.
type View interface {
	ID() domain.ViewID
	panel() mounter
}

type (
	ChatsView    struct{ Panel *ChatsPanel }
	ProfileView  struct{ Panel *ProfilePanel }
	SettingsView struct{ Panel *SettingsPanel }
	MusicView    struct{ Panel *MusicPanel }
	WalletView   struct{ Panel *WalletPanel }
	ShopView     struct{ Panel *ShopPanel }
	FriendsView  struct{ Panel *FriendsPanel }
	GiftsView    struct{ Panel *GiftsPanel }
	AdminView    struct{ Panel *AdminPanel }

	// AccessDeniedView replaces the admin view for a session without admin rights.
	AccessDeniedView struct{}
)

func (ChatsView) ID() domain.ViewID { return domain.ViewChats }
func (ProfileView) ID() domain.ViewID { return domain.ViewProfile }
func (SettingsView) ID() domain.ViewID { return domain.ViewSettings }
func (MusicView) ID() domain.ViewID { return domain.ViewMusic }
func (WalletView) ID() domain.ViewID { return domain.ViewWallet }
func (ShopView) ID() domain.ViewID { return domain.ViewShop }
func (FriendsView) ID() domain.ViewID { return domain.ViewFriends }
func (GiftsView) ID() domain.ViewID { return domain.ViewGifts }
func (AdminView) ID() domain.ViewID { return domain.ViewAdmin }
func (AccessDeniedView) ID() domain.ViewID { return domain.ViewAdmin }

func (v ChatsView) panel() mounter { return v.Panel }
func (v ProfileView) panel() mounter { return v.Panel }
func (v SettingsView) panel() mounter { return v.Panel }
func (v MusicView) panel() mounter { return v.Panel }
func (v WalletView) panel() mounter { return v.Panel }
func (v ShopView) panel() mounter { return v.Panel }
func (v FriendsView) panel() mounter { return v.Panel }
func (v GiftsView) panel() mounter { return v.Panel }
func (v AdminView) panel() mounter { return v.Panel }
func (AccessDeniedView) panel() mounter { return nil }

// Router keeps exactly one view mounted per workspace.
type Router struct {
	env      *panelEnv
	onChange func(View)

	mu      sync.Mutex
	current View
}

func newRouter(env *panelEnv, onChange func(View)) *Router {
	return &Router{env: env, onChange: onChange}
}

// Current returns the mounted view. The admin view is re-checked against the
// live session on every call.
func (r *Router) Current() View {
	r.mu.Lock()
	v := r.current
	r.mu.Unlock()
	return r.render(v)
}

func (r *Router) render(v View) View {
	if _, ok := v.(AdminView); ok && !r.env.user().IsAdmin {
		return AccessDeniedView{}
	}
	return v
}

// SetView mounts the view id. Mounting the active view again keeps its panel
// state; any other id builds a fresh panel and runs its mount reads.
func (r *Router) SetView(ctx context.Context, id domain.ViewID) (View, error) {
	if _, err := domain.ParseViewID(string(id)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.current != nil && r.current.ID() == id {
		v := r.current
		r.mu.Unlock()
		return r.render(v), nil
	}
	v := r.build(id)
	r.current = v
	r.mu.Unlock()

	shown := r.render(v)
	label := string(id)
	if _, denied := shown.(AccessDeniedView); denied {
		label = "access_denied"
	} else {
		v.panel().Mount(ctx)
	}
	metrics.ViewSwitchesTotal.WithLabelValues(label).Inc()
	r.env.log.Debug().Str("client_id", r.env.clientID).Str("view", label).Msg("view mounted")

	if r.onChange != nil {
		r.onChange(shown)
	}
	return shown, nil
}

func (r *Router) build(id domain.ViewID) View {
	switch id {
	case domain.ViewProfile:
		return ProfileView{Panel: newProfilePanel(r.env)}
	case domain.ViewSettings:
		return SettingsView{Panel: newSettingsPanel(r.env)}
	case domain.ViewMusic:
		return MusicView{Panel: newMusicPanel(r.env)}
	case domain.ViewWallet:
		return WalletView{Panel: newWalletPanel(r.env)}
	case domain.ViewShop:
		return ShopView{Panel: newShopPanel(r.env)}
	case domain.ViewFriends:
		return FriendsView{Panel: newFriendsPanel(r.env)}
	case domain.ViewGifts:
		return GiftsView{Panel: newGiftsPanel(r.env)}
	case domain.ViewAdmin:
		return AdminView{Panel: newAdminPanel(r.env)}
	default:
		return ChatsView{Panel: newChatsPanel(r.env)}
	}
}

// Active returns the mounted view when it is a V. Asking for the admin view
// while access is denied yields domain.ErrForbidden.
func Active[V View](r *Router) (V, error) {
	var zero V
	cur := r.Current()
	if v, ok := cur.(V); ok {
		return v, nil
	}
	if _, denied := cur.(AccessDeniedView); denied {
		if _, wantAdmin := any(zero).(AdminView); wantAdmin {
			return zero, domain.ErrForbidden
		}
	}
	return zero, domain.ErrViewNotActive
}
