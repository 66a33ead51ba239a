package handler

import (
	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/service"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Clients / auth ---

type openClientResponse struct {
	ClientID string              `json:"client_id"`
	Token    string              `json:"token"`
	Auth     domain.AuthProgress `json:"auth"`
}

type phoneRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type codeRequest struct {
	Code string `json:"code" validate:"required"`
}

type profileStepRequest struct {
	Nickname string `json:"nickname" validate:"required"`
}

type authStateResponse struct {
	Authenticated bool                 `json:"authenticated"`
	Auth          *domain.AuthProgress `json:"auth,omitempty"`
	Session       *domain.Snapshot     `json:"session,omitempty"`
}

// --- View ---

type setViewRequest struct {
	View domain.ViewID `json:"view" validate:"required"`
}

// viewResponse describes the mounted view and the state of its panel.
type viewResponse struct {
	View         domain.ViewID `json:"view"`
	AccessDenied bool          `json:"access_denied"`
	Panel        any           `json:"panel,omitempty"`
}

// --- Chats ---

type createChatRequest struct {
	Type domain.ChatType `json:"type" validate:"required,oneof=group channel"`
	Name string          `json:"name" validate:"required"`
}

type selectChatRequest struct {
	ChatID int64 `json:"chat_id" validate:"required,gt=0"`
}

type draftRequest struct {
	Text string `json:"text"`
}

type chatsPanelState struct {
	Chats    []domain.Chat        `json:"chats"`
	Selected *domain.SelectedChat `json:"selected,omitempty"`
}

// --- Profile / settings ---

type updateProfileRequest struct {
	Nickname string `json:"nickname" validate:"required"`
	Username string `json:"username" validate:"required,startswith=@"`
}

type uploadRequest struct {
	File string `json:"file" validate:"required,base64"`
}

type profilePanelState struct {
	User  domain.User         `json:"user"`
	Stats domain.ProfileStats `json:"stats"`
}

type languageRequest struct {
	Language domain.Language `json:"language" validate:"required,oneof=ru en uk"`
}

type themeRequest struct {
	Theme domain.Theme `json:"theme" validate:"required,oneof=dark light"`
}

type blockRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type settingsPanelState struct {
	Language domain.Language     `json:"language"`
	Theme    domain.Theme        `json:"theme"`
	Blocked  []domain.PublicUser `json:"blocked"`
}

// --- Wallet / shop / gifts ---

type topUpRequest struct {
	Amount string               `json:"amount" validate:"required"`
	Method domain.PaymentMethod `json:"method" validate:"required,oneof=card sbp"`
}

type quoteResponse struct {
	Amount int64 `json:"amount"`
	Enots  int64 `json:"enots"`
}

type walletPanelState struct {
	Balance int64                `json:"balance"`
	History []domain.LedgerEntry `json:"history"`
}

type purchaseRequest struct {
	GiftID int64 `json:"gift_id" validate:"required,gt=0"`
}

type shopPanelState struct {
	Balance int64         `json:"balance"`
	Gifts   []domain.Gift `json:"gifts"`
}

// --- Friends / admin / music ---

type addFriendRequest struct {
	Username string `json:"username" validate:"required"`
}

type searchRequest struct {
	Username string `json:"username" validate:"required"`
}

type adminPanelState struct {
	Found *domain.PublicUser `json:"found,omitempty"`
}

type trackRequest struct {
	TrackID int64 `json:"track_id" validate:"required,gt=0"`
}

type musicPanelState struct {
	service.MusicState
	Results []domain.Track `json:"results,omitempty"`
}
