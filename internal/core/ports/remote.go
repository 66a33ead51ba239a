package ports

import (
	"context"

	"github.com/speaky/gateway/internal/core/domain"
)

// AuthAPI is the remote auth resource.
type AuthAPI interface {
	Register(ctx context.Context, phone, nickname, username string) (domain.User, error)
	// Login refreshes the record of a known phone. Unknown phones yield domain.ErrUserNotFound.
	Login(ctx context.Context, phone string) (domain.User, error)
}

// ProfileUpdate carries the fields sent with update_profile. Nil fields are omitted.
type ProfileUpdate struct {
	Nickname  *string          `json:"nickname,omitempty"`
	Username  *string          `json:"username,omitempty"`
	AvatarURL *string          `json:"avatar_url,omitempty"`
	BannerURL *string          `json:"banner_url,omitempty"`
	Language  *domain.Language `json:"language,omitempty"`
	Theme     *domain.Theme    `json:"theme,omitempty"`
}

// UsersAPI is the remote users resource: profile reads, social graph and admin actions.
type UsersAPI interface {
	Stats(ctx context.Context, userID int64) (domain.ProfileStats, error)
	Friends(ctx context.Context, userID int64) ([]domain.PublicUser, error)
	Blocked(ctx context.Context, userID int64) ([]domain.PublicUser, error)
	Gifts(ctx context.Context, userID int64) (domain.GiftBox, error)
	// Search looks a user up by @handle. A miss yields domain.ErrUserNotFound.
	Search(ctx context.Context, username string) (domain.PublicUser, error)

	UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (domain.User, error)
	Block(ctx context.Context, userID, targetID int64) error
	Unblock(ctx context.Context, userID, targetID int64) error
	AddFriend(ctx context.Context, userID int64, username string) error

	VerifyUser(ctx context.Context, adminID, targetID int64) error
	UnverifyUser(ctx context.Context, adminID, targetID int64) error
}

// WalletAPI is the set of balance-changing actions of the users resource.
type WalletAPI interface {
	TopUp(ctx context.Context, userID, amount, credit int64, method domain.PaymentMethod) error
	PurchaseGift(ctx context.Context, userID, giftID, price int64) error
	SellGift(ctx context.Context, userID, ownedGiftID, credit int64) error
}

// ChatsAPI is the remote chats resource.
type ChatsAPI interface {
	List(ctx context.Context, userID int64) ([]domain.Chat, error)
	Create(ctx context.Context, userID int64, chatType domain.ChatType, name string) (domain.Chat, error)
}

// UploadKind tells the upload service which bucket prefix to use.
type UploadKind string

const (
	UploadAvatar UploadKind = "avatar"
	UploadBanner UploadKind = "banner"
)

// UploadAPI is the remote upload resource. It returns the public URL of the stored file.
type UploadAPI interface {
	Upload(ctx context.Context, userID int64, kind UploadKind, data []byte) (string, error)
}

// Remote bundles the remote collaborators a workspace talks to.
type Remote struct {
	Auth   AuthAPI
	Users  UsersAPI
	Wallet WalletAPI
	Chats  ChatsAPI
	Upload UploadAPI
}
