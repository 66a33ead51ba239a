package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
)

const actionSearch = "search"

var (
	_ ports.AuthAPI   = (*AuthClient)(nil)
	_ ports.UsersAPI  = (*UsersClient)(nil)
	_ ports.WalletAPI = (*UsersClient)(nil)
	_ ports.ChatsAPI  = (*ChatsClient)(nil)
	_ ports.UploadAPI = (*UploadClient)(nil)
)

// UsersClient implements ports.UsersAPI and ports.WalletAPI over the users resource.
type UsersClient struct {
	ep endpoint
}

func byUser(userID int64) url.Values {
	return url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
}

func (c *UsersClient) Stats(ctx context.Context, userID int64) (domain.ProfileStats, error) {
	var out domain.ProfileStats
	err := c.ep.get(ctx, "stats", byUser(userID), &out)
	return out, err
}

func (c *UsersClient) Friends(ctx context.Context, userID int64) ([]domain.PublicUser, error) {
	out := []domain.PublicUser{}
	err := c.ep.get(ctx, "friends", byUser(userID), &out)
	return out, err
}

func (c *UsersClient) Blocked(ctx context.Context, userID int64) ([]domain.PublicUser, error) {
	out := []domain.PublicUser{}
	err := c.ep.get(ctx, "blocked", byUser(userID), &out)
	return out, err
}

func (c *UsersClient) Gifts(ctx context.Context, userID int64) (domain.GiftBox, error) {
	var out domain.GiftBox
	if err := c.ep.get(ctx, "gifts", byUser(userID), &out); err != nil {
		return domain.GiftBox{}, err
	}
	if out.Received == nil {
		out.Received = []domain.OwnedGift{}
	}
	if out.Sent == nil {
		out.Sent = []domain.OwnedGift{}
	}
	return out, nil
}

func (c *UsersClient) Search(ctx context.Context, username string) (domain.PublicUser, error) {
	var out domain.PublicUser
	err := c.ep.get(ctx, actionSearch, url.Values{"username": {username}}, &out)
	return out, err
}

// UpdateProfile sends only the fields set in upd.
func (c *UsersClient) UpdateProfile(ctx context.Context, userID int64, upd ports.ProfileUpdate) (domain.User, error) {
	fields, err := flatten(upd)
	if err != nil {
		return domain.User{}, fmt.Errorf("users update_profile: %w", err)
	}
	fields["user_id"] = userID

	var out userReply
	err = c.ep.send(ctx, http.MethodPut, "update_profile", fields, &out)
	return out.User, err
}

func (c *UsersClient) Block(ctx context.Context, userID, targetID int64) error {
	return c.ep.send(ctx, http.MethodPost, "block", map[string]any{
		"user_id": userID, "blocked_user_id": targetID,
	}, nil)
}

func (c *UsersClient) Unblock(ctx context.Context, userID, targetID int64) error {
	return c.ep.send(ctx, http.MethodPost, "unblock", map[string]any{
		"user_id": userID, "blocked_user_id": targetID,
	}, nil)
}

func (c *UsersClient) AddFriend(ctx context.Context, userID int64, username string) error {
	return c.ep.send(ctx, http.MethodPost, "add_friend", map[string]any{
		"user_id": userID, "friend_username": username,
	}, nil)
}

func (c *UsersClient) VerifyUser(ctx context.Context, adminID, targetID int64) error {
	return c.ep.send(ctx, http.MethodPut, "verify_user", map[string]any{
		"admin_id": adminID, "target_user_id": targetID,
	}, nil)
}

func (c *UsersClient) UnverifyUser(ctx context.Context, adminID, targetID int64) error {
	return c.ep.send(ctx, http.MethodPut, "unverify_user", map[string]any{
		"admin_id": adminID, "target_user_id": targetID,
	}, nil)
}

func (c *UsersClient) TopUp(ctx context.Context, userID, amount, credit int64, method domain.PaymentMethod) error {
	return c.ep.send(ctx, http.MethodPut, "top_up", map[string]any{
		"user_id": userID, "amount": amount, "enots": credit, "method": method,
	}, nil)
}

func (c *UsersClient) PurchaseGift(ctx context.Context, userID, giftID, price int64) error {
	return c.ep.send(ctx, http.MethodPost, "purchase_gift", map[string]any{
		"user_id": userID, "gift_id": giftID, "price": price,
	}, nil)
}

func (c *UsersClient) SellGift(ctx context.Context, userID, ownedGiftID, credit int64) error {
	return c.ep.send(ctx, http.MethodPost, "sell_gift", map[string]any{
		"user_id": userID, "gift_id": ownedGiftID, "credit": credit,
	}, nil)
}

// flatten turns a struct into its omitempty JSON fields.
func flatten(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
