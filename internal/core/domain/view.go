package domain

import "fmt"

// ViewID names one of the top-level views of the messenger.
type ViewID string

const (
	ViewChats    ViewID = "chats"
	ViewProfile  ViewID = "profile"
	ViewSettings ViewID = "settings"
	ViewMusic    ViewID = "music"
	ViewWallet   ViewID = "wallet"
	ViewShop     ViewID = "shop"
	ViewFriends  ViewID = "friends"
	ViewGifts    ViewID = "gifts"
	ViewAdmin    ViewID = "admin"

	DefaultView = ViewChats
)

// AllViews lists the views in sidebar order.
var AllViews = []ViewID{
	ViewChats, ViewFriends, ViewMusic, ViewWallet, ViewShop,
	ViewGifts, ViewSettings, ViewProfile, ViewAdmin,
}

// ParseViewID converts s into a ViewID.
func ParseViewID(s string) (ViewID, error) {
	for _, v := range AllViews {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}
