package domain

// Gift is an item of the gift shop catalog.
type Gift struct {
	ID    int64  `json:"id" yaml:"id"`
	Emoji string `json:"emoji" yaml:"emoji"`
	Name  string `json:"name" yaml:"name"`
	Price int64  `json:"price" yaml:"price"`
}

// OwnedGift is a gift that was received or sent by the session owner.
type OwnedGift struct {
	ID           int64  `json:"id"`
	GiftID       int64  `json:"gift_id"`
	Emoji        string `json:"emoji"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	From         string `json:"from,omitempty"`
	FromUsername string `json:"from_username,omitempty"`
	To           string `json:"to,omitempty"`
	ToUsername   string `json:"to_username,omitempty"`
}

// GiftBox holds both gift lists of the gifts panel.
type GiftBox struct {
	Received []OwnedGift `json:"received"`
	Sent     []OwnedGift `json:"sent"`
}

// SaleRate is the share of the listed price credited when a gift is sold, in tenths.
const SaleRate = 7

// SaleCredit returns floor(price * 0.7) using integer arithmetic.
func SaleCredit(price int64) int64 {
	if price <= 0 {
		return 0
	}
	return price * SaleRate / 10
}

// Track is an entry of the music catalog.
type Track struct {
	ID       int64  `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Artist   string `json:"artist" yaml:"artist"`
	Duration string `json:"duration" yaml:"duration"`
	Cover    string `json:"cover" yaml:"cover"`
}
