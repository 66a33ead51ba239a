package domain

import (
	"strings"
	"time"
)

// TopUpRate is the number of enots credited per unit of real currency.
const TopUpRate = 2

// TopUpCredit returns the enots credited for amount units of real currency.
func TopUpCredit(amount int64) int64 {
	return amount * TopUpRate
}

// PaymentMethod is the way a top-up is paid.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentSBP  PaymentMethod = "sbp"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentSBP
}

// ParseAmount reads the leading integer of s the way the top-up input does:
// optional whitespace and sign, then decimal digits up to the first other
// character. ok is false when no digit was found.
func ParseAmount(s string) (amount int64, ok bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	const limit = int64(1) << 53
	digits := 0
	for ; digits < len(s); digits++ {
		c := s[digits]
		if c < '0' || c > '9' {
			break
		}
		if amount < limit {
			amount = amount*10 + int64(c-'0')
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		amount = -amount
	}
	return amount, true
}

// LedgerKind classifies a balance change.
type LedgerKind string

const (
	LedgerTopUp    LedgerKind = "top_up"
	LedgerPurchase LedgerKind = "purchase"
	LedgerSale     LedgerKind = "sale"
)

// LedgerEntry is one line of the wallet history.
type LedgerEntry struct {
	ID        string     `json:"id" bson:"_id"`
	UserID    int64      `json:"user_id" bson:"user_id"`
	Kind      LedgerKind `json:"kind" bson:"kind"`
	Title     string     `json:"title" bson:"title"`
	Amount    int64      `json:"amount" bson:"amount"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}
