package entity

import "time"

type CoinTransactionType string

const (
	CoinEarn   CoinTransactionType = "earn"
	CoinSpend  CoinTransactionType = "spend"
	CoinRefund CoinTransactionType = "refund"
)

type UserCoins struct {
	UserID      string    `db:"user_id" json:"userId"`
	Balance     int64     `db:"balance" json:"balance"`
	TotalEarned int64     `db:"total_earned" json:"totalEarned"`
	TotalSpent  int64     `db:"total_spent" json:"totalSpent"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type CoinTransaction struct {
	ID        string              `db:"id" json:"id"`
	UserID    string              `db:"user_id" json:"userId"`
	Type      CoinTransactionType `db:"type" json:"type"`
	Amount    int64               `db:"amount" json:"amount"`
	BookingID *string             `db:"booking_id" json:"bookingId,omitempty"`
	Note      string              `db:"note" json:"note"`
	CreatedAt time.Time           `db:"created_at" json:"createdAt"`
}

func (t CoinTransaction) Signed() int64 {
	if t.Type == CoinSpend {
		return -t.Amount
	}
	return t.Amount
}
