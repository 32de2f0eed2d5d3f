package entity

import "time"

type OwnerType string

const (
	OwnerCustomer OwnerType = "customer"
	OwnerWorker   OwnerType = "worker"
)

type TransactionType string

const (
	TxCredit TransactionType = "credit"
	TxDebit  TransactionType = "debit"
)

// TransactionKind tags why money moved; idempotency checks key on (kind, booking/withdrawal id).
type TransactionKind string

const (
	KindBookingPayment     TransactionKind = "booking_payment"
	KindRefundWallet       TransactionKind = "refund_wallet"
	KindRefundExternal     TransactionKind = "refund_external"
	KindEarning            TransactionKind = "earning"
	KindEarningReversal    TransactionKind = "earning_reversal"
	KindWithdrawal         TransactionKind = "withdrawal"
	KindWithdrawalReversal TransactionKind = "withdrawal_reversal"
	KindTopUp              TransactionKind = "topup"
)

type Wallet struct {
	ID           string              `db:"id" json:"id"`
	OwnerID      string              `db:"owner_id" json:"ownerId"`
	OwnerType    OwnerType           `db:"owner_type" json:"ownerType"`
	Balance      float64             `db:"balance" json:"balance"`
	Transactions []WalletTransaction `db:"-" json:"transactions"`
	CreatedAt    time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updatedAt"`
}

type WalletTransaction struct {
	ID           string          `db:"id" json:"id"`
	WalletID     string          `db:"wallet_id" json:"walletId"`
	Type         TransactionType `db:"type" json:"type"`
	Kind         TransactionKind `db:"kind" json:"kind"`
	Amount       float64         `db:"amount" json:"amount"`
	Note         string          `db:"note" json:"note"`
	BookingID    *string         `db:"booking_id" json:"bookingId,omitempty"`
	WithdrawalID *string         `db:"withdrawal_id" json:"withdrawalId,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"timestamp"`
}

// Signed is the amount's effect on the balance.
func (t WalletTransaction) Signed() float64 {
	if t.Type == TxDebit {
		return -t.Amount
	}
	return t.Amount
}

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

type WithdrawalRequest struct {
	ID              string           `db:"id" json:"id"`
	WorkerID        string           `db:"worker_id" json:"workerId"`
	Amount          float64          `db:"amount" json:"amount"`
	Status          WithdrawalStatus `db:"status" json:"status"`
	RejectionReason string           `db:"rejection_reason" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
}
