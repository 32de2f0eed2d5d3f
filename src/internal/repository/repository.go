package repository

import (
	"context"
	"errors"
	"time"

	"booking-service/src/internal/entity"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrInsufficientCoins   = errors.New("insufficient coin balance")
	ErrCouponExhausted     = errors.New("coupon usage limit reached")
	ErrStaleState          = errors.New("record changed concurrently")
)

// Transactor runs fn so that every repository call made with the ctx it receives commits or
// rolls back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id string) (*entity.Booking, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*entity.Booking, error)
	Update(ctx context.Context, booking *entity.Booking) error
	List(ctx context.Context, filter entity.BookingFilter) ([]entity.Booking, error)
	CountWorkerBookingsOnDate(ctx context.Context, workerID string, day time.Time, statuses []entity.BookingStatus, excludeID string) (int, error)
	AppendAudit(ctx context.Context, audit *entity.StatusAudit) error
	Audits(ctx context.Context, bookingID string) ([]entity.StatusAudit, error)
}

type ServiceRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Service, error)
}

type WalletRepository interface {
	// FindOrCreate returns the owner's wallet, creating an empty one on first need.
	// Inside a transaction the wallet row stays locked until commit.
	FindOrCreate(ctx context.Context, ownerID string, ownerType entity.OwnerType) (*entity.Wallet, error)
	Transactions(ctx context.Context, walletID string) ([]entity.WalletTransaction, error)
	FindBookingTransaction(ctx context.Context, walletID, bookingID string, kind entity.TransactionKind) (*entity.WalletTransaction, error)
	// Apply moves the balance and appends tx as one unit. A debit larger than the balance
	// returns ErrInsufficientBalance and changes nothing.
	Apply(ctx context.Context, walletID string, tx *entity.WalletTransaction) (float64, error)
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Coupon, error)
	CountUserUsage(ctx context.Context, couponID, userID string) (int, error)
	// Redeem increments usage_count only while it is below usage_limit and the user is below
	// user_usage_limit, then records usage. Otherwise ErrCouponExhausted.
	Redeem(ctx context.Context, usage *entity.CouponUsage) error
}

type CoinRepository interface {
	FindOrCreate(ctx context.Context, userID string) (*entity.UserCoins, error)
	FindBookingTransaction(ctx context.Context, userID, bookingID string, txType entity.CoinTransactionType) (*entity.CoinTransaction, error)
	// Apply fails with ErrInsufficientCoins when a spend exceeds the balance.
	Apply(ctx context.Context, tx *entity.CoinTransaction) (int64, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, req *entity.WithdrawalRequest) error
	FindByID(ctx context.Context, id string) (*entity.WithdrawalRequest, error)
	FindPendingByWorker(ctx context.Context, workerID string) (*entity.WithdrawalRequest, error)
	// Transition moves a request from one status to another, ErrStaleState if it was not in from.
	Transition(ctx context.Context, id string, from, to entity.WithdrawalStatus, reason string) error
}

type ConfigRepository interface {
	FeeConfig(ctx context.Context) (entity.FeeConfig, error)
	CoinConfig(ctx context.Context) (entity.CoinConfig, error)
}

// Repositories is the full set a usecase layer is built from.
type Repositories struct {
	Tx          Transactor
	Bookings    BookingRepository
	Services    ServiceRepository
	Wallets     WalletRepository
	Coupons     CouponRepository
	Coins       CoinRepository
	Withdrawals WithdrawalRepository
	Configs     ConfigRepository
}
