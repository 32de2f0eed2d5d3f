package memory

import (
	"context"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/repository"
	"booking-service/src/pkg/utils"

	"github.com/google/uuid"
)

type walletRepo struct{ s *Store }

func (r walletRepo) FindOrCreate(ctx context.Context, ownerID string, ownerType entity.OwnerType) (*entity.Wallet, error) {
	defer r.s.lock(ctx)()
	key := ownerKey{ownerID, ownerType}
	if id, ok := r.s.st.walletByOwner[key]; ok {
		w := r.s.st.wallets[id]
		return &w, nil
	}
	now := time.Now().UTC()
	w := entity.Wallet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		OwnerType: ownerType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.st.wallets[w.ID] = w
	r.s.st.walletByOwner[key] = w.ID
	return &w, nil
}

func (r walletRepo) Transactions(ctx context.Context, walletID string) ([]entity.WalletTransaction, error) {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.wallets[walletID]; !ok {
		return nil, repository.ErrNotFound
	}
	return append([]entity.WalletTransaction{}, r.s.st.walletTx[walletID]...), nil
}

func (r walletRepo) FindBookingTransaction(ctx context.Context, walletID, bookingID string, kind entity.TransactionKind) (*entity.WalletTransaction, error) {
	defer r.s.lock(ctx)()
	for _, t := range r.s.st.walletTx[walletID] {
		if t.Kind == kind && t.BookingID != nil && *t.BookingID == bookingID {
			found := t
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r walletRepo) Apply(ctx context.Context, walletID string, tx *entity.WalletTransaction) (float64, error) {
	defer r.s.lock(ctx)()
	w, ok := r.s.st.wallets[walletID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	next := utils.RoundMoney(w.Balance + tx.Signed())
	if next < 0 {
		return w.Balance, repository.ErrInsufficientBalance
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	tx.WalletID = walletID
	w.Balance = next
	w.UpdatedAt = tx.CreatedAt
	r.s.st.wallets[walletID] = w
	r.s.st.walletTx[walletID] = append(r.s.st.walletTx[walletID], *tx)
	return next, nil
}

type couponRepo struct{ s *Store }

func (r couponRepo) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.st.coupons[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r couponRepo) CountUserUsage(ctx context.Context, couponID, userID string) (int, error) {
	defer r.s.lock(ctx)()
	return r.countLocked(couponID, userID), nil
}

func (r couponRepo) countLocked(couponID, userID string) int {
	n := 0
	for _, u := range r.s.st.couponUsages {
		if u.CouponID == couponID && u.UserID == userID {
			n++
		}
	}
	return n
}

func (r couponRepo) Redeem(ctx context.Context, usage *entity.CouponUsage) error {
	defer r.s.lock(ctx)()
	for code, c := range r.s.st.coupons {
		if c.ID != usage.CouponID {
			continue
		}
		if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
			return repository.ErrCouponExhausted
		}
		if c.UserUsageLimit > 0 && r.countLocked(c.ID, usage.UserID) >= c.UserUsageLimit {
			return repository.ErrCouponExhausted
		}
		c.UsageCount++
		r.s.st.coupons[code] = c
		if usage.ID == "" {
			usage.ID = uuid.NewString()
		}
		if usage.CreatedAt.IsZero() {
			usage.CreatedAt = time.Now().UTC()
		}
		r.s.st.couponUsages = append(r.s.st.couponUsages, *usage)
		return nil
	}
	return repository.ErrNotFound
}

type coinRepo struct{ s *Store }

func (r coinRepo) FindOrCreate(ctx context.Context, userID string) (*entity.UserCoins, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.st.coins[userID]
	if !ok {
		c = entity.UserCoins{UserID: userID, UpdatedAt: time.Now().UTC()}
		r.s.st.coins[userID] = c
	}
	return &c, nil
}

func (r coinRepo) FindBookingTransaction(ctx context.Context, userID, bookingID string, txType entity.CoinTransactionType) (*entity.CoinTransaction, error) {
	defer r.s.lock(ctx)()
	for _, t := range r.s.st.coinTx {
		if t.UserID == userID && t.Type == txType && t.BookingID != nil && *t.BookingID == bookingID {
			found := t
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r coinRepo) Apply(ctx context.Context, tx *entity.CoinTransaction) (int64, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.st.coins[tx.UserID]
	if !ok {
		c = entity.UserCoins{UserID: tx.UserID}
	}
	next := c.Balance + tx.Signed()
	if next < 0 {
		return c.Balance, repository.ErrInsufficientCoins
	}
	switch tx.Type {
	case entity.CoinEarn:
		c.TotalEarned += tx.Amount
	case entity.CoinSpend:
		c.TotalSpent += tx.Amount
	case entity.CoinRefund:
		c.TotalSpent -= tx.Amount
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	c.Balance = next
	c.UpdatedAt = tx.CreatedAt
	r.s.st.coins[tx.UserID] = c
	r.s.st.coinTx = append(r.s.st.coinTx, *tx)
	return next, nil
}

type withdrawalRepo struct{ s *Store }

func (r withdrawalRepo) Create(ctx context.Context, req *entity.WithdrawalRequest) error {
	defer r.s.lock(ctx)()
	r.s.st.withdrawals[req.ID] = *req
	return nil
}

func (r withdrawalRepo) FindByID(ctx context.Context, id string) (*entity.WithdrawalRequest, error) {
	defer r.s.lock(ctx)()
	w, ok := r.s.st.withdrawals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r withdrawalRepo) FindPendingByWorker(ctx context.Context, workerID string) (*entity.WithdrawalRequest, error) {
	defer r.s.lock(ctx)()
	for _, w := range r.s.st.withdrawals {
		if w.WorkerID == workerID && w.Status == entity.WithdrawalPending {
			found := w
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r withdrawalRepo) Transition(ctx context.Context, id string, from, to entity.WithdrawalStatus, reason string) error {
	defer r.s.lock(ctx)()
	w, ok := r.s.st.withdrawals[id]
	if !ok {
		return repository.ErrNotFound
	}
	if w.Status != from {
		return repository.ErrStaleState
	}
	w.Status = to
	w.RejectionReason = reason
	w.UpdatedAt = time.Now().UTC()
	r.s.st.withdrawals[id] = w
	return nil
}

type configRepo struct{ s *Store }

func (r configRepo) FeeConfig(ctx context.Context) (entity.FeeConfig, error) {
	defer r.s.lock(ctx)()
	return r.s.st.fee, nil
}

func (r configRepo) CoinConfig(ctx context.Context) (entity.CoinConfig, error) {
	defer r.s.lock(ctx)()
	return r.s.st.coin, nil
}
