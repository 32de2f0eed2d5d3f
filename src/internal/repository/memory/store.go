// Package memory keeps every repository in process memory. A transaction holds the store
// mutex for its whole duration and restores a snapshot when it fails, so it gives the same
// all-or-nothing guarantee as the MySQL implementation for a single replica.
package memory

import (
	"context"
	"sync"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/repository"
)

type txKey struct{ s *Store }

type ownerKey struct {
	id  string
	typ entity.OwnerType
}

type state struct {
	services      map[string]entity.Service
	bookings      map[string]entity.Booking
	bookingOrder  []string
	audits        []entity.StatusAudit
	wallets       map[string]entity.Wallet
	walletByOwner map[ownerKey]string
	walletTx      map[string][]entity.WalletTransaction
	coupons       map[string]entity.Coupon
	couponUsages  []entity.CouponUsage
	coins         map[string]entity.UserCoins
	coinTx        []entity.CoinTransaction
	withdrawals   map[string]entity.WithdrawalRequest
	fee           entity.FeeConfig
	coin          entity.CoinConfig
}

type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: &state{
		services:      map[string]entity.Service{},
		bookings:      map[string]entity.Booking{},
		wallets:       map[string]entity.Wallet{},
		walletByOwner: map[ownerKey]string{},
		walletTx:      map[string][]entity.WalletTransaction{},
		coupons:       map[string]entity.Coupon{},
		coins:         map[string]entity.UserCoins{},
		withdrawals:   map[string]entity.WithdrawalRequest{},
		coin:          entity.CoinConfig{CoinToRupeeRate: 1},
	}}
}

func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{s}) != nil
}

// lock takes the mutex unless ctx already belongs to a transaction holding it.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{s}, true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (st *state) clone() *state {
	c := &state{
		services:      make(map[string]entity.Service, len(st.services)),
		bookings:      make(map[string]entity.Booking, len(st.bookings)),
		bookingOrder:  append([]string(nil), st.bookingOrder...),
		audits:        append([]entity.StatusAudit(nil), st.audits...),
		wallets:       make(map[string]entity.Wallet, len(st.wallets)),
		walletByOwner: make(map[ownerKey]string, len(st.walletByOwner)),
		walletTx:      make(map[string][]entity.WalletTransaction, len(st.walletTx)),
		coupons:       make(map[string]entity.Coupon, len(st.coupons)),
		couponUsages:  append([]entity.CouponUsage(nil), st.couponUsages...),
		coins:         make(map[string]entity.UserCoins, len(st.coins)),
		coinTx:        append([]entity.CoinTransaction(nil), st.coinTx...),
		withdrawals:   make(map[string]entity.WithdrawalRequest, len(st.withdrawals)),
		fee:           st.fee,
		coin:          st.coin,
	}
	for k, v := range st.services {
		c.services[k] = v
	}
	for k, v := range st.bookings {
		c.bookings[k] = v.Clone()
	}
	for k, v := range st.wallets {
		c.wallets[k] = v
	}
	for k, v := range st.walletByOwner {
		c.walletByOwner[k] = v
	}
	for k, v := range st.walletTx {
		c.walletTx[k] = append([]entity.WalletTransaction(nil), v...)
	}
	for k, v := range st.coupons {
		if v.UsageLimit != nil {
			limit := *v.UsageLimit
			v.UsageLimit = &limit
		}
		c.coupons[k] = v
	}
	for k, v := range st.coins {
		c.coins[k] = v
	}
	for k, v := range st.withdrawals {
		c.withdrawals[k] = v
	}
	return c
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Tx:          s,
		Bookings:    s.Bookings(),
		Services:    s.Services(),
		Wallets:     s.Wallets(),
		Coupons:     s.Coupons(),
		Coins:       s.Coins(),
		Withdrawals: s.Withdrawals(),
		Configs:     s.Configs(),
	}
}

func (s *Store) Bookings() repository.BookingRepository       { return bookingRepo{s} }
func (s *Store) Services() repository.ServiceRepository       { return serviceRepo{s} }
func (s *Store) Wallets() repository.WalletRepository         { return walletRepo{s} }
func (s *Store) Coupons() repository.CouponRepository         { return couponRepo{s} }
func (s *Store) Coins() repository.CoinRepository             { return coinRepo{s} }
func (s *Store) Withdrawals() repository.WithdrawalRepository { return withdrawalRepo{s} }
func (s *Store) Configs() repository.ConfigRepository         { return configRepo{s} }

// Seeding helpers for local runs and tests.

func (s *Store) PutService(svc entity.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.services[svc.ID] = svc
}

func (s *Store) PutCoupon(c entity.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.coupons[c.Code] = c
}

func (s *Store) SetFeeConfig(cfg entity.FeeConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.fee = cfg
}

func (s *Store) SetCoinConfig(cfg entity.CoinConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.coin = cfg
}

// CouponUsages lists recorded usages for one coupon code.
func (s *Store) CouponUsages(code string) []entity.CouponUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.coupons[code]
	if !ok {
		return nil
	}
	var out []entity.CouponUsage
	for _, u := range s.st.couponUsages {
		if u.CouponID == c.ID {
			out = append(out, u)
		}
	}
	return out
}

// CoinTransactions lists a user's coin ledger in insertion order.
func (s *Store) CoinTransactions(userID string) []entity.CoinTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.CoinTransaction
	for _, t := range s.st.coinTx {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}
