package usecase

import (
	"context"
	"fmt"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	"booking-service/src/internal/repository"
	"booking-service/src/pkg/lock"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/token"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Core holds the repositories and engines the booking, payment and payout usecases share.
type Core struct {
	Log        log.Log
	Validate   *validator.Validate
	Repos      repository.Repositories
	Locker     lock.Locker
	Notifier   NotificationDispatcher
	Pricing    *PricingEngine
	OTP        *OTPGate
	Settlement *SettlementEngine
	State      *StateMachine
	Assignment *AssignmentCoordinator
	Now        func() time.Time
}

func NewCore(logger log.Log, validate *validator.Validate, repos repository.Repositories, locker lock.Locker, notifier NotificationDispatcher, otp *OTPGate) *Core {
	c := &Core{
		Log:      logger,
		Validate: validate,
		Repos:    repos,
		Locker:   locker,
		Notifier: notifier,
		OTP:      otp,
		Now:      time.Now,
	}
	c.Pricing = &PricingEngine{Coupons: repos.Coupons, Coins: repos.Coins, Wallets: repos.Wallets}
	c.Settlement = &SettlementEngine{Log: logger, Wallets: repos.Wallets, Coins: repos.Coins}
	c.State = &StateMachine{
		Bookings:   repos.Bookings,
		Configs:    repos.Configs,
		Settlement: c.Settlement,
		Now:        c.now,
	}
	c.Assignment = &AssignmentCoordinator{Bookings: repos.Bookings}
	return c
}

func (c *Core) now() time.Time {
	return clock(c.Now).now()
}

// withBooking serializes on the booking id, opens a transaction and loads the booking
// locked for update. Keys are always taken before the transaction starts.
func (c *Core) withBooking(ctx context.Context, id string, fn func(ctx context.Context, b *entity.Booking) error, extraKeys ...string) error {
	keys := append(append([]string(nil), extraKeys...), bookingKey(id))
	for _, key := range keys {
		unlock, err := c.Locker.Lock(ctx, key)
		if err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
		defer unlock()
	}
	return c.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := c.Repos.Bookings.FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookup(err, "booking", id)
		}
		return fn(ctx, b)
	})
}

func bookingKey(id string) string { return "booking:" + id }

func workerKey(id string) string { return "worker:" + id }

// notify delivers after commit; a failed delivery is logged, never surfaced.
func (c *Core) notify(ctx context.Context, batch []*model.Notification) {
	if c.Notifier == nil {
		return
	}
	for _, n := range batch {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = c.now()
		}
		if err := c.Notifier.Dispatch(ctx, n); err != nil {
			c.Log.Error("notify", err.Error(), n.Type, n.RecipientID)
		}
	}
}

func toCustomer(b *entity.Booking, kind, title, message string) *model.Notification {
	return &model.Notification{
		RecipientID:    b.CustomerID,
		RecipientModel: model.RecipientUser,
		Title:          title,
		Message:        message,
		Type:           kind,
		Data:           map[string]string{"bookingId": b.ID},
	}
}

func toWorker(workerID string, b *entity.Booking, kind, title, message string) *model.Notification {
	return &model.Notification{
		RecipientID:    workerID,
		RecipientModel: model.RecipientWorker,
		Title:          title,
		Message:        message,
		Type:           kind,
		Data:           map[string]string{"bookingId": b.ID},
	}
}

// canView lets a booking's customer, its assigned worker and admins read it.
func canView(b *entity.Booking, actor model.Actor) bool {
	switch actor.Role {
	case token.RoleAdmin:
		return true
	case token.RoleCustomer:
		return b.CustomerID == actor.ID
	case token.RoleWorker:
		return b.IsWorker(actor.ID)
	}
	return false
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, badRequest("invalid date %q", s)
	}
	return d, nil
}
