package usecase

import (
	"context"
	"strconv"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	"booking-service/src/internal/repository"
	"booking-service/src/pkg/metrics"
	"booking-service/src/pkg/token"

	"github.com/google/uuid"
)

// workerMoves is every transition an assigned worker may perform.
var workerMoves = map[entity.BookingStatus][]entity.BookingStatus{
	entity.StatusPending:    {entity.StatusAccepted, entity.StatusRejected},
	entity.StatusAssigned:   {entity.StatusAccepted, entity.StatusRejected},
	entity.StatusAccepted:   {entity.StatusInProgress, entity.StatusCancelled},
	entity.StatusInProgress: {entity.StatusCompleted},
}

func workerMayMove(from, to entity.BookingStatus) bool {
	for _, s := range workerMoves[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StateMachine validates and executes booking status changes. Callers hold the booking
// lock and an open transaction.
type StateMachine struct {
	Bookings   repository.BookingRepository
	Configs    repository.ConfigRepository
	Settlement *SettlementEngine
	Now        func() time.Time
}

// Transition performs a regular, role-checked move.
func (m *StateMachine) Transition(ctx context.Context, b *entity.Booking, actor model.Actor, to entity.BookingStatus, reason string) error {
	if err := m.authorize(b, actor, to); err != nil {
		return err
	}
	if to == entity.StatusRejected && reason == "" {
		return badRequest("a reason is required to reject a booking")
	}
	return m.apply(ctx, b, actor, to, reason, false)
}

// Override is the admin-only privileged move. It skips the transition table but keeps the
// payment guard on completion, and is audited as privileged.
func (m *StateMachine) Override(ctx context.Context, b *entity.Booking, actor model.Actor, to entity.BookingStatus, reason string) error {
	if actor.Role != token.RoleAdmin {
		return forbidden("only admins can override booking status")
	}
	if !to.Valid() {
		return badRequest("unknown status %q", to)
	}
	if b.Status == to {
		return conflict("Booking is already %s", to)
	}
	if (to == entity.StatusAssigned || to == entity.StatusAccepted || to == entity.StatusInProgress) && !b.HasWorker() {
		return conflict("Booking has no worker assigned")
	}
	return m.apply(ctx, b, actor, to, reason, true)
}

func (m *StateMachine) authorize(b *entity.Booking, actor model.Actor, to entity.BookingStatus) error {
	switch actor.Role {
	case token.RoleWorker:
		if !b.IsWorker(actor.ID) {
			return forbidden("only the assigned worker can update this booking")
		}
		if !workerMayMove(b.Status, to) {
			return conflict("Cannot change booking status from %s to %s", b.Status, to)
		}
	case token.RoleCustomer:
		if b.CustomerID != actor.ID {
			return forbidden("you are not allowed to update this booking")
		}
		if to != entity.StatusCancelled {
			return forbidden("customers can only cancel bookings")
		}
		if b.HasWorker() {
			return conflict("Booking cannot be cancelled after a worker has been assigned")
		}
		if b.Status != entity.StatusPending {
			return conflict("Cannot cancel a booking that is %s", b.Status)
		}
	default:
		return forbidden("use the status override to change this booking")
	}
	return nil
}

func (m *StateMachine) apply(ctx context.Context, b *entity.Booking, actor model.Actor, to entity.BookingStatus, reason string, privileged bool) error {
	now := clock(m.Now).now()
	from := b.Status
	if to == entity.StatusCompleted && b.PaymentStatus != entity.PaymentPaid {
		return conflict("Payment must be completed before the booking can be completed")
	}
	b.Status = to

	switch to {
	case entity.StatusAccepted:
		if _, err := m.Settlement.CreditWorker(ctx, b); err != nil {
			return err
		}
	case entity.StatusCompleted:
		cfg, err := m.Configs.CoinConfig(ctx)
		if err != nil {
			return err
		}
		if err := m.Settlement.CreditLoyalty(ctx, b, cfg.CompletionReward); err != nil {
			return err
		}
		if _, err := m.Settlement.CreditWorker(ctx, b); err != nil {
			return err
		}
		b.CompletedAt = &now
	case entity.StatusCancelled:
		if _, err := m.Settlement.Refund(ctx, b); err != nil {
			return err
		}
		b.CancellationReason = reason
	case entity.StatusRejected:
		// rejection is terminal too, so anything collected goes back to the customer
		if _, err := m.Settlement.Refund(ctx, b); err != nil {
			return err
		}
		b.RejectionReason = reason
	case entity.StatusInProgress:
		if b.StartedAt == nil {
			b.StartedAt = &now
		}
	}

	if err := m.Save(ctx, b, actor, from, reason, privileged); err != nil {
		return err
	}
	metrics.BookingTransitions.WithLabelValues(string(from), string(to), strconv.FormatBool(privileged)).Inc()
	return nil
}

// Save persists b. An audit entry is appended when the status moved, when the change is
// privileged or when a reason was given.
func (m *StateMachine) Save(ctx context.Context, b *entity.Booking, actor model.Actor, from entity.BookingStatus, reason string, privileged bool) error {
	now := clock(m.Now).now()
	b.UpdatedAt = now
	if err := m.Bookings.Update(ctx, b); err != nil {
		return err
	}
	if from == b.Status && !privileged && reason == "" {
		return nil
	}
	return m.Bookings.AppendAudit(ctx, &entity.StatusAudit{
		ID:         uuid.NewString(),
		BookingID:  b.ID,
		From:       from,
		To:         b.Status,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Reason:     reason,
		Privileged: privileged,
		CreatedAt:  now,
	})
}
