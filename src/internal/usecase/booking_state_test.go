package usecase

import (
	"context"
	"testing"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	httpError "booking-service/src/pkg/http-error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) transitionDirect(id string, actor model.Actor, to entity.BookingStatus) error {
	return f.store.WithinTx(context.Background(), func(ctx context.Context) error {
		b, err := f.store.Bookings().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return f.core.State.Transition(ctx, b, actor, to, "")
	})
}

func TestCompletionRequiresPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, createRequest(withWorker(worker.ID)))
	f.startJob(t, b.ID, worker)

	err := f.transitionDirect(b.ID, worker, entity.StatusCompleted)
	require.Error(t, err)
	assert.True(t, httpError.Is(err, httpError.KindStateConflict))

	res := f.bookings.IssueCompletionCode(ctx, action(worker, b.ID))
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))

	res = f.bookings.OverrideStatus(ctx, &model.AdminOverrideRequest{Actor: admin, BookingID: b.ID, Status: "completed", Reason: "force close"})
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))

	assert.Equal(t, entity.StatusInProgress, f.booking(t, b.ID).Status)
}

func TestCustomerCannotCancelOnceWorkerAssigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, createRequest())
	require.NoError(t, f.bookings.AssignWorker(ctx, &model.AssignWorkerRequest{Actor: admin, BookingID: b.ID, WorkerID: worker.ID}).Error)

	res := f.bookings.CancelBooking(ctx, action(customer, b.ID))
	require.Error(t, res.Error)
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))
	assert.Equal(t, entity.StatusAssigned, f.booking(t, b.ID).Status)
}

func TestCustomerCancelRefundsWalletPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.topUp(t, customer.ID, entity.OwnerCustomer, 1500)
	b := f.create(t, createRequest(func(r *model.CreateBookingRequest) { r.WalletAmountUsed = 1000 }))
	assert.Equal(t, entity.PaymentPaid, b.PaymentStatus)

	other := &model.BookingActionRequest{Actor: model.Actor{ID: "cust-2", Role: customer.Role}, BookingID: b.ID}
	assert.True(t, httpError.Is(f.bookings.CancelBooking(ctx, other).Error, httpError.KindAuthorization))

	req := action(customer, b.ID)
	req.Reason = "plans changed"
	res := f.bookings.CancelBooking(ctx, req)
	require.NoError(t, res.Error)
	got := res.Data.(*model.BookingResponse)
	assert.Equal(t, entity.StatusCancelled, got.Status)
	assert.Equal(t, entity.PaymentRefunded, got.PaymentStatus)
	assert.Equal(t, "plans changed", got.CancellationReason)

	w := f.wallet(t, customer.ID, entity.OwnerCustomer)
	assert.Equal(t, 1500.0, w.Balance)
	last := w.Transactions[len(w.Transactions)-1]
	assert.Equal(t, entity.KindRefundWallet, last.Kind)
	assert.Equal(t, 1000.0, last.Amount)

	res = f.bookings.CancelBooking(ctx, req)
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))
	assert.Equal(t, 1500.0, f.wallet(t, customer.ID, entity.OwnerCustomer).Balance)
}

func TestFullLifecycleCreditsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetCoinConfig(entity.CoinConfig{CoinToRupeeRate: 1, MaxUsagePercentage: 50, CompletionReward: 25})
	b := f.create(t, createRequest(withWorker(worker.ID)))
	f.startJob(t, b.ID, worker)

	res := f.payments.CollectPayment(ctx, &model.CollectPaymentRequest{Actor: worker, BookingID: b.ID, Mode: model.CollectCash})
	require.NoError(t, res.Error)
	paid := res.Data.(*model.CollectPaymentResponse)
	assert.Equal(t, 1000.0, paid.Amount)
	assert.Equal(t, entity.PaymentPaid, paid.Booking.PaymentStatus)
	assert.Equal(t, 1000.0, f.wallet(t, worker.ID, entity.OwnerWorker).Balance)

	require.NoError(t, f.bookings.IssueCompletionCode(ctx, action(worker, b.ID)).Error)
	code := f.lastCode(t, model.NotifyCompletionCode, b.ID)
	res = f.bookings.CompleteBooking(ctx, &model.VerifyCodeRequest{
		Actor: worker, BookingID: b.ID, Code: code, WorkProofPhotos: []string{"https://cdn.example/after.jpg"},
	})
	require.NoError(t, res.Error)
	done := res.Data.(*model.BookingResponse)
	assert.Equal(t, entity.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.Equal(t, []string{"https://cdn.example/after.jpg"}, done.WorkProofPhotos)

	require.NoError(t, f.payments.VerifyPayment(ctx, &model.VerifyPaymentRequest{Actor: customer, BookingID: b.ID}).Error)

	ww := f.wallet(t, worker.ID, entity.OwnerWorker)
	assert.Equal(t, 1000.0, ww.Balance)
	require.Len(t, ww.Transactions, 1)
	assert.Equal(t, entity.KindEarning, ww.Transactions[0].Kind)
	assert.Equal(t, int64(25), f.coins(t, customer.ID).Balance)
}

func TestLoyaltyCreditedOnlyOnFirstCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetCoinConfig(entity.CoinConfig{CoinToRupeeRate: 1, MaxUsagePercentage: 50, CompletionReward: 25})
	b := f.create(t, createRequest(withWorker(worker.ID)))
	f.startJob(t, b.ID, worker)
	require.NoError(t, f.payments.CollectPayment(ctx, &model.CollectPaymentRequest{Actor: worker, BookingID: b.ID, Mode: model.CollectCash}).Error)

	complete := func() {
		require.NoError(t, f.bookings.IssueCompletionCode(ctx, action(worker, b.ID)).Error)
		code := f.lastCode(t, model.NotifyCompletionCode, b.ID)
		require.NoError(t, f.bookings.CompleteBooking(ctx, &model.VerifyCodeRequest{Actor: worker, BookingID: b.ID, Code: code}).Error)
	}
	complete()
	require.NoError(t, f.bookings.OverrideStatus(ctx, &model.AdminOverrideRequest{
		Actor: admin, BookingID: b.ID, Status: "in-progress", Reason: "customer disputed completion",
	}).Error)
	complete()

	assert.Equal(t, int64(25), f.coins(t, customer.ID).Balance)
	assert.True(t, f.booking(t, b.ID).LoyaltyCredited)

	audits, err := f.store.Bookings().Audits(ctx, b.ID)
	require.NoError(t, err)
	var privileged int
	for _, a := range audits {
		if a.Privileged {
			privileged++
			assert.Equal(t, admin.ID, a.ActorID)
			assert.Equal(t, entity.StatusCompleted, a.From)
			assert.Equal(t, entity.StatusInProgress, a.To)
		}
	}
	assert.Equal(t, 1, privileged)
}

func TestWorkerTransitionTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, createRequest(withWorker(worker.ID)))

	err := f.transitionDirect(b.ID, worker, entity.StatusInProgress)
	assert.True(t, httpError.Is(err, httpError.KindStateConflict))
	err = f.transitionDirect(b.ID, worker, entity.StatusCompleted)
	assert.True(t, httpError.Is(err, httpError.KindStateConflict))

	res := f.bookings.AcceptBooking(ctx, action(worker2, b.ID))
	assert.True(t, httpError.Is(res.Error, httpError.KindAuthorization))

	res = f.bookings.RejectBooking(ctx, action(worker, b.ID))
	assert.True(t, httpError.Is(res.Error, httpError.KindValidation))

	req := action(worker, b.ID)
	req.Reason = "outside my area"
	res = f.bookings.RejectBooking(ctx, req)
	require.NoError(t, res.Error)
	got := res.Data.(*model.BookingResponse)
	assert.Equal(t, entity.StatusRejected, got.Status)
	assert.Equal(t, "outside my area", got.RejectionReason)

	res = f.bookings.AcceptBooking(ctx, action(worker, b.ID))
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))
}

func TestStartCodeExpiresThroughUseCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, createRequest(withWorker(worker.ID)))
	require.NoError(t, f.bookings.AcceptBooking(ctx, action(worker, b.ID)).Error)
	require.NoError(t, f.bookings.IssueStartCode(ctx, action(worker, b.ID)).Error)
	code := f.lastCode(t, model.NotifyStartCode, b.ID)

	stored := f.booking(t, b.ID)
	assert.NotEqual(t, code, stored.StartOTP)
	assert.NotContains(t, stored.StartOTP, code)

	f.advance(16 * time.Minute)
	res := f.bookings.StartBooking(ctx, &model.VerifyCodeRequest{Actor: worker, BookingID: b.ID, Code: code})
	require.Error(t, res.Error)
	assert.Equal(t, "Invalid OTP", res.Error.Error())
	assert.Equal(t, entity.StatusAccepted, f.booking(t, b.ID).Status)
}

func TestWorkerCancelAfterAcceptRefundsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.SetCoinConfig(entity.CoinConfig{CoinToRupeeRate: 1, MaxUsagePercentage: 50})
	f.giveCoins(t, customer.ID, 40)
	f.topUp(t, customer.ID, entity.OwnerCustomer, 960)
	b := f.create(t, createRequest(withWorker(worker.ID), func(r *model.CreateBookingRequest) {
		r.CoinsToUse = 40
		r.WalletAmountUsed = 960
	}))
	assert.Equal(t, entity.PaymentPaid, b.PaymentStatus)

	require.NoError(t, f.bookings.AcceptBooking(ctx, action(worker, b.ID)).Error)
	assert.Equal(t, 960.0, f.wallet(t, worker.ID, entity.OwnerWorker).Balance)

	res := f.bookings.CancelBooking(ctx, action(worker, b.ID))
	require.NoError(t, res.Error)
	assert.Equal(t, entity.PaymentRefunded, res.Data.(*model.BookingResponse).PaymentStatus)
	assert.Equal(t, 0.0, f.wallet(t, worker.ID, entity.OwnerWorker).Balance)
	assert.Equal(t, 960.0, f.wallet(t, customer.ID, entity.OwnerCustomer).Balance)
	assert.Equal(t, int64(40), f.coins(t, customer.ID).Balance)
}
