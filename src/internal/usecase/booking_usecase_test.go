package usecase

import (
	"context"
	"testing"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	httpError "booking-service/src/pkg/http-error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tests := []struct {
		name string
		req  *model.CreateBookingRequest
		kind httpError.Kind
	}{
		{"missing service", createRequest(func(r *model.CreateBookingRequest) { r.ServiceID = "" }), httpError.KindValidation},
		{"bad time", createRequest(func(r *model.CreateBookingRequest) { r.ScheduledTime = "25:99" }), httpError.KindValidation},
		{"past date", createRequest(func(r *model.CreateBookingRequest) { r.ScheduledDate = "2029-12-31" }), httpError.KindValidation},
		{"unknown service", createRequest(func(r *model.CreateBookingRequest) { r.ServiceID = "svc-none" }), httpError.KindNotFound},
		{"inactive service", createRequest(func(r *model.CreateBookingRequest) { r.ServiceID = "svc-old" }), httpError.KindStateConflict},
		{"negative coins", createRequest(func(r *model.CreateBookingRequest) { r.CoinsToUse = -1 }), httpError.KindValidation},
		{"worker cannot book", createRequest(func(r *model.CreateBookingRequest) { r.Actor = worker }), httpError.KindAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.bookings.CreateBooking(ctx, tt.req)
			require.Error(t, res.Error)
			assert.True(t, httpError.Is(res.Error, tt.kind), res.Error.Error())
		})
	}
}

func TestListAndGetAreRoleScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.create(t, createRequest(withWorker(worker.ID)))
	otherCustomer := model.Actor{ID: "cust-2", Role: customer.Role}
	theirs := f.create(t, createRequest(func(r *model.CreateBookingRequest) { r.Actor = otherCustomer }))

	res := f.bookings.ListBookings(ctx, &model.ListBookingsRequest{Actor: customer, CustomerID: otherCustomer.ID})
	require.NoError(t, res.Error)
	list := res.Data.([]*model.BookingResponse)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	res = f.bookings.ListBookings(ctx, &model.ListBookingsRequest{Actor: worker})
	require.NoError(t, res.Error)
	assert.Len(t, res.Data.([]*model.BookingResponse), 1)

	res = f.bookings.ListBookings(ctx, &model.ListBookingsRequest{Actor: admin})
	require.NoError(t, res.Error)
	assert.Len(t, res.Data.([]*model.BookingResponse), 2)

	res = f.bookings.GetBooking(ctx, &model.GetBookingRequest{Actor: customer, BookingID: theirs.ID})
	assert.True(t, httpError.Is(res.Error, httpError.KindAuthorization))
	res = f.bookings.GetBooking(ctx, &model.GetBookingRequest{Actor: worker, BookingID: theirs.ID})
	assert.True(t, httpError.Is(res.Error, httpError.KindAuthorization))
	res = f.bookings.GetBooking(ctx, &model.GetBookingRequest{Actor: worker, BookingID: mine.ID})
	require.NoError(t, res.Error)
	res = f.bookings.GetBooking(ctx, &model.GetBookingRequest{Actor: admin, BookingID: "missing"})
	assert.True(t, httpError.Is(res.Error, httpError.KindNotFound))
}

func TestRescheduleProposalAndResponse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, createRequest())
	require.NoError(t, assign(f, b.ID, worker.ID))

	propose := &model.RescheduleProposalRequest{Actor: worker, BookingID: b.ID, Date: "2030-01-15", Time: "11:00", Reason: "stuck on another job"}
	res := f.bookings.RequestReschedule(ctx, propose)
	require.NoError(t, res.Error)
	got := res.Data.(*model.BookingResponse)
	assert.Equal(t, scheduled, got.ScheduledDate, "a proposal is not applied on its own")
	require.NotNil(t, got.RescheduleRequest)
	assert.Equal(t, entity.ReschedulePending, got.RescheduleRequest.Status)
	assert.Len(t, f.notes.find(model.NotifyReschedule, customer.ID), 1)

	res = f.bookings.RequestReschedule(ctx, propose)
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))

	res = f.bookings.RespondReschedule(ctx, &model.RescheduleDecisionRequest{Actor: worker, BookingID: b.ID, Approve: true})
	assert.True(t, httpError.Is(res.Error, httpError.KindAuthorization))

	res = f.bookings.RespondReschedule(ctx, &model.RescheduleDecisionRequest{Actor: customer, BookingID: b.ID, Approve: true})
	require.NoError(t, res.Error)
	got = res.Data.(*model.BookingResponse)
	assert.Equal(t, "2030-01-15", got.ScheduledDate)
	assert.Equal(t, "11:00", got.ScheduledTime)
	assert.Equal(t, entity.RescheduleApproved, got.RescheduleRequest.Status)
	assert.Len(t, f.notes.find(model.NotifyRescheduleDecision, worker.ID), 1)
}

func TestRescheduleApprovalChecksWorkerCalendar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blocker := f.create(t, createRequest(func(r *model.CreateBookingRequest) { r.ScheduledDate = "2030-01-15" }))
	require.NoError(t, assign(f, blocker.ID, worker.ID))
	b := f.create(t, createRequest())
	require.NoError(t, assign(f, b.ID, worker.ID))

	require.NoError(t, f.bookings.RequestReschedule(ctx, &model.RescheduleProposalRequest{
		Actor: worker, BookingID: b.ID, Date: "2030-01-15", Time: "15:00", Reason: "family event",
	}).Error)
	res := f.bookings.RespondReschedule(ctx, &model.RescheduleDecisionRequest{Actor: customer, BookingID: b.ID, Approve: true})
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))

	res = f.bookings.RespondReschedule(ctx, &model.RescheduleDecisionRequest{Actor: customer, BookingID: b.ID, Approve: false})
	require.NoError(t, res.Error)
	got := res.Data.(*model.BookingResponse)
	assert.Equal(t, scheduled, got.ScheduledDate)
	assert.Equal(t, entity.RescheduleRejected, got.RescheduleRequest.Status)
}
