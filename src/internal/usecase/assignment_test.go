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

type stubFinder struct {
	found []model.AssignableWorker
	last  model.WorkerSearch
}

func (s *stubFinder) FindAssignable(_ context.Context, search model.WorkerSearch) ([]model.AssignableWorker, error) {
	s.last = search
	return s.found, nil
}

type stubLocator map[string]model.Coordinates

func (s stubLocator) Locate(_ context.Context, workerID string) (*model.Coordinates, error) {
	c, ok := s[workerID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type flatDistance float64

func (d flatDistance) Distance(context.Context, model.Coordinates, model.Coordinates) (float64, error) {
	return float64(d), nil
}

func assign(f *fixture, bookingID, workerID string) error {
	return f.bookings.AssignWorker(context.Background(), &model.AssignWorkerRequest{Actor: admin, BookingID: bookingID, WorkerID: workerID}).Error
}

func TestAssignAndReassignNotifiesEveryone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t, createRequest())

	require.NoError(t, assign(f, b.ID, worker.ID))
	assert.Equal(t, entity.StatusAssigned, f.booking(t, b.ID).Status)
	assert.Len(t, f.notes.find(model.NotifyBookingAssigned, worker.ID), 1)
	assert.Len(t, f.notes.find(model.NotifyBookingAssigned, customer.ID), 1)

	require.NoError(t, assign(f, b.ID, worker2.ID))
	stored := f.booking(t, b.ID)
	assert.True(t, stored.IsWorker(worker2.ID))
	assert.Len(t, f.notes.find(model.NotifyBookingUnassigned, worker.ID), 1)
	assert.Len(t, f.notes.find(model.NotifyBookingAssigned, worker2.ID), 1)
	assert.Len(t, f.notes.find(model.NotifyBookingAssigned, customer.ID), 2)

	audits, err := f.store.Bookings().Audits(ctx, b.ID)
	require.NoError(t, err)
	last := audits[len(audits)-1]
	assert.Equal(t, entity.StatusAssigned, last.From)
	assert.Equal(t, entity.StatusAssigned, last.To)
	assert.Equal(t, "reassigned from "+worker.ID, last.Reason)

	assert.True(t, httpError.Is(assign(f, b.ID, worker2.ID), httpError.KindStateConflict))

	require.NoError(t, f.bookings.AcceptBooking(ctx, action(worker2, b.ID)).Error)
	assert.True(t, httpError.Is(assign(f, b.ID, worker.ID), httpError.KindStateConflict))
}

func TestAssignRejectsSameDayConflict(t *testing.T) {
	f := newFixture(t)
	busy := f.create(t, createRequest())
	require.NoError(t, assign(f, busy.ID, worker.ID))

	sameDay := f.create(t, createRequest(func(r *model.CreateBookingRequest) { r.ScheduledTime = "17:00" }))
	err := assign(f, sameDay.ID, worker.ID)
	require.Error(t, err)
	assert.True(t, httpError.Is(err, httpError.KindStateConflict))
	assert.Equal(t, entity.StatusPending, f.booking(t, sameDay.ID).Status)

	nextDay := f.create(t, createRequest(func(r *model.CreateBookingRequest) { r.ScheduledDate = "2030-01-13" }))
	require.NoError(t, assign(f, nextDay.ID, worker.ID))

	// a cancelled booking frees the day
	require.NoError(t, f.bookings.OverrideStatus(context.Background(), &model.AdminOverrideRequest{
		Actor: admin, BookingID: busy.ID, Status: "cancelled", Reason: "duplicate",
	}).Error)
	require.NoError(t, assign(f, sameDay.ID, worker.ID))
}

func TestAcceptRechecksWorkerCalendar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	preferred := f.create(t, createRequest(withWorker(worker.ID)))
	require.Equal(t, entity.StatusPending, preferred.Status)

	assigned := f.create(t, createRequest(func(r *model.CreateBookingRequest) { r.ScheduledTime = "17:00" }))
	require.NoError(t, assign(f, assigned.ID, worker.ID))
	require.NoError(t, f.bookings.AcceptBooking(ctx, action(worker, assigned.ID)).Error)

	res := f.bookings.AcceptBooking(ctx, action(worker, preferred.ID))
	require.Error(t, res.Error)
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))
	assert.Equal(t, entity.StatusPending, f.booking(t, preferred.ID).Status)

	require.NoError(t, f.bookings.CancelBooking(ctx, &model.BookingActionRequest{
		Actor: worker, BookingID: assigned.ID, Reason: "double booked",
	}).Error)
	assert.True(t, httpError.Is(f.bookings.AcceptBooking(ctx, action(worker, assigned.ID)).Error, httpError.KindStateConflict))
	require.NoError(t, f.bookings.AcceptBooking(ctx, action(worker, preferred.ID)).Error)
}

func TestOnlyAdminsAssign(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, createRequest())
	res := f.bookings.AssignWorker(context.Background(), &model.AssignWorkerRequest{Actor: customer, BookingID: b.ID, WorkerID: worker.ID})
	assert.True(t, httpError.Is(res.Error, httpError.KindAuthorization))
}

func TestPreferredWorkerChecksCalendarAndDistance(t *testing.T) {
	f := newFixture(t)
	f.store.SetFeeConfig(entity.FeeConfig{TravelChargePerKm: 12, IsActive: true})
	f.bookings.Locator = stubLocator{worker.ID: {Latitude: 18.5, Longitude: 73.8}}
	f.bookings.Distance = flatDistance(2.5)

	b := f.create(t, createRequest(withWorker(worker.ID)))
	assert.Equal(t, 2.5, b.Price.Distance)
	assert.Equal(t, 30.0, b.Price.TravelCharge)
	assert.Equal(t, 1030.0, b.Price.FinalPrice)
	assert.Equal(t, entity.StatusPending, b.Status)

	unknown := f.create(t, createRequest(withWorker("wrk-far"), func(r *model.CreateBookingRequest) { r.ScheduledDate = "2030-01-14" }))
	assert.Equal(t, 0.0, unknown.Price.TravelCharge)

	other := f.create(t, createRequest())
	require.NoError(t, assign(f, other.ID, worker2.ID))
	res := f.bookings.CreateBooking(context.Background(), createRequest(withWorker(worker2.ID)))
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))
}

func TestAssignableWorkersDropsBusyWorkers(t *testing.T) {
	f := newFixture(t)
	finder := &stubFinder{found: []model.AssignableWorker{{WorkerID: worker.ID, DistanceKm: 1.2}, {WorkerID: worker2.ID, DistanceKm: 3.4}}}
	f.bookings.Finder = finder

	busy := f.create(t, createRequest())
	require.NoError(t, assign(f, busy.ID, worker.ID))
	b := f.create(t, createRequest())

	res := f.bookings.AssignableWorkers(context.Background(), &model.GetBookingRequest{Actor: admin, BookingID: b.ID})
	require.NoError(t, res.Error)
	got := res.Data.([]model.AssignableWorker)
	require.Len(t, got, 1)
	assert.Equal(t, worker2.ID, got[0].WorkerID)
	assert.Equal(t, "cleaning", finder.last.CategoryID)
	assert.Equal(t, "Pune", finder.last.City)
}
