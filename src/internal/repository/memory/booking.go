package memory

import (
	"context"
	"sort"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/repository"
)

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(ctx context.Context, b *entity.Booking) error {
	defer r.s.lock(ctx)()
	r.s.st.bookings[b.ID] = b.Clone()
	r.s.st.bookingOrder = append(r.s.st.bookingOrder, b.ID)
	return nil
}

func (r bookingRepo) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	defer r.s.lock(ctx)()
	b, ok := r.s.st.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := b.Clone()
	return &c, nil
}

func (r bookingRepo) FindByIDForUpdate(ctx context.Context, id string) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r bookingRepo) Update(ctx context.Context, b *entity.Booking) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.bookings[b.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.st.bookings[b.ID] = b.Clone()
	return nil
}

func (r bookingRepo) List(ctx context.Context, f entity.BookingFilter) ([]entity.Booking, error) {
	defer r.s.lock(ctx)()
	out := make([]entity.Booking, 0)
	for _, id := range r.s.st.bookingOrder {
		b := r.s.st.bookings[id]
		if f.CustomerID != "" && b.CustomerID != f.CustomerID {
			continue
		}
		if f.WorkerID != "" && !b.IsWorker(f.WorkerID) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus {
			continue
		}
		if f.BulkGroupID != "" && b.BulkGroupID != f.BulkGroupID {
			continue
		}
		if f.From != nil && b.ScheduledDate.Before(*f.From) {
			continue
		}
		if f.To != nil && b.ScheduledDate.After(*f.To) {
			continue
		}
		out = append(out, b.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []entity.Booking{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r bookingRepo) CountWorkerBookingsOnDate(ctx context.Context, workerID string, day time.Time, statuses []entity.BookingStatus, excludeID string) (int, error) {
	defer r.s.lock(ctx)()
	n := 0
	for id, b := range r.s.st.bookings {
		if id == excludeID || !b.IsWorker(workerID) || !entity.SameDay(b.ScheduledDate, day) {
			continue
		}
		for _, st := range statuses {
			if b.Status == st {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r bookingRepo) AppendAudit(ctx context.Context, a *entity.StatusAudit) error {
	defer r.s.lock(ctx)()
	r.s.st.audits = append(r.s.st.audits, *a)
	return nil
}

func (r bookingRepo) Audits(ctx context.Context, bookingID string) ([]entity.StatusAudit, error) {
	defer r.s.lock(ctx)()
	var out []entity.StatusAudit
	for _, a := range r.s.st.audits {
		if a.BookingID == bookingID {
			out = append(out, a)
		}
	}
	return out, nil
}

type serviceRepo struct{ s *Store }

func (r serviceRepo) FindByID(ctx context.Context, id string) (*entity.Service, error) {
	defer r.s.lock(ctx)()
	svc, ok := r.s.st.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &svc, nil
}
