package usecase

import (
	"context"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/repository"
)

// busyStatuses are the states in which a booking occupies its worker's day.
var busyStatuses = []entity.BookingStatus{
	entity.StatusAssigned,
	entity.StatusAccepted,
	entity.StatusInProgress,
}

type AssignmentCoordinator struct {
	Bookings repository.BookingRepository
}

// EnsureAvailable fails when the worker already holds another active booking that day.
func (a *AssignmentCoordinator) EnsureAvailable(ctx context.Context, workerID string, day time.Time, excludeID string) error {
	n, err := a.Bookings.CountWorkerBookingsOnDate(ctx, workerID, day, busyStatuses, excludeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflict("Worker already has a booking on %s", day.UTC().Format("2006-01-02"))
	}
	return nil
}

// Assign sets workerID on b and moves it to assigned. It returns the worker being replaced,
// if any. Callers hold both the worker and the booking lock.
func (a *AssignmentCoordinator) Assign(ctx context.Context, b *entity.Booking, workerID string) (string, error) {
	if b.Status != entity.StatusPending && b.Status != entity.StatusAssigned {
		return "", conflict("Cannot assign a worker to a booking that is %s", b.Status)
	}
	if b.IsWorker(workerID) && b.Status == entity.StatusAssigned {
		return "", conflict("Worker is already assigned to this booking")
	}
	if err := a.EnsureAvailable(ctx, workerID, b.ScheduledDate, b.ID); err != nil {
		return "", err
	}
	var previous string
	if b.HasWorker() && *b.WorkerID != workerID {
		previous = *b.WorkerID
	}
	w := workerID
	b.WorkerID = &w
	b.Status = entity.StatusAssigned
	return previous, nil
}
