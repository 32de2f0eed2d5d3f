package usecase

import (
	"context"
	"time"

	"booking-service/src/internal/model"
)

// NotificationDispatcher hands a notification to whatever delivers it. Failures never roll
// back the operation that produced the notification.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n *model.Notification) error
}

// DistanceCalculator returns kilometres between two points.
type DistanceCalculator interface {
	Distance(ctx context.Context, from, to model.Coordinates) (float64, error)
}

// WorkerLocator resolves a worker's last known position; nil when unknown.
type WorkerLocator interface {
	Locate(ctx context.Context, workerID string) (*model.Coordinates, error)
}

type AssignableWorkerFinder interface {
	FindAssignable(ctx context.Context, search model.WorkerSearch) ([]model.AssignableWorker, error)
}

type PaymentProcessor interface {
	CreateOrder(ctx context.Context, amount float64, receipt string) (*model.PaymentOrder, error)
	CreatePaymentLink(ctx context.Context, amount float64, reference, description string) (*model.PaymentLink, error)
	PaymentLinkStatus(ctx context.Context, linkID string) (*model.PaymentLink, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
