package model

import "time"

type Event interface {
	GetId() string
}

const (
	RecipientUser   = "User"
	RecipientWorker = "Worker"
)

const (
	NotifyBookingCreated     = "booking_created"
	NotifyBookingAssigned    = "booking_assigned"
	NotifyBookingUnassigned  = "booking_unassigned"
	NotifyBookingStatus      = "booking_status"
	NotifyStartCode          = "start_otp"
	NotifyCompletionCode     = "completion_otp"
	NotifyReschedule         = "reschedule_request"
	NotifyRescheduleDecision = "reschedule_decision"
	NotifyPayment            = "payment"
	NotifyRefund             = "refund"
	NotifyPayout             = "payout"
)

// Notification is everything the dispatcher needs; delivery is someone else's concern.
type Notification struct {
	ID             string            `json:"id"`
	RecipientID    string            `json:"recipientId"`
	RecipientModel string            `json:"recipientModel"`
	Title          string            `json:"title"`
	Message        string            `json:"message"`
	Type           string            `json:"type"`
	Data           map[string]string `json:"data,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func (n *Notification) GetId() string {
	return n.ID
}
