package entity

import "time"

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusAssigned   BookingStatus = "assigned"
	StatusAccepted   BookingStatus = "accepted"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusRejected   BookingStatus = "rejected"
)

// Terminal reports whether no further non-privileged transition leaves the status.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusAccepted, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

const (
	PaymentMethodWallet = "wallet"
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
	PaymentMethodLink   = "payment-link"
)

type Address struct {
	Line      string  `json:"line"`
	City      string  `json:"city"`
	Pincode   string  `json:"pincode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type RescheduleStatus string

const (
	ReschedulePending  RescheduleStatus = "pending"
	RescheduleApproved RescheduleStatus = "approved"
	RescheduleRejected RescheduleStatus = "rejected"
)

type RescheduleRequest struct {
	Date        time.Time        `json:"date"`
	Time        string           `json:"time"`
	Reason      string           `json:"reason"`
	RequestedBy string           `json:"requestedBy"`
	RequestedAt time.Time        `json:"requestedAt"`
	Status      RescheduleStatus `json:"status"`
}

// PriceBreakdown holds every amount the pricing pipeline produced for one booking.
type PriceBreakdown struct {
	BasePrice        float64 `json:"basePrice"`
	PlatformFee      float64 `json:"platformFee"`
	TravelCharge     float64 `json:"travelCharge"`
	Distance         float64 `json:"distance"`
	CouponCode       string  `json:"couponCode,omitempty"`
	CouponDiscount   float64 `json:"couponDiscount"`
	CoinsUsed        int64   `json:"coinsUsed"`
	CoinDiscount     float64 `json:"coinDiscount"`
	WalletAmountUsed float64 `json:"walletAmountUsed"`
	FinalPrice       float64 `json:"finalPrice"`
	AmountPaid       float64 `json:"amountPaid"`
}

// ExternalPaid is the part of AmountPaid that did not come from the customer wallet.
func (p PriceBreakdown) ExternalPaid() float64 {
	v := p.AmountPaid - p.WalletAmountUsed
	if v < 0 {
		return 0
	}
	return v
}

// Outstanding is what the customer still owes.
func (p PriceBreakdown) Outstanding() float64 {
	v := p.FinalPrice - p.AmountPaid
	if v < 0 {
		return 0
	}
	return v
}

type Booking struct {
	ID            string
	BulkGroupID   string
	CustomerID    string
	WorkerID      *string
	ServiceID     string
	ServiceName   string
	CategoryID    string
	ScheduledDate time.Time
	ScheduledTime string
	Address       Address
	Notes         string

	Price         PriceBreakdown
	PaymentStatus PaymentStatus
	PaymentMethod string
	PaymentID     string
	PaymentLinkID string

	Status              BookingStatus
	StartOTP            string
	StartOTPExpiry      *time.Time
	CompletionOTP       string
	CompletionOTPExpiry *time.Time

	WorkProofPhotos    []string
	CancellationReason string
	RejectionReason    string
	RescheduleRequest  *RescheduleRequest
	LoyaltyCredited    bool

	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b *Booking) HasWorker() bool {
	return b.WorkerID != nil && *b.WorkerID != ""
}

func (b *Booking) IsWorker(id string) bool {
	return b.HasWorker() && *b.WorkerID == id
}

// Clone returns a deep copy; stores hand these out so callers never alias persisted state.
func (b Booking) Clone() Booking {
	c := b
	if b.WorkerID != nil {
		w := *b.WorkerID
		c.WorkerID = &w
	}
	c.StartOTPExpiry = cloneTime(b.StartOTPExpiry)
	c.CompletionOTPExpiry = cloneTime(b.CompletionOTPExpiry)
	c.StartedAt = cloneTime(b.StartedAt)
	c.CompletedAt = cloneTime(b.CompletedAt)
	if b.WorkProofPhotos != nil {
		c.WorkProofPhotos = append([]string(nil), b.WorkProofPhotos...)
	}
	if b.RescheduleRequest != nil {
		r := *b.RescheduleRequest
		c.RescheduleRequest = &r
	}
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// SameDay compares calendar days in UTC.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

type BookingFilter struct {
	CustomerID    string
	WorkerID      string
	Status        BookingStatus
	PaymentStatus PaymentStatus
	BulkGroupID   string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// StatusAudit records one transition; Privileged marks admin overrides.
type StatusAudit struct {
	ID         string        `db:"id"`
	BookingID  string        `db:"booking_id"`
	From       BookingStatus `db:"from_status"`
	To         BookingStatus `db:"to_status"`
	ActorID    string        `db:"actor_id"`
	ActorRole  string        `db:"actor_role"`
	Reason     string        `db:"reason"`
	Privileged bool          `db:"privileged"`
	CreatedAt  time.Time     `db:"created_at"`
}

// Service is the read-only catalog view a booking is priced from.
type Service struct {
	ID         string  `db:"id"`
	Name       string  `db:"name"`
	CategoryID string  `db:"category_id"`
	BasePrice  float64 `db:"base_price"`
	IsActive   bool    `db:"is_active"`
}
