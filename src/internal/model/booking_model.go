package model

import (
	"time"

	"booking-service/src/internal/entity"
)

// Actor is the authenticated caller, resolved by the auth middleware.
type Actor struct {
	ID   string `json:"-" validate:"required"`
	Role string `json:"-" validate:"required,oneof=customer worker admin"`
}

type AddressRequest struct {
	Line      string  `json:"line" validate:"required,max=500"`
	City      string  `json:"city" validate:"required,max=100"`
	Pincode   string  `json:"pincode" validate:"omitempty,max=12"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

type PaymentOptions struct {
	CouponCode       string  `json:"couponCode" validate:"omitempty,max=64"`
	CoinsToUse       int64   `json:"coinsToUse" validate:"gte=0"`
	WalletAmountUsed float64 `json:"walletAmountUsed" validate:"gte=0"`
}

type CreateBookingRequest struct {
	Actor         Actor          `json:"-"`
	ServiceID     string         `json:"serviceId" validate:"required,max=64"`
	ScheduledDate string         `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	ScheduledTime string         `json:"scheduledTime" validate:"required,datetime=15:04"`
	Address       AddressRequest `json:"address"`
	WorkerID      string         `json:"workerId" validate:"omitempty,max=64"`
	Notes         string         `json:"notes" validate:"max=1000"`
	PaymentOptions
}

type BulkBookingItem struct {
	ServiceID     string `json:"serviceId" validate:"required,max=64"`
	ScheduledDate string `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	ScheduledTime string `json:"scheduledTime" validate:"required,datetime=15:04"`
	Notes         string `json:"notes" validate:"max=1000"`
}

type BulkCreateBookingRequest struct {
	Actor    Actor             `json:"-"`
	Items    []BulkBookingItem `json:"items" validate:"required,min=1,max=20,dive"`
	Address  AddressRequest    `json:"address"`
	WorkerID string            `json:"workerId" validate:"omitempty,max=64"`
	PaymentOptions
}

type ListBookingsRequest struct {
	Actor         Actor  `json:"-"`
	Status        string `query:"status" validate:"omitempty,oneof=pending assigned accepted in-progress completed cancelled rejected"`
	PaymentStatus string `query:"paymentStatus" validate:"omitempty,oneof=pending partial paid refunded failed"`
	CustomerID    string `query:"customerId" validate:"omitempty,max=64"`
	WorkerID      string `query:"workerId" validate:"omitempty,max=64"`
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Page          int    `query:"page" validate:"gte=0"`
	Limit         int    `query:"limit" validate:"gte=0,lte=100"`
}

type GetBookingRequest struct {
	Actor     Actor  `json:"-"`
	BookingID string `json:"-" validate:"required"`
}

type AssignWorkerRequest struct {
	Actor     Actor  `json:"-"`
	BookingID string `json:"-" validate:"required"`
	WorkerID  string `json:"workerId" validate:"required,max=64"`
}

type BookingActionRequest struct {
	Actor     Actor  `json:"-"`
	BookingID string `json:"-" validate:"required"`
	Reason    string `json:"reason" validate:"max=1000"`
}

type VerifyCodeRequest struct {
	Actor           Actor    `json:"-"`
	BookingID       string   `json:"-" validate:"required"`
	Code            string   `json:"otp" validate:"required"`
	WorkProofPhotos []string `json:"workProofPhotos" validate:"max=10,dive,url"`
}

type AdminOverrideRequest struct {
	Actor     Actor  `json:"-"`
	BookingID string `json:"-" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=pending assigned accepted in-progress completed cancelled rejected"`
	Reason    string `json:"reason" validate:"required,max=1000"`
}

type RescheduleProposalRequest struct {
	Actor     Actor  `json:"-"`
	BookingID string `json:"-" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required,datetime=15:04"`
	Reason    string `json:"reason" validate:"required,max=1000"`
}

type RescheduleDecisionRequest struct {
	Actor     Actor  `json:"-"`
	BookingID string `json:"-" validate:"required"`
	Approve   bool   `json:"approve"`
}

type BookingResponse struct {
	ID                 string                    `json:"id"`
	BulkGroupID        string                    `json:"bulkGroupId,omitempty"`
	CustomerID         string                    `json:"customerId"`
	WorkerID           string                    `json:"workerId,omitempty"`
	ServiceID          string                    `json:"serviceId"`
	ServiceName        string                    `json:"serviceName"`
	ScheduledDate      string                    `json:"scheduledDate"`
	ScheduledTime      string                    `json:"scheduledTime"`
	Address            entity.Address            `json:"address"`
	Notes              string                    `json:"notes,omitempty"`
	Price              entity.PriceBreakdown     `json:"price"`
	PaymentStatus      entity.PaymentStatus      `json:"paymentStatus"`
	PaymentMethod      string                    `json:"paymentMethod,omitempty"`
	PaymentID          string                    `json:"paymentId,omitempty"`
	Status             entity.BookingStatus      `json:"status"`
	WorkProofPhotos    []string                  `json:"workProofPhotos,omitempty"`
	CancellationReason string                    `json:"cancellationReason,omitempty"`
	RejectionReason    string                    `json:"rejectionReason,omitempty"`
	RescheduleRequest  *entity.RescheduleRequest `json:"rescheduleRequest,omitempty"`
	StartedAt          *time.Time                `json:"startedAt,omitempty"`
	CompletedAt        *time.Time                `json:"completedAt,omitempty"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
}

type BulkBookingResponse struct {
	BulkGroupID string                `json:"bulkGroupId"`
	Total       entity.PriceBreakdown `json:"total"`
	Bookings    []*BookingResponse    `json:"bookings"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type WorkerSearch struct {
	BookingID  string
	CategoryID string
	City       string
	Location   Coordinates
	Date       time.Time
	Limit      int
}

type AssignableWorker struct {
	WorkerID   string  `json:"workerId"`
	DistanceKm float64 `json:"distanceKm"`
}

type InvoiceResponse struct {
	Filename string
	Content  []byte
}

type UpdateLocationRequest struct {
	Actor     Actor   `json:"-"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}
