package model

import "booking-service/src/internal/entity"

const (
	CollectCash  = "cash"
	CollectOrder = "order"
	CollectLink  = "link"
)

type CollectPaymentRequest struct {
	Actor     Actor  `json:"-"`
	BookingID string `json:"-" validate:"required"`
	Mode      string `json:"mode" validate:"required,oneof=cash order link"`
}

type VerifyPaymentRequest struct {
	Actor     Actor  `json:"-"`
	BookingID string `json:"-" validate:"required"`
	OrderID   string `json:"orderId" validate:"required_with=Signature"`
	PaymentID string `json:"paymentId" validate:"required_with=Signature"`
	Signature string `json:"signature"`
}

type CollectPaymentResponse struct {
	Booking *BookingResponse `json:"booking"`
	Amount  float64          `json:"amount"`
	OrderID string           `json:"orderId,omitempty"`
	LinkID  string           `json:"linkId,omitempty"`
	LinkURL string           `json:"linkUrl,omitempty"`
}

// PaymentOrder and PaymentLink are processor-side objects; amounts are in major units.
type PaymentOrder struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
	Status   string  `json:"status"`
}

const (
	LinkStatusCreated   = "created"
	LinkStatusPaid      = "paid"
	LinkStatusExpired   = "expired"
	LinkStatusCancelled = "cancelled"
)

type PaymentLink struct {
	ID        string  `json:"id"`
	ShortURL  string  `json:"short_url"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	PaymentID string  `json:"payment_id,omitempty"`
}

type PayoutRequest struct {
	Actor  Actor   `json:"-"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type PayoutDecisionRequest struct {
	Actor        Actor  `json:"-"`
	WithdrawalID string `json:"-" validate:"required"`
	Approve      bool   `json:"approve"`
	Reason       string `json:"reason" validate:"required_if=Approve false,max=1000"`
}

type WalletResponse struct {
	Wallet *entity.Wallet    `json:"wallet"`
	Coins  *entity.UserCoins `json:"coins,omitempty"`
}
