package entity

import "time"

type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

type Coupon struct {
	ID            string     `db:"id"`
	Code          string     `db:"code"`
	Type          CouponType `db:"type"`
	Value         float64    `db:"value"`
	MinOrderValue float64    `db:"min_order_value"`
	// MaxDiscount caps percentage coupons; zero means uncapped.
	MaxDiscount float64 `db:"max_discount"`
	// UsageLimit nil means unlimited.
	UsageLimit *int `db:"usage_limit"`
	UsageCount int  `db:"usage_count"`
	// UserUsageLimit zero means unlimited per user.
	UserUsageLimit int       `db:"user_usage_limit"`
	ValidFrom      time.Time `db:"valid_from"`
	ValidUntil     time.Time `db:"valid_until"`
	IsActive       bool      `db:"is_active"`
}

type CouponUsage struct {
	ID             string    `db:"id"`
	CouponID       string    `db:"coupon_id"`
	UserID         string    `db:"user_id"`
	BookingID      string    `db:"booking_id"`
	DiscountAmount float64   `db:"discount_amount"`
	CreatedAt      time.Time `db:"created_at"`
}
