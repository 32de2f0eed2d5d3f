package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/repository"
	"booking-service/src/pkg/metrics"
	"booking-service/src/pkg/utils"
)

// PricingInput is one pricing request. BasePrice is the sum of every item when pricing a bulk order.
type PricingInput struct {
	CustomerID     string
	BasePrice      float64
	DistanceKm     float64
	CouponCode     string
	CoinsRequested int64
	WalletAmount   float64
	Fees           entity.FeeConfig
	Coins          entity.CoinConfig
	Now            time.Time
}

// Quote is a fully validated price. Nothing has been debited until Commit runs.
type Quote struct {
	Price         entity.PriceBreakdown
	PaymentStatus entity.PaymentStatus

	customerID string
	coupon     *entity.Coupon
	walletID   string
}

type PricingEngine struct {
	Coupons repository.CouponRepository
	Coins   repository.CoinRepository
	Wallets repository.WalletRepository
}

// Quote runs the price pipeline: fees, coupon, coins, wallet. Every financial
// precondition is checked here so that Commit only fails on a concurrent race.
func (e *PricingEngine) Quote(ctx context.Context, in PricingInput) (*Quote, error) {
	if in.BasePrice < 0 || in.WalletAmount < 0 || in.CoinsRequested < 0 {
		return nil, badRequest("amounts must not be negative")
	}
	q := &Quote{customerID: in.CustomerID}
	p := &q.Price
	p.BasePrice = utils.RoundMoney(in.BasePrice)
	p.Distance = in.DistanceKm
	if in.Fees.IsActive {
		p.PlatformFee = utils.RoundMoney(in.Fees.PlatformFee)
		p.TravelCharge = math.Round(in.DistanceKm * in.Fees.TravelChargePerKm)
	}
	total := utils.RoundMoney(p.BasePrice + p.PlatformFee + p.TravelCharge)
	residual := total

	if code := strings.TrimSpace(in.CouponCode); code != "" {
		coupon, discount, err := e.couponDiscount(ctx, code, in.CustomerID, total, in.Now)
		if err != nil {
			return nil, err
		}
		q.coupon = coupon
		p.CouponCode = coupon.Code
		p.CouponDiscount = discount
		residual = utils.RoundMoney(residual - discount)
	}

	if in.CoinsRequested > 0 {
		discount, err := e.coinDiscount(ctx, in, residual)
		if err != nil {
			return nil, err
		}
		p.CoinsUsed = in.CoinsRequested
		p.CoinDiscount = discount
		residual = utils.RoundMoney(residual - discount)
	}

	p.FinalPrice = utils.MaxFloat(0, residual)

	if in.WalletAmount > 0 {
		amount := utils.RoundMoney(in.WalletAmount)
		if amount > p.FinalPrice {
			return nil, conflict("Wallet amount exceeds the payable amount of %.2f", p.FinalPrice)
		}
		wallet, err := e.Wallets.FindOrCreate(ctx, in.CustomerID, entity.OwnerCustomer)
		if err != nil {
			return nil, lookup(err, "wallet", in.CustomerID)
		}
		if wallet.Balance < amount {
			return nil, conflict("Insufficient wallet balance")
		}
		q.walletID = wallet.ID
		p.WalletAmountUsed = amount
	}

	p.AmountPaid = p.WalletAmountUsed
	q.PaymentStatus = PaymentStatusFor(p.AmountPaid, p.FinalPrice)
	return q, nil
}

func (e *PricingEngine) couponDiscount(ctx context.Context, code, userID string, total float64, now time.Time) (*entity.Coupon, float64, error) {
	coupon, err := e.Coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, notFound("Invalid coupon code")
		}
		return nil, 0, lookup(err, "coupon", code)
	}
	if !coupon.IsActive {
		return nil, 0, conflict("Coupon is not active")
	}
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return nil, 0, conflict("Coupon is not valid at this time")
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return nil, 0, conflict("Coupon usage limit reached")
	}
	if coupon.UserUsageLimit > 0 {
		used, err := e.Coupons.CountUserUsage(ctx, coupon.ID, userID)
		if err != nil {
			return nil, 0, lookup(err, "coupon", code)
		}
		if used >= coupon.UserUsageLimit {
			return nil, 0, conflict("You have already used this coupon the maximum number of times")
		}
	}
	if total < coupon.MinOrderValue {
		return nil, 0, conflict("Minimum order value of %.2f required for this coupon", coupon.MinOrderValue)
	}

	var discount float64
	switch coupon.Type {
	case entity.CouponPercentage:
		discount = total * coupon.Value / 100
		if coupon.MaxDiscount > 0 {
			discount = utils.MinFloat(discount, coupon.MaxDiscount)
		}
	default:
		discount = coupon.Value
	}
	discount = utils.MinFloat(math.Round(discount), total)
	return coupon, discount, nil
}

func (e *PricingEngine) coinDiscount(ctx context.Context, in PricingInput, residual float64) (float64, error) {
	rate := in.Coins.CoinToRupeeRate
	if rate <= 0 {
		return 0, conflict("Coin redemption is not available")
	}
	// Multiply first: pct/100 drifts below exact integers and floor drops a coin.
	maxAllowed := int64(math.Floor(in.Coins.MaxUsagePercentage*residual/100/rate + 1e-9))
	if in.CoinsRequested > maxAllowed {
		return 0, conflict("You can use at most %d coins on this booking", maxAllowed)
	}
	balance, err := e.Coins.FindOrCreate(ctx, in.CustomerID)
	if err != nil {
		return 0, lookup(err, "coins", in.CustomerID)
	}
	if balance.Balance < in.CoinsRequested {
		return 0, conflict("Insufficient coin balance")
	}
	return utils.MinFloat(utils.RoundMoney(float64(in.CoinsRequested)*rate), residual), nil
}

// Commit applies the quote's debits in a fixed order: coupon, coins, wallet. It must run
// inside the transaction that persists the booking so a failure leaves no partial effect.
func (e *PricingEngine) Commit(ctx context.Context, q *Quote, bookingID string) error {
	return e.commit(ctx, q, bookingID, q.Price.CouponDiscount, q.Price.CoinsUsed, q.Price.WalletAmountUsed)
}

// CommitShare commits one booking's share of a bulk quote. The coupon is redeemed only by
// the first share so one order counts as one usage.
func (e *PricingEngine) CommitShare(ctx context.Context, q *Quote, bookingID string, share entity.PriceBreakdown, first bool) error {
	discount := share.CouponDiscount
	if !first {
		q = &Quote{customerID: q.customerID, walletID: q.walletID}
	} else {
		discount = q.Price.CouponDiscount
	}
	return e.commit(ctx, q, bookingID, discount, share.CoinsUsed, share.WalletAmountUsed)
}

func (e *PricingEngine) commit(ctx context.Context, q *Quote, bookingID string, couponDiscount float64, coins int64, wallet float64) error {
	if q.coupon != nil {
		usage := &entity.CouponUsage{
			CouponID:       q.coupon.ID,
			UserID:         q.customerID,
			BookingID:      bookingID,
			DiscountAmount: couponDiscount,
		}
		if err := e.Coupons.Redeem(ctx, usage); err != nil {
			if errors.Is(err, repository.ErrCouponExhausted) {
				return conflict("Coupon usage limit reached")
			}
			return lookup(err, "coupon", q.coupon.Code)
		}
		metrics.CouponRedemptions.Inc()
	}
	if coins > 0 {
		tx := &entity.CoinTransaction{
			UserID:    q.customerID,
			Type:      entity.CoinSpend,
			Amount:    coins,
			BookingID: &bookingID,
			Note:      "Redeemed on booking " + bookingID,
		}
		if _, err := e.Coins.Apply(ctx, tx); err != nil {
			if errors.Is(err, repository.ErrInsufficientCoins) {
				return conflict("Insufficient coin balance")
			}
			return lookup(err, "coins", q.customerID)
		}
	}
	if wallet > 0 {
		tx := &entity.WalletTransaction{
			Type:      entity.TxDebit,
			Kind:      entity.KindBookingPayment,
			Amount:    wallet,
			Note:      "Payment for booking " + bookingID,
			BookingID: &bookingID,
		}
		if _, err := e.Wallets.Apply(ctx, q.walletID, tx); err != nil {
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return conflict("Insufficient wallet balance")
			}
			return lookup(err, "wallet", q.walletID)
		}
	}
	return nil
}

// PaymentStatusFor derives the payment status from what has been collected. A booking
// whose discounts cover the whole price is already settled.
func PaymentStatusFor(amountPaid, finalPrice float64) entity.PaymentStatus {
	switch {
	case finalPrice <= 0 || amountPaid >= finalPrice:
		return entity.PaymentPaid
	case amountPaid > 0:
		return entity.PaymentPartial
	default:
		return entity.PaymentPending
	}
}
