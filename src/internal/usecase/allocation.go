package usecase

import (
	"booking-service/src/internal/entity"
	"booking-service/src/pkg/utils"
)

// allocateCents splits total across weights in whole cents. Every item but the last gets
// its floor share; the last takes the remainder so the parts always sum to total.
func allocateCents(total int64, weights []int64) []int64 {
	out := make([]int64, len(weights))
	if len(weights) == 0 {
		return out
	}
	var sum int64
	for _, w := range weights {
		sum += w
	}
	var given int64
	for i := 0; i < len(weights)-1; i++ {
		if sum > 0 {
			out[i] = total * weights[i] / sum
		}
		given += out[i]
	}
	out[len(weights)-1] = total - given
	return out
}

// allocateCapped is allocateCents where no part may exceed caps[i]. Leftover cents go to
// the last items that still have room; total must not exceed the sum of caps.
func allocateCapped(total int64, weights, caps []int64) []int64 {
	out := allocateCents(total, weights)
	var rest int64
	for i := range out {
		if out[i] > caps[i] {
			rest += out[i] - caps[i]
			out[i] = caps[i]
		}
	}
	spread(out, caps, rest)
	return out
}

// spread hands rest to the last items that still have room under caps.
func spread(out, caps []int64, rest int64) {
	for i := len(out) - 1; i >= 0 && rest > 0; i-- {
		room := caps[i] - out[i]
		if room > rest {
			room = rest
		}
		out[i] += room
		rest -= room
	}
}

// allocateCoins splits a coin redemption in whole coins and derives each item's discount
// from its own coin count, so a per-item refund returns coins worth that item's discount.
// Cents the coin unit cannot express go to the last items with room.
func allocateCoins(discount, count int64, weights, room []int64) (cents, coins []int64) {
	n := len(weights)
	if count <= 0 || discount <= 0 || n == 0 {
		return allocateCapped(discount, weights, room), allocateCents(count, weights)
	}
	unit := discount / count
	caps := make([]int64, n)
	for i := range caps {
		caps[i] = count
		if unit > 0 {
			caps[i] = room[i] / unit
		}
	}
	coins = allocateCapped(count, weights, caps)
	var placed int64
	for _, c := range coins {
		placed += c
	}
	coins[n-1] += count - placed

	cents = make([]int64, n)
	var given int64
	for i := range coins {
		cents[i] = coins[i] * unit
		if cents[i] > room[i] {
			cents[i] = room[i]
		}
		given += cents[i]
	}
	spread(cents, room, discount-given)
	return cents, coins
}

func money(parts []int64) []float64 {
	out := make([]float64, len(parts))
	for i, c := range parts {
		out[i] = utils.FromCents(c)
	}
	return out
}

func allocateMoney(total float64, weights []int64) []float64 {
	parts := allocateCents(utils.ToCents(total), weights)
	out := make([]float64, len(parts))
	for i, c := range parts {
		out[i] = utils.FromCents(c)
	}
	return out
}

// AllocateBulk distributes an aggregate price across line items. Fees follow each item's
// base price, discounts follow the pre-discount share and wallet usage follows the
// resulting per-item final price. Each column sums exactly to the aggregate.
func AllocateBulk(total entity.PriceBreakdown, bases []float64) []entity.PriceBreakdown {
	n := len(bases)
	baseW := make([]int64, n)
	for i, b := range bases {
		baseW[i] = utils.ToCents(b)
	}
	fees := allocateMoney(total.PlatformFee, baseW)
	travel := allocateMoney(total.TravelCharge, baseW)

	preW := make([]int64, n)
	for i := range bases {
		preW[i] = baseW[i] + utils.ToCents(fees[i]) + utils.ToCents(travel[i])
	}
	couponC := allocateCapped(utils.ToCents(total.CouponDiscount), preW, preW)
	room := make([]int64, n)
	for i := range bases {
		room[i] = preW[i] - couponC[i]
	}
	coinC, coins := allocateCoins(utils.ToCents(total.CoinDiscount), total.CoinsUsed, preW, room)

	finalW := make([]int64, n)
	for i := range bases {
		finalW[i] = room[i] - coinC[i]
	}
	walletC := allocateCapped(utils.ToCents(total.WalletAmountUsed), finalW, finalW)

	coupon, coinDiscount, finals, wallet := money(couponC), money(coinC), money(finalW), money(walletC)

	out := make([]entity.PriceBreakdown, n)
	for i := range bases {
		out[i] = entity.PriceBreakdown{
			BasePrice:        bases[i],
			PlatformFee:      fees[i],
			TravelCharge:     travel[i],
			Distance:         total.Distance,
			CouponCode:       total.CouponCode,
			CouponDiscount:   coupon[i],
			CoinsUsed:        coins[i],
			CoinDiscount:     coinDiscount[i],
			WalletAmountUsed: wallet[i],
			FinalPrice:       finals[i],
			AmountPaid:       wallet[i],
		}
	}
	return out
}
