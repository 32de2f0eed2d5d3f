package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	"booking-service/src/pkg/invoice"
	"booking-service/src/pkg/utils"
)

// Invoice renders a PDF for a paid booking to anyone allowed to view it.
func (c *BookingUseCase) Invoice(ctx context.Context, request *model.GetBookingRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "Invoice", request, err)
	}
	b, err := c.visible(ctx, request.Actor, request.BookingID)
	if err != nil {
		return fail(c.Log, "Invoice", request, err)
	}
	if b.PaymentStatus != entity.PaymentPaid {
		return fail(c.Log, "Invoice", request, conflict("Invoice is available once the booking is paid"))
	}
	content, name, err := invoice.Render(invoiceDocument(b, c.now()))
	if err != nil {
		return fail(c.Log, "Invoice", request, fmt.Errorf("render invoice: %w", err))
	}
	return utils.Result{Data: &model.InvoiceResponse{Filename: name, Content: content}}
}

func invoiceDocument(b *entity.Booking, issued time.Time) invoice.Document {
	p := b.Price
	label := b.ServiceName
	if label == "" {
		label = "Service"
	}
	lines := []invoice.Line{{Label: label, Amount: p.BasePrice}}
	if p.PlatformFee > 0 {
		lines = append(lines, invoice.Line{Label: "Platform fee", Amount: p.PlatformFee})
	}
	if p.TravelCharge > 0 {
		lines = append(lines, invoice.Line{Label: fmt.Sprintf("Travel (%.1f km)", p.Distance), Amount: p.TravelCharge})
	}
	if p.CouponDiscount > 0 {
		lines = append(lines, invoice.Line{Label: "Coupon " + p.CouponCode, Amount: -p.CouponDiscount})
	}
	if p.CoinDiscount > 0 {
		lines = append(lines, invoice.Line{Label: fmt.Sprintf("Coins (%d)", p.CoinsUsed), Amount: -p.CoinDiscount})
	}
	addr := strings.TrimSpace(strings.Join([]string{b.Address.Line, b.Address.City, b.Address.Pincode}, " "))
	return invoice.Document{
		Number:      invoiceNumber(b.ID),
		IssuedAt:    issued,
		BookingID:   b.ID,
		CustomerID:  b.CustomerID,
		ServiceName: b.ServiceName,
		Scheduled:   b.ScheduledDate.Format("2006-01-02") + " " + b.ScheduledTime,
		Address:     addr,
		Lines:       lines,
		Total:       p.FinalPrice,
		Paid:        p.AmountPaid,
		Method:      b.PaymentMethod,
	}
}

func invoiceNumber(bookingID string) string {
	id := strings.ReplaceAll(bookingID, "-", "")
	if len(id) > 12 {
		id = id[:12]
	}
	return "BK-" + strings.ToUpper(id)
}
