package usecase

import (
	"bytes"
	"context"
	"testing"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	httpError "booking-service/src/pkg/http-error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceRequiresPaidBooking(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, createRequest())

	req := &model.GetBookingRequest{Actor: customer, BookingID: created.ID}
	res := f.bookings.Invoice(context.Background(), req)
	assert.True(t, httpError.Is(res.Error, httpError.KindStateConflict))

	b := f.booking(t, created.ID)
	b.PaymentStatus = entity.PaymentPaid
	b.PaymentMethod = entity.PaymentMethodCash
	b.Price.AmountPaid = b.Price.FinalPrice
	require.NoError(t, f.store.Bookings().Update(context.Background(), b))

	res = f.bookings.Invoice(context.Background(), req)
	require.NoError(t, res.Error)
	doc := res.Data.(*model.InvoiceResponse)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
	assert.Contains(t, doc.Filename, "INVOICE_BK-")

	res = f.bookings.Invoice(context.Background(), &model.GetBookingRequest{Actor: worker, BookingID: created.ID})
	assert.True(t, httpError.Is(res.Error, httpError.KindAuthorization))
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "BK-0A1B2C3D4E5F", invoiceNumber("0a1b2c3d-4e5f-6789-abcd-ef0123456789"))
	assert.Equal(t, "BK-X1", invoiceNumber("x1"))
}
