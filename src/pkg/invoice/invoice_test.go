package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "0.00", Money(0))
	assert.Equal(t, "999.50", Money(999.5))
	assert.Equal(t, "1,050.00", Money(1050))
	assert.Equal(t, "-1,234,567.89", Money(-1234567.89))
}

func TestRenderProducesPDF(t *testing.T) {
	content, name, err := Render(Document{
		Number:      "BK-1",
		IssuedAt:    time.Date(2030, 1, 12, 10, 0, 0, 0, time.UTC),
		BookingID:   "bk-1",
		CustomerID:  "cust-1",
		ServiceName: "Deep cleaning",
		Lines: []Line{
			{Label: "Service", Amount: 1000},
			{Label: "Coupon SAVE10", Amount: -100},
		},
		Total:  900,
		Paid:   900,
		Method: "wallet",
	})
	require.NoError(t, err)
	assert.Equal(t, "INVOICE_BK-1.pdf", name)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}
