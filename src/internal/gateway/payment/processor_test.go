package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking-service/src/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:   srv.URL,
		KeyID:     "key",
		KeySecret: "secret",
		Currency:  "INR",
		Timeout:   5 * time.Second,
	}, log.Discard())
}

func TestVerifySignature(t *testing.T) {
	c := NewClient(Config{KeySecret: "secret"}, log.Discard())
	sig := Sign("order_1", "pay_1", "secret")

	assert.True(t, c.VerifySignature("order_1", "pay_1", sig))
	assert.False(t, c.VerifySignature("order_1", "pay_2", sig))
	assert.False(t, c.VerifySignature("order_1", "pay_1", Sign("order_1", "pay_1", "other")))
	assert.False(t, c.VerifySignature("order_1", "pay_1", ""))
}

func TestCreateOrderSendsMinorUnits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		var body orderBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(105050), body.Amount)
		assert.Equal(t, "bk-1", body.Receipt)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(orderReply{ID: "order_9", Amount: body.Amount, Currency: "INR", Receipt: body.Receipt, Status: "created"})
	})

	order, err := c.CreateOrder(context.Background(), 1050.5, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "order_9", order.ID)
	assert.Equal(t, 1050.5, order.Amount)
}

func TestPaymentLinkStatusReadsCapturedPayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_links/plink_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"plink_1","short_url":"https://pay.example/x","amount":60000,"status":"paid",
			"payments":[{"payment_id":"pay_a","status":"failed"},{"payment_id":"pay_b","status":"captured"}]}`))
	})

	link, err := c.PaymentLinkStatus(context.Background(), "plink_1")
	require.NoError(t, err)
	assert.Equal(t, "paid", link.Status)
	assert.Equal(t, "pay_b", link.PaymentID)
	assert.Equal(t, 600.0, link.Amount)
}

func TestProcessorErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"description":"upstream down"}}`))
	})

	_, err := c.CreatePaymentLink(context.Background(), 100, "bk-1", "Booking payment")
	assert.Error(t, err)
}
