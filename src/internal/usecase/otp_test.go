package usecase

import (
	"testing"
	"time"

	"booking-service/src/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(now *time.Time) *OTPGate {
	g := NewOTPGate("otp-secret", 15*time.Minute)
	g.Now = func() time.Time { return *now }
	return g
}

func TestOTPIsSingleUse(t *testing.T) {
	now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	g := newTestGate(&now)
	b := &entity.Booking{ID: "bk-1"}

	code, err := g.Issue(b, OTPStart)
	require.NoError(t, err)
	assert.Len(t, code, 4)
	assert.NotEqual(t, code, b.StartOTP)
	require.NotNil(t, b.StartOTPExpiry)
	assert.True(t, now.Add(15*time.Minute).Equal(*b.StartOTPExpiry))

	require.NoError(t, g.Verify(b, OTPStart, code))
	assert.Empty(t, b.StartOTP)
	assert.Nil(t, b.StartOTPExpiry)

	err = g.Verify(b, OTPStart, code)
	require.Error(t, err)
	assert.Equal(t, "Invalid OTP", err.Error())
}

func TestOTPRejectedAfterExpiry(t *testing.T) {
	for _, purpose := range []OTPPurpose{OTPStart, OTPCompletion} {
		t.Run(string(purpose), func(t *testing.T) {
			now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
			g := newTestGate(&now)
			b := &entity.Booking{ID: "bk-1"}
			code, err := g.Issue(b, purpose)
			require.NoError(t, err)

			now = now.Add(15 * time.Minute)
			err = g.Verify(b, purpose, code)
			require.Error(t, err)
			assert.Equal(t, "Invalid OTP", err.Error())
		})
	}
}

func TestOTPFailuresAreIndistinguishable(t *testing.T) {
	now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	g := newTestGate(&now)
	b := &entity.Booking{ID: "bk-1"}

	noCode := g.Verify(b, OTPStart, "1234")
	code, err := g.Issue(b, OTPStart)
	require.NoError(t, err)
	wrong := "0000"
	if code == wrong {
		wrong = "1111"
	}
	wrongCode := g.Verify(b, OTPStart, wrong)
	require.Error(t, noCode)
	require.Error(t, wrongCode)
	assert.Equal(t, noCode.Error(), wrongCode.Error())
	assert.NotEmpty(t, b.StartOTP)
}

func TestOTPIsBoundToBookingAndPurpose(t *testing.T) {
	now := time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	g := newTestGate(&now)
	a := &entity.Booking{ID: "bk-a"}
	code, err := g.Issue(a, OTPStart)
	require.NoError(t, err)

	other := &entity.Booking{ID: "bk-b", StartOTP: a.StartOTP, StartOTPExpiry: a.StartOTPExpiry}
	assert.Error(t, g.Verify(other, OTPStart, code))

	a.CompletionOTP, a.CompletionOTPExpiry = a.StartOTP, a.StartOTPExpiry
	assert.Error(t, g.Verify(a, OTPCompletion, code))
	assert.NoError(t, g.Verify(a, OTPStart, code))
}
