package usecase

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/pkg/metrics"

	"golang.org/x/crypto/blake2b"
)

type OTPPurpose string

const (
	OTPStart      OTPPurpose = "start"
	OTPCompletion OTPPurpose = "completion"
)

const defaultOTPTTL = 15 * time.Minute

// OTPGate issues four digit codes bound to one booking and purpose. Only a keyed digest
// is stored, so a code cannot be recovered from the booking record.
type OTPGate struct {
	key  [32]byte
	TTL  time.Duration
	Now  func() time.Time
	Rand io.Reader
}

func NewOTPGate(secret string, ttl time.Duration) *OTPGate {
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	return &OTPGate{
		key:  blake2b.Sum256([]byte(secret)),
		TTL:  ttl,
		Now:  time.Now,
		Rand: rand.Reader,
	}
}

// Issue stores a fresh code on the booking and returns it for delivery to the customer.
func (g *OTPGate) Issue(b *entity.Booking, purpose OTPPurpose) (string, error) {
	n, err := rand.Int(g.Rand, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%04d", n.Int64())
	digest, err := g.digest(b.ID, purpose, code)
	if err != nil {
		return "", err
	}
	expiry := g.Now().UTC().Add(g.TTL)
	switch purpose {
	case OTPStart:
		b.StartOTP, b.StartOTPExpiry = digest, &expiry
	case OTPCompletion:
		b.CompletionOTP, b.CompletionOTPExpiry = digest, &expiry
	}
	return code, nil
}

// Verify consumes the code on success. Every failure looks the same to the caller.
func (g *OTPGate) Verify(b *entity.Booking, purpose OTPPurpose, code string) error {
	stored, expiry := b.StartOTP, b.StartOTPExpiry
	if purpose == OTPCompletion {
		stored, expiry = b.CompletionOTP, b.CompletionOTPExpiry
	}
	if !g.matches(b.ID, purpose, code, stored, expiry) {
		metrics.OTPFailures.WithLabelValues(string(purpose)).Inc()
		return conflict("Invalid OTP")
	}
	switch purpose {
	case OTPStart:
		b.StartOTP, b.StartOTPExpiry = "", nil
	case OTPCompletion:
		b.CompletionOTP, b.CompletionOTPExpiry = "", nil
	}
	return nil
}

func (g *OTPGate) matches(bookingID string, purpose OTPPurpose, code, stored string, expiry *time.Time) bool {
	if stored == "" || expiry == nil || len(code) != 4 {
		return false
	}
	if !g.Now().Before(*expiry) {
		return false
	}
	digest, err := g.digest(bookingID, purpose, code)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1
}

func (g *OTPGate) digest(bookingID string, purpose OTPPurpose, code string) (string, error) {
	h, err := blake2b.New256(g.key[:])
	if err != nil {
		return "", err
	}
	fmt.Fprintf(h, "%s|%s|%s", bookingID, purpose, code)
	return hex.EncodeToString(h.Sum(nil)), nil
}
