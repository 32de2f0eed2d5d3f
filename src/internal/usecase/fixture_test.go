package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	"booking-service/src/internal/repository/memory"
	"booking-service/src/pkg/lock"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/token"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

var (
	customer = model.Actor{ID: "cust-1", Role: token.RoleCustomer}
	worker   = model.Actor{ID: "wrk-1", Role: token.RoleWorker}
	worker2  = model.Actor{ID: "wrk-2", Role: token.RoleWorker}
	admin    = model.Actor{ID: "adm-1", Role: token.RoleAdmin}
)

type recorder struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (r *recorder) Dispatch(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recorder) find(kind, recipient string) []*model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Notification
	for _, n := range r.sent {
		if n.Type == kind && (recipient == "" || n.RecipientID == recipient) {
			out = append(out, n)
		}
	}
	return out
}

type fakeProcessor struct {
	mu         sync.Mutex
	fail       bool
	linkStatus string
	orders     int
}

func (p *fakeProcessor) CreateOrder(_ context.Context, amount float64, receipt string) (*model.PaymentOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return nil, errors.New("processor down")
	}
	p.orders++
	return &model.PaymentOrder{ID: "order_" + receipt, Amount: amount, Currency: "INR", Receipt: receipt, Status: "created"}, nil
}

func (p *fakeProcessor) CreatePaymentLink(_ context.Context, amount float64, reference, _ string) (*model.PaymentLink, error) {
	if p.fail {
		return nil, errors.New("processor down")
	}
	return &model.PaymentLink{ID: "plink_" + reference, ShortURL: "https://pay.example/" + reference, Amount: amount, Status: model.LinkStatusCreated}, nil
}

func (p *fakeProcessor) PaymentLinkStatus(_ context.Context, linkID string) (*model.PaymentLink, error) {
	if p.fail {
		return nil, errors.New("processor down")
	}
	return &model.PaymentLink{ID: linkID, Status: p.linkStatus, PaymentID: "pay_link"}, nil
}

func (p *fakeProcessor) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == "sig:"+orderID+"|"+paymentID
}

type fixture struct {
	store     *memory.Store
	core      *Core
	bookings  *BookingUseCase
	payments  *PaymentUseCase
	payouts   *PayoutUseCase
	notes     *recorder
	processor *fakeProcessor

	mu  sync.Mutex
	now time.Time
}

const scheduled = "2030-01-12"

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.NewStore(),
		notes:     &recorder{},
		processor: &fakeProcessor{linkStatus: model.LinkStatusCreated},
		now:       time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	f.store.PutService(entity.Service{ID: "svc-clean", Name: "Deep Cleaning", CategoryID: "cleaning", BasePrice: 1000, IsActive: true})
	f.store.PutService(entity.Service{ID: "svc-paint", Name: "Wall Painting", CategoryID: "painting", BasePrice: 600, IsActive: true})
	f.store.PutService(entity.Service{ID: "svc-old", Name: "Retired", BasePrice: 100})

	otp := NewOTPGate("test-secret", 15*time.Minute)
	otp.Now = f.clock
	f.core = NewCore(log.Discard(), validator.New(), f.store.Repositories(), lock.NewLocal(), f.notes, otp)
	f.core.Now = f.clock
	f.bookings = NewBookingUseCase(f.core, nil, nil, nil)
	f.payments = NewPaymentUseCase(f.core, f.processor)
	f.payouts = NewPayoutUseCase(f.core)
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fixture) wallet(t *testing.T, ownerID string, ownerType entity.OwnerType) *entity.Wallet {
	t.Helper()
	w, err := f.store.Wallets().FindOrCreate(context.Background(), ownerID, ownerType)
	require.NoError(t, err)
	w.Transactions, err = f.store.Wallets().Transactions(context.Background(), w.ID)
	require.NoError(t, err)
	return w
}

func (f *fixture) topUp(t *testing.T, ownerID string, ownerType entity.OwnerType, amount float64) {
	t.Helper()
	w := f.wallet(t, ownerID, ownerType)
	_, err := f.store.Wallets().Apply(context.Background(), w.ID, &entity.WalletTransaction{
		Type: entity.TxCredit, Kind: entity.KindTopUp, Amount: amount, Note: "top up",
	})
	require.NoError(t, err)
}

func (f *fixture) giveCoins(t *testing.T, userID string, n int64) {
	t.Helper()
	_, err := f.store.Coins().Apply(context.Background(), &entity.CoinTransaction{UserID: userID, Type: entity.CoinEarn, Amount: n})
	require.NoError(t, err)
}

func (f *fixture) coins(t *testing.T, userID string) *entity.UserCoins {
	t.Helper()
	c, err := f.store.Coins().FindOrCreate(context.Background(), userID)
	require.NoError(t, err)
	return c
}

func (f *fixture) booking(t *testing.T, id string) *entity.Booking {
	t.Helper()
	b, err := f.store.Bookings().FindByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func createRequest(opts ...func(*model.CreateBookingRequest)) *model.CreateBookingRequest {
	r := &model.CreateBookingRequest{
		Actor:         customer,
		ServiceID:     "svc-clean",
		ScheduledDate: scheduled,
		ScheduledTime: "10:30",
		Address:       model.AddressRequest{Line: "12 Lake Road", City: "Pune", Latitude: 18.52, Longitude: 73.85},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func withWorker(id string) func(*model.CreateBookingRequest) {
	return func(r *model.CreateBookingRequest) { r.WorkerID = id }
}

func (f *fixture) create(t *testing.T, req *model.CreateBookingRequest) *model.BookingResponse {
	t.Helper()
	res := f.bookings.CreateBooking(context.Background(), req)
	require.NoError(t, res.Error)
	return res.Data.(*model.BookingResponse)
}

func action(actor model.Actor, id string) *model.BookingActionRequest {
	return &model.BookingActionRequest{Actor: actor, BookingID: id}
}

// lastCode returns the most recent code sent to the customer for a booking.
func (f *fixture) lastCode(t *testing.T, kind, bookingID string) string {
	t.Helper()
	sent := f.notes.find(kind, "")
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].Data["bookingId"] == bookingID {
			return sent[i].Data["otp"]
		}
	}
	t.Fatalf("no %s code sent for %s", kind, bookingID)
	return ""
}

// startJob takes a booking with worker assigned from pending to in-progress.
func (f *fixture) startJob(t *testing.T, id string, w model.Actor) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.bookings.AcceptBooking(ctx, action(w, id)).Error)
	require.NoError(t, f.bookings.IssueStartCode(ctx, action(w, id)).Error)
	code := f.lastCode(t, model.NotifyStartCode, id)
	require.NoError(t, f.bookings.StartBooking(ctx, &model.VerifyCodeRequest{Actor: w, BookingID: id, Code: code}).Error)
}
