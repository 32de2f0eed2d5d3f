package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	"booking-service/src/internal/model/converter"
	"booking-service/src/pkg/token"
	"booking-service/src/pkg/utils"

	"github.com/google/uuid"
)

type BookingUseCase struct {
	*Core
	Distance DistanceCalculator
	Locator  WorkerLocator
	Finder   AssignableWorkerFinder
}

func NewBookingUseCase(core *Core, distance DistanceCalculator, locator WorkerLocator, finder AssignableWorkerFinder) *BookingUseCase {
	return &BookingUseCase{
		Core:     core,
		Distance: distance,
		Locator:  locator,
		Finder:   finder,
	}
}

const dayLength = 24 * time.Hour

// lineItem is one priced booking before it is persisted.
type lineItem struct {
	service *entity.Service
	date    time.Time
	time    string
	notes   string
}

func (c *BookingUseCase) CreateBooking(ctx context.Context, request *model.CreateBookingRequest) utils.Result {
	item := model.BulkBookingItem{
		ServiceID:     request.ServiceID,
		ScheduledDate: request.ScheduledDate,
		ScheduledTime: request.ScheduledTime,
		Notes:         request.Notes,
	}
	bulk := &model.BulkCreateBookingRequest{
		Actor:          request.Actor,
		Items:          []model.BulkBookingItem{item},
		Address:        request.Address,
		WorkerID:       request.WorkerID,
		PaymentOptions: request.PaymentOptions,
	}
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "CreateBooking-validation", request, err)
	}
	_, bookings, err := c.create(ctx, bulk, "")
	if err != nil {
		return fail(c.Log, "CreateBooking", request, err)
	}
	c.Log.Info("CreateBooking", "booking created", "bookingID", bookings[0].ID)
	return utils.Result{Data: converter.BookingToResponse(bookings[0])}
}

// CreateBulkBookings prices the whole order once and spreads the result over its items.
func (c *BookingUseCase) CreateBulkBookings(ctx context.Context, request *model.BulkCreateBookingRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "CreateBulkBookings-validation", request, err)
	}
	groupID := uuid.NewString()
	quote, bookings, err := c.create(ctx, request, groupID)
	if err != nil {
		return fail(c.Log, "CreateBulkBookings", request, err)
	}
	resp := &model.BulkBookingResponse{BulkGroupID: groupID, Total: quote.Price}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, converter.BookingToResponse(b))
	}
	c.Log.Info("CreateBulkBookings", fmt.Sprintf("%d bookings created", len(bookings)), "bulkGroupID", groupID)
	return utils.Result{Data: resp}
}

func (c *BookingUseCase) create(ctx context.Context, request *model.BulkCreateBookingRequest, groupID string) (*Quote, []*entity.Booking, error) {
	if request.Actor.Role != token.RoleCustomer {
		return nil, nil, forbidden("only customers can create bookings")
	}
	items, bases, err := c.resolveItems(ctx, request.Items)
	if err != nil {
		return nil, nil, err
	}
	address := converter.AddressFromRequest(request.Address)
	workerID := strings.TrimSpace(request.WorkerID)
	distance := c.distanceTo(ctx, workerID, address)

	var keys []string
	if workerID != "" {
		keys = append(keys, workerKey(workerID))
	}
	unlock, err := c.lockAll(ctx, keys)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	var (
		quote    *Quote
		bookings []*entity.Booking
		batch    []*model.Notification
	)
	err = c.Repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		bookings, batch = nil, nil
		fees, err := c.Repos.Configs.FeeConfig(ctx)
		if err != nil {
			return err
		}
		coins, err := c.Repos.Configs.CoinConfig(ctx)
		if err != nil {
			return err
		}
		if workerID != "" {
			for _, it := range items {
				if err := c.Assignment.EnsureAvailable(ctx, workerID, it.date, ""); err != nil {
					return err
				}
			}
		}

		var total float64
		for _, b := range bases {
			total += b
		}
		quote, err = c.Pricing.Quote(ctx, PricingInput{
			CustomerID:     request.Actor.ID,
			BasePrice:      total,
			DistanceKm:     distance,
			CouponCode:     request.CouponCode,
			CoinsRequested: request.CoinsToUse,
			WalletAmount:   request.WalletAmountUsed,
			Fees:           fees,
			Coins:          coins,
			Now:            c.now(),
		})
		if err != nil {
			return err
		}

		shares := []entity.PriceBreakdown{quote.Price}
		if len(items) > 1 {
			shares = AllocateBulk(quote.Price, bases)
		}
		now := c.now()
		for i, it := range items {
			b := &entity.Booking{
				ID:            uuid.NewString(),
				BulkGroupID:   groupID,
				CustomerID:    request.Actor.ID,
				ServiceID:     it.service.ID,
				ServiceName:   it.service.Name,
				CategoryID:    it.service.CategoryID,
				ScheduledDate: it.date,
				ScheduledTime: it.time,
				Address:       address,
				Notes:         it.notes,
				Price:         shares[i],
				PaymentStatus: PaymentStatusFor(shares[i].AmountPaid, shares[i].FinalPrice),
				Status:        entity.StatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if b.Price.WalletAmountUsed > 0 {
				b.PaymentMethod = entity.PaymentMethodWallet
			}
			if workerID != "" {
				w := workerID
				b.WorkerID = &w
			}
			if len(items) == 1 {
				err = c.Pricing.Commit(ctx, quote, b.ID)
			} else {
				err = c.Pricing.CommitShare(ctx, quote, b.ID, shares[i], i == 0)
			}
			if err != nil {
				return err
			}
			if err := c.Repos.Bookings.Create(ctx, b); err != nil {
				return err
			}
			if err := c.Repos.Bookings.AppendAudit(ctx, &entity.StatusAudit{
				ID:        uuid.NewString(),
				BookingID: b.ID,
				To:        entity.StatusPending,
				ActorID:   request.Actor.ID,
				ActorRole: request.Actor.Role,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			bookings = append(bookings, b)
			batch = append(batch, toCustomer(b, model.NotifyBookingCreated, "Booking created",
				fmt.Sprintf("Your %s booking on %s is confirmed", b.ServiceName, b.ScheduledDate.Format("2006-01-02"))))
			if workerID != "" {
				batch = append(batch, toWorker(workerID, b, model.NotifyBookingAssigned, "New booking request",
					fmt.Sprintf("You have a new %s request on %s", b.ServiceName, b.ScheduledDate.Format("2006-01-02"))))
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	c.notify(ctx, batch)
	return quote, bookings, nil
}

func (c *BookingUseCase) resolveItems(ctx context.Context, requested []model.BulkBookingItem) ([]lineItem, []float64, error) {
	items := make([]lineItem, 0, len(requested))
	bases := make([]float64, 0, len(requested))
	today := c.now().Truncate(dayLength)
	for _, r := range requested {
		date, err := parseDate(r.ScheduledDate)
		if err != nil {
			return nil, nil, err
		}
		if date.Before(today) {
			return nil, nil, badRequest("scheduled date %s is in the past", r.ScheduledDate)
		}
		svc, err := c.Repos.Services.FindByID(ctx, r.ServiceID)
		if err != nil {
			return nil, nil, lookup(err, "service", r.ServiceID)
		}
		if !svc.IsActive {
			return nil, nil, conflict("Service %s is not available", svc.Name)
		}
		items = append(items, lineItem{service: svc, date: date, time: r.ScheduledTime, notes: r.Notes})
		bases = append(bases, svc.BasePrice)
	}
	return items, bases, nil
}

// distanceTo is best effort: an unknown worker position or a failing calculator prices
// the booking without a travel charge.
func (c *BookingUseCase) distanceTo(ctx context.Context, workerID string, address entity.Address) float64 {
	if workerID == "" || c.Locator == nil || c.Distance == nil {
		return 0
	}
	from, err := c.Locator.Locate(ctx, workerID)
	if err != nil {
		c.Log.Warn("distanceTo", err.Error(), "Locate", workerID)
		return 0
	}
	if from == nil {
		return 0
	}
	km, err := c.Distance.Distance(ctx, *from, model.Coordinates{Latitude: address.Latitude, Longitude: address.Longitude})
	if err != nil {
		c.Log.Warn("distanceTo", err.Error(), "Distance", workerID)
		return 0
	}
	return utils.RoundMoney(km)
}

func (c *BookingUseCase) lockAll(ctx context.Context, keys []string) (func(), error) {
	var unlocks []func()
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, k := range keys {
		unlock, err := c.Locker.Lock(ctx, k)
		if err != nil {
			release()
			return nil, fmt.Errorf("lock %s: %w", k, err)
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// ListBookings restricts customers and workers to their own bookings.
func (c *BookingUseCase) ListBookings(ctx context.Context, request *model.ListBookingsRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "ListBookings-validation", request, err)
	}
	filter := entity.BookingFilter{
		CustomerID:    request.CustomerID,
		WorkerID:      request.WorkerID,
		Status:        entity.BookingStatus(request.Status),
		PaymentStatus: entity.PaymentStatus(request.PaymentStatus),
		Limit:         request.Limit,
	}
	switch request.Actor.Role {
	case token.RoleCustomer:
		filter.CustomerID = request.Actor.ID
	case token.RoleWorker:
		filter.WorkerID = request.Actor.ID
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if request.Page > 1 {
		filter.Offset = (request.Page - 1) * filter.Limit
	}
	for _, bound := range []struct {
		raw string
		dst **time.Time
	}{{request.From, &filter.From}, {request.To, &filter.To}} {
		if bound.raw == "" {
			continue
		}
		d, err := parseDate(bound.raw)
		if err != nil {
			return fail(c.Log, "ListBookings-validation", request, err)
		}
		*bound.dst = &d
	}

	bookings, err := c.Repos.Bookings.List(ctx, filter)
	if err != nil {
		return fail(c.Log, "ListBookings", request, err)
	}
	return utils.Result{Data: converter.BookingsToResponse(bookings)}
}

func (c *BookingUseCase) GetBooking(ctx context.Context, request *model.GetBookingRequest) utils.Result {
	b, err := c.visible(ctx, request.Actor, request.BookingID)
	if err != nil {
		return fail(c.Log, "GetBooking", request, err)
	}
	return utils.Result{Data: converter.BookingToResponse(b)}
}

func (c *BookingUseCase) visible(ctx context.Context, actor model.Actor, id string) (*entity.Booking, error) {
	b, err := c.Repos.Bookings.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "booking", id)
	}
	if !canView(b, actor) {
		return nil, forbidden("you are not allowed to view this booking")
	}
	return b, nil
}

// AssignableWorkers asks the finder for candidates and drops anyone already busy that day.
func (c *BookingUseCase) AssignableWorkers(ctx context.Context, request *model.GetBookingRequest) utils.Result {
	if request.Actor.Role != token.RoleAdmin {
		return fail(c.Log, "AssignableWorkers", request, forbidden("only admins can search workers"))
	}
	b, err := c.visible(ctx, request.Actor, request.BookingID)
	if err != nil {
		return fail(c.Log, "AssignableWorkers", request, err)
	}
	if c.Finder == nil {
		return fail(c.Log, "AssignableWorkers", request, external(nil, "worker search is not configured"))
	}
	found, err := c.Finder.FindAssignable(ctx, model.WorkerSearch{
		BookingID:  b.ID,
		CategoryID: b.CategoryID,
		City:       b.Address.City,
		Location:   model.Coordinates{Latitude: b.Address.Latitude, Longitude: b.Address.Longitude},
		Date:       b.ScheduledDate,
		Limit:      20,
	})
	if err != nil {
		return fail(c.Log, "AssignableWorkers", request, external(err, "worker search failed"))
	}
	out := make([]model.AssignableWorker, 0, len(found))
	for _, w := range found {
		if err := c.Assignment.EnsureAvailable(ctx, w.WorkerID, b.ScheduledDate, b.ID); err != nil {
			continue
		}
		out = append(out, w)
	}
	return utils.Result{Data: out}
}

func (c *BookingUseCase) AssignWorker(ctx context.Context, request *model.AssignWorkerRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "AssignWorker-validation", request, err)
	}
	if request.Actor.Role != token.RoleAdmin {
		return fail(c.Log, "AssignWorker", request, forbidden("only admins can assign workers"))
	}
	var (
		booking *entity.Booking
		batch   []*model.Notification
	)
	err := c.withBooking(ctx, request.BookingID, func(ctx context.Context, b *entity.Booking) error {
		from := b.Status
		previous, err := c.Assignment.Assign(ctx, b, request.WorkerID)
		if err != nil {
			return err
		}
		reason := ""
		if previous != "" {
			reason = "reassigned from " + previous
			if err := c.Settlement.ReverseEarning(ctx, b, previous); err != nil {
				return err
			}
			batch = append(batch, toWorker(previous, b, model.NotifyBookingUnassigned, "Booking reassigned",
				"A booking you were assigned to has been given to another worker"))
		}
		if err := c.State.Save(ctx, b, request.Actor, from, reason, false); err != nil {
			return err
		}
		batch = append(batch,
			toWorker(request.WorkerID, b, model.NotifyBookingAssigned, "New booking assigned",
				fmt.Sprintf("You have been assigned a %s booking on %s", b.ServiceName, b.ScheduledDate.Format("2006-01-02"))),
			toCustomer(b, model.NotifyBookingAssigned, "Worker assigned", "A worker has been assigned to your booking"))
		booking = b
		return nil
	}, workerKey(request.WorkerID))
	if err != nil {
		return fail(c.Log, "AssignWorker", request, err)
	}
	c.notify(ctx, batch)
	c.Log.Info("AssignWorker", "worker assigned", "bookingID", booking.ID)
	return utils.Result{Data: converter.BookingToResponse(booking)}
}
