package usecase

import (
	"context"
	"fmt"

	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
	"booking-service/src/internal/model/converter"
	"booking-service/src/pkg/token"
	"booking-service/src/pkg/utils"
)

type PaymentUseCase struct {
	*Core
	Processor PaymentProcessor
}

func NewPaymentUseCase(core *Core, processor PaymentProcessor) *PaymentUseCase {
	return &PaymentUseCase{Core: core, Processor: processor}
}

// payable rejects bookings that cannot take more money.
func payable(b *entity.Booking) error {
	switch {
	case b.Status == entity.StatusCancelled || b.Status == entity.StatusRejected:
		return conflict("Cannot collect payment for a booking that is %s", b.Status)
	case b.PaymentStatus == entity.PaymentPaid:
		return conflict("Booking is already paid")
	case b.PaymentStatus == entity.PaymentRefunded:
		return conflict("Booking has been refunded")
	case b.Price.Outstanding() <= 0:
		return conflict("Nothing left to pay on this booking")
	}
	return nil
}

// CollectPayment takes the outstanding amount in cash, or opens a processor order or
// payment link for it. Processor calls happen before any write so a failing processor
// leaves the booking untouched.
func (c *PaymentUseCase) CollectPayment(ctx context.Context, request *model.CollectPaymentRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "CollectPayment-validation", request, err)
	}
	var (
		resp  = &model.CollectPaymentResponse{}
		batch []*model.Notification
	)
	err := c.withBooking(ctx, request.BookingID, func(ctx context.Context, b *entity.Booking) error {
		if err := authorizeCollect(b, request.Actor, request.Mode); err != nil {
			return err
		}
		if err := payable(b); err != nil {
			return err
		}
		resp.Amount = b.Price.Outstanding()

		switch request.Mode {
		case model.CollectCash:
			if b.Status != entity.StatusAccepted && b.Status != entity.StatusInProgress {
				return conflict("Cash can only be collected once the job has been accepted")
			}
			b.PaymentMethod = entity.PaymentMethodCash
			if err := c.markPaid(ctx, b, ""); err != nil {
				return err
			}
			batch = append(batch, toCustomer(b, model.NotifyPayment, "Payment received",
				fmt.Sprintf("Cash payment of %.2f received for your booking", resp.Amount)))
		case model.CollectOrder:
			order, err := c.processor().CreateOrder(ctx, resp.Amount, b.ID)
			if err != nil {
				return external(err, "Failed to create payment order")
			}
			b.PaymentMethod = entity.PaymentMethodOnline
			b.PaymentID = order.ID
			resp.OrderID = order.ID
			if err := c.State.Save(ctx, b, request.Actor, b.Status, "", false); err != nil {
				return err
			}
		case model.CollectLink:
			link, err := c.processor().CreatePaymentLink(ctx, resp.Amount, b.ID, fmt.Sprintf("Payment for %s booking", b.ServiceName))
			if err != nil {
				return external(err, "Failed to create payment link")
			}
			b.PaymentMethod = entity.PaymentMethodLink
			b.PaymentLinkID = link.ID
			resp.LinkID, resp.LinkURL = link.ID, link.ShortURL
			if err := c.State.Save(ctx, b, request.Actor, b.Status, "", false); err != nil {
				return err
			}
			n := toCustomer(b, model.NotifyPayment, "Payment link", fmt.Sprintf("Pay %.2f for your booking: %s", resp.Amount, link.ShortURL))
			n.Data["paymentLink"] = link.ShortURL
			batch = append(batch, n)
		}
		resp.Booking = converter.BookingToResponse(b)
		return nil
	})
	if err != nil {
		return fail(c.Log, "CollectPayment", request, err)
	}
	c.notify(ctx, batch)
	c.Log.Info("CollectPayment", fmt.Sprintf("%s collection for %.2f", request.Mode, resp.Amount), "bookingID", request.BookingID)
	return utils.Result{Data: resp}
}

func authorizeCollect(b *entity.Booking, actor model.Actor, mode string) error {
	isCustomer := actor.Role == token.RoleCustomer && b.CustomerID == actor.ID
	isWorker := actor.Role == token.RoleWorker && b.IsWorker(actor.ID)
	switch mode {
	case model.CollectCash:
		if !isWorker {
			return forbidden("only the assigned worker can record a cash payment")
		}
	case model.CollectOrder:
		if !isCustomer {
			return forbidden("only the customer can open a payment order")
		}
	default:
		if !isCustomer && !isWorker {
			return forbidden("you are not allowed to collect payment for this booking")
		}
	}
	return nil
}

// VerifyPayment confirms a processor payment. With a signature it checks the checkout
// callback; without one it polls the payment link. Verifying an already paid booking
// only re-runs the settlement failsafe.
func (c *PaymentUseCase) VerifyPayment(ctx context.Context, request *model.VerifyPaymentRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "VerifyPayment-validation", request, err)
	}
	var (
		booking *entity.Booking
		batch   []*model.Notification
	)
	err := c.withBooking(ctx, request.BookingID, func(ctx context.Context, b *entity.Booking) error {
		if !canView(b, request.Actor) {
			return forbidden("you are not allowed to verify payment for this booking")
		}
		booking = b
		if b.PaymentStatus == entity.PaymentPaid {
			_, err := c.Settlement.CreditWorker(ctx, b)
			return err
		}
		if err := payable(b); err != nil {
			return err
		}

		switch {
		case request.Signature != "":
			if b.PaymentID == "" || b.PaymentID != request.OrderID {
				return conflict("Payment order does not belong to this booking")
			}
			if !c.processor().VerifySignature(request.OrderID, request.PaymentID, request.Signature) {
				return conflict("Payment verification failed")
			}
			if err := c.markPaid(ctx, b, request.PaymentID); err != nil {
				return err
			}
		case b.PaymentLinkID != "":
			link, err := c.processor().PaymentLinkStatus(ctx, b.PaymentLinkID)
			if err != nil {
				return external(err, "Failed to fetch payment link status")
			}
			switch link.Status {
			case model.LinkStatusPaid:
				if err := c.markPaid(ctx, b, link.PaymentID); err != nil {
					return err
				}
			case model.LinkStatusExpired, model.LinkStatusCancelled:
				if b.Price.AmountPaid == 0 {
					b.PaymentStatus = entity.PaymentFailed
				}
				b.PaymentLinkID = ""
				return c.State.Save(ctx, b, request.Actor, b.Status, "", false)
			default:
				return nil
			}
		default:
			return conflict("No pending online payment for this booking")
		}
		batch = append(batch, toCustomer(b, model.NotifyPayment, "Payment received", "Your payment has been confirmed"))
		return nil
	})
	if err != nil {
		return fail(c.Log, "VerifyPayment", request, err)
	}
	c.notify(ctx, batch)
	return utils.Result{Data: converter.BookingToResponse(booking)}
}

// markPaid records the outstanding amount as collected and runs settlement.
func (c *PaymentUseCase) markPaid(ctx context.Context, b *entity.Booking, paymentID string) error {
	b.Price.AmountPaid = utils.RoundMoney(b.Price.AmountPaid + b.Price.Outstanding())
	b.PaymentStatus = PaymentStatusFor(b.Price.AmountPaid, b.Price.FinalPrice)
	if paymentID != "" {
		b.PaymentID = paymentID
	}
	if _, err := c.Settlement.CreditWorker(ctx, b); err != nil {
		return err
	}
	return c.State.Save(ctx, b, model.Actor{}, b.Status, "", false)
}

func (c *PaymentUseCase) processor() PaymentProcessor {
	if c.Processor == nil {
		return unavailableProcessor{}
	}
	return c.Processor
}

type unavailableProcessor struct{}

var errNoProcessor = fmt.Errorf("payment processor is not configured")

func (unavailableProcessor) CreateOrder(context.Context, float64, string) (*model.PaymentOrder, error) {
	return nil, errNoProcessor
}

func (unavailableProcessor) CreatePaymentLink(context.Context, float64, string, string) (*model.PaymentLink, error) {
	return nil, errNoProcessor
}

func (unavailableProcessor) PaymentLinkStatus(context.Context, string) (*model.PaymentLink, error) {
	return nil, errNoProcessor
}

func (unavailableProcessor) VerifySignature(string, string, string) bool { return false }
