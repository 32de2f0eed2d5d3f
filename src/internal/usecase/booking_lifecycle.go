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

// transition runs a regular status change and returns the saved booking.
func (c *BookingUseCase) transition(ctx context.Context, scope string, request *model.BookingActionRequest, to entity.BookingStatus) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, scope+"-validation", request, err)
	}
	// Accepting occupies the worker's day, so it serializes with assignment on the worker key.
	var keys []string
	if to == entity.StatusAccepted && request.Actor.Role == token.RoleWorker {
		keys = append(keys, workerKey(request.Actor.ID))
	}
	var booking *entity.Booking
	err := c.withBooking(ctx, request.BookingID, func(ctx context.Context, b *entity.Booking) error {
		if to == entity.StatusAccepted && b.IsWorker(request.Actor.ID) &&
			(b.Status == entity.StatusPending || b.Status == entity.StatusAssigned) {
			if err := c.Assignment.EnsureAvailable(ctx, request.Actor.ID, b.ScheduledDate, b.ID); err != nil {
				return err
			}
		}
		if err := c.State.Transition(ctx, b, request.Actor, to, request.Reason); err != nil {
			return err
		}
		booking = b
		return nil
	}, keys...)
	if err != nil {
		return fail(c.Log, scope, request, err)
	}
	c.notify(ctx, statusNotifications(booking, request.Actor))
	c.Log.Info(scope, fmt.Sprintf("booking moved to %s", to), "bookingID", booking.ID)
	return utils.Result{Data: converter.BookingToResponse(booking)}
}

// statusNotifications tells the parties the actor is not.
func statusNotifications(b *entity.Booking, actor model.Actor) []*model.Notification {
	msg := fmt.Sprintf("Your %s booking is now %s", b.ServiceName, b.Status)
	var out []*model.Notification
	if actor.ID != b.CustomerID {
		out = append(out, toCustomer(b, model.NotifyBookingStatus, "Booking update", msg))
	}
	if b.HasWorker() && !b.IsWorker(actor.ID) {
		out = append(out, toWorker(*b.WorkerID, b, model.NotifyBookingStatus, "Booking update",
			fmt.Sprintf("Booking %s is now %s", b.ID, b.Status)))
	}
	return out
}

func (c *BookingUseCase) AcceptBooking(ctx context.Context, request *model.BookingActionRequest) utils.Result {
	return c.transition(ctx, "AcceptBooking", request, entity.StatusAccepted)
}

func (c *BookingUseCase) RejectBooking(ctx context.Context, request *model.BookingActionRequest) utils.Result {
	return c.transition(ctx, "RejectBooking", request, entity.StatusRejected)
}

// CancelBooking is the customer's pre-assignment cancel or the worker's cancel after
// accepting. Admins go through OverrideStatus.
func (c *BookingUseCase) CancelBooking(ctx context.Context, request *model.BookingActionRequest) utils.Result {
	if request.Actor.Role == token.RoleAdmin {
		return c.OverrideStatus(ctx, &model.AdminOverrideRequest{
			Actor:     request.Actor,
			BookingID: request.BookingID,
			Status:    string(entity.StatusCancelled),
			Reason:    request.Reason,
		})
	}
	return c.transition(ctx, "CancelBooking", request, entity.StatusCancelled)
}

// OverrideStatus is the privileged path; it is audited separately from regular moves.
func (c *BookingUseCase) OverrideStatus(ctx context.Context, request *model.AdminOverrideRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "OverrideStatus-validation", request, err)
	}
	var booking *entity.Booking
	err := c.withBooking(ctx, request.BookingID, func(ctx context.Context, b *entity.Booking) error {
		if err := c.State.Override(ctx, b, request.Actor, entity.BookingStatus(request.Status), request.Reason); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return fail(c.Log, "OverrideStatus", request, err)
	}
	c.notify(ctx, statusNotifications(booking, request.Actor))
	c.Log.Warn("OverrideStatus", fmt.Sprintf("status overridden to %s", request.Status), request.Actor.ID, booking.ID)
	return utils.Result{Data: converter.BookingToResponse(booking)}
}

func (c *BookingUseCase) IssueStartCode(ctx context.Context, request *model.BookingActionRequest) utils.Result {
	return c.issueCode(ctx, "IssueStartCode", request, OTPStart, entity.StatusAccepted)
}

func (c *BookingUseCase) IssueCompletionCode(ctx context.Context, request *model.BookingActionRequest) utils.Result {
	return c.issueCode(ctx, "IssueCompletionCode", request, OTPCompletion, entity.StatusInProgress)
}

// issueCode stores a new code on the booking and sends it to the customer only.
func (c *BookingUseCase) issueCode(ctx context.Context, scope string, request *model.BookingActionRequest, purpose OTPPurpose, want entity.BookingStatus) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, scope+"-validation", request, err)
	}
	var (
		booking *entity.Booking
		code    string
	)
	err := c.withBooking(ctx, request.BookingID, func(ctx context.Context, b *entity.Booking) error {
		if request.Actor.Role != token.RoleWorker || !b.IsWorker(request.Actor.ID) {
			return forbidden("only the assigned worker can request this code")
		}
		if b.Status != want {
			return conflict("Cannot issue a %s code while the booking is %s", purpose, b.Status)
		}
		if purpose == OTPCompletion && b.PaymentStatus != entity.PaymentPaid {
			return conflict("Payment must be completed before the booking can be completed")
		}
		var err error
		if code, err = c.OTP.Issue(b, purpose); err != nil {
			return err
		}
		booking = b
		return c.State.Save(ctx, b, request.Actor, b.Status, "", false)
	})
	if err != nil {
		return fail(c.Log, scope, request, err)
	}
	kind := model.NotifyStartCode
	if purpose == OTPCompletion {
		kind = model.NotifyCompletionCode
	}
	n := toCustomer(booking, kind, "Your booking code",
		fmt.Sprintf("Share code %s with your worker to %s the job. It expires in %d minutes.", code, verb(purpose), int(c.OTP.TTL.Minutes())))
	n.Data["otp"] = code
	c.notify(ctx, []*model.Notification{n})
	c.Log.Info(scope, "code issued", "bookingID", booking.ID)
	return utils.Result{Data: converter.BookingToResponse(booking)}
}

func verb(p OTPPurpose) string {
	if p == OTPCompletion {
		return "complete"
	}
	return "start"
}

func (c *BookingUseCase) StartBooking(ctx context.Context, request *model.VerifyCodeRequest) utils.Result {
	return c.verifyCode(ctx, "StartBooking", request, OTPStart, entity.StatusInProgress)
}

func (c *BookingUseCase) CompleteBooking(ctx context.Context, request *model.VerifyCodeRequest) utils.Result {
	return c.verifyCode(ctx, "CompleteBooking", request, OTPCompletion, entity.StatusCompleted)
}

// verifyCode checks authorization and the transition before looking at the code, so a
// wrong code never hides a clearer error and a failed transition never consumes the code.
func (c *BookingUseCase) verifyCode(ctx context.Context, scope string, request *model.VerifyCodeRequest, purpose OTPPurpose, to entity.BookingStatus) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, scope+"-validation", request, err)
	}
	var booking *entity.Booking
	err := c.withBooking(ctx, request.BookingID, func(ctx context.Context, b *entity.Booking) error {
		if err := c.State.authorize(b, request.Actor, to); err != nil {
			return err
		}
		if err := c.OTP.Verify(b, purpose, request.Code); err != nil {
			return err
		}
		if len(request.WorkProofPhotos) > 0 {
			b.WorkProofPhotos = append(b.WorkProofPhotos, request.WorkProofPhotos...)
		}
		if err := c.State.Transition(ctx, b, request.Actor, to, ""); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return fail(c.Log, scope, request, err)
	}
	c.notify(ctx, statusNotifications(booking, request.Actor))
	c.Log.Info(scope, fmt.Sprintf("booking moved to %s", to), "bookingID", booking.ID)
	return utils.Result{Data: converter.BookingToResponse(booking)}
}

// RequestReschedule records the worker's proposal; nothing moves until the customer answers.
func (c *BookingUseCase) RequestReschedule(ctx context.Context, request *model.RescheduleProposalRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "RequestReschedule-validation", request, err)
	}
	date, err := parseDate(request.Date)
	if err != nil {
		return fail(c.Log, "RequestReschedule-validation", request, err)
	}
	if date.Before(c.now().Truncate(dayLength)) {
		return fail(c.Log, "RequestReschedule-validation", request, badRequest("reschedule date %s is in the past", request.Date))
	}
	var booking *entity.Booking
	err = c.withBooking(ctx, request.BookingID, func(ctx context.Context, b *entity.Booking) error {
		if request.Actor.Role != token.RoleWorker || !b.IsWorker(request.Actor.ID) {
			return forbidden("only the assigned worker can propose a new schedule")
		}
		if b.Status != entity.StatusAssigned && b.Status != entity.StatusAccepted {
			return conflict("Cannot reschedule a booking that is %s", b.Status)
		}
		if b.RescheduleRequest != nil && b.RescheduleRequest.Status == entity.ReschedulePending {
			return conflict("A reschedule request is already pending")
		}
		b.RescheduleRequest = &entity.RescheduleRequest{
			Date:        date,
			Time:        request.Time,
			Reason:      request.Reason,
			RequestedBy: request.Actor.ID,
			RequestedAt: c.now(),
			Status:      entity.ReschedulePending,
		}
		booking = b
		return c.State.Save(ctx, b, request.Actor, b.Status, "", false)
	})
	if err != nil {
		return fail(c.Log, "RequestReschedule", request, err)
	}
	c.notify(ctx, []*model.Notification{toCustomer(booking, model.NotifyReschedule, "Reschedule requested",
		fmt.Sprintf("Your worker asked to move the booking to %s %s: %s", request.Date, request.Time, request.Reason))})
	return utils.Result{Data: converter.BookingToResponse(booking)}
}

// RespondReschedule applies or declines a pending proposal. Approval re-checks the
// worker's calendar for the new day.
func (c *BookingUseCase) RespondReschedule(ctx context.Context, request *model.RescheduleDecisionRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "RespondReschedule-validation", request, err)
	}
	current, err := c.Repos.Bookings.FindByID(ctx, request.BookingID)
	if err != nil {
		return fail(c.Log, "RespondReschedule", request, lookup(err, "booking", request.BookingID))
	}
	var keys []string
	if current.HasWorker() {
		keys = append(keys, workerKey(*current.WorkerID))
	}

	var booking *entity.Booking
	err = c.withBooking(ctx, request.BookingID, func(ctx context.Context, b *entity.Booking) error {
		if request.Actor.Role != token.RoleCustomer || b.CustomerID != request.Actor.ID {
			return forbidden("only the customer can answer a reschedule request")
		}
		if b.RescheduleRequest == nil || b.RescheduleRequest.Status != entity.ReschedulePending {
			return conflict("There is no pending reschedule request")
		}
		if current.HasWorker() != b.HasWorker() || (b.HasWorker() && !b.IsWorker(*current.WorkerID)) {
			return conflict("Booking changed while answering, please retry")
		}
		if !request.Approve {
			b.RescheduleRequest.Status = entity.RescheduleRejected
		} else {
			if b.HasWorker() {
				if err := c.Assignment.EnsureAvailable(ctx, *b.WorkerID, b.RescheduleRequest.Date, b.ID); err != nil {
					return err
				}
			}
			b.ScheduledDate = b.RescheduleRequest.Date
			b.ScheduledTime = b.RescheduleRequest.Time
			b.RescheduleRequest.Status = entity.RescheduleApproved
		}
		booking = b
		return c.State.Save(ctx, b, request.Actor, b.Status, "", false)
	}, keys...)
	if err != nil {
		return fail(c.Log, "RespondReschedule", request, err)
	}
	if booking.HasWorker() {
		c.notify(ctx, []*model.Notification{toWorker(*booking.WorkerID, booking, model.NotifyRescheduleDecision,
			"Reschedule "+string(booking.RescheduleRequest.Status),
			fmt.Sprintf("The customer %s your reschedule request", booking.RescheduleRequest.Status))})
	}
	return utils.Result{Data: converter.BookingToResponse(booking)}
}
