package http

import (
	"context"
	"fmt"

	"booking-service/src/internal/delivery/http/middleware"
	"booking-service/src/internal/model"
	"booking-service/src/internal/usecase"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type BookingController struct {
	Log     log.Log
	UseCase *usecase.BookingUseCase
}

func NewBookingController(useCase *usecase.BookingUseCase, logger log.Log) *BookingController {
	return &BookingController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *BookingController) Create(ctx *fiber.Ctx) error {
	request := new(model.CreateBookingRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("BookingController.Create", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	result := c.UseCase.CreateBooking(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Booking created", fiber.StatusCreated, ctx)
}

func (c *BookingController) CreateBulk(ctx *fiber.Ctx) error {
	request := new(model.BulkCreateBookingRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("BookingController.CreateBulk", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	result := c.UseCase.CreateBulkBookings(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Bookings created", fiber.StatusCreated, ctx)
}

func (c *BookingController) List(ctx *fiber.Ctx) error {
	request := new(model.ListBookingsRequest)
	if err := ctx.QueryParser(request); err != nil {
		c.Log.Error("BookingController.List", "Failed to parse query", "error", err.Error())
		return utils.ResponseError(fiber.NewError(fiber.StatusBadRequest, "Malformed query"), ctx)
	}
	request.Actor = middleware.Actor(ctx)
	result := c.UseCase.ListBookings(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Bookings", fiber.StatusOK, ctx)
}

func (c *BookingController) Get(ctx *fiber.Ctx) error {
	request := &model.GetBookingRequest{Actor: middleware.Actor(ctx), BookingID: ctx.Params("id")}
	result := c.UseCase.GetBooking(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Booking", fiber.StatusOK, ctx)
}

func (c *BookingController) Invoice(ctx *fiber.Ctx) error {
	request := &model.GetBookingRequest{Actor: middleware.Actor(ctx), BookingID: ctx.Params("id")}
	result := c.UseCase.Invoice(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	doc := result.Data.(*model.InvoiceResponse)
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, doc.Filename))
	return ctx.Status(fiber.StatusOK).Send(doc.Content)
}

func (c *BookingController) AssignableWorkers(ctx *fiber.Ctx) error {
	request := &model.GetBookingRequest{Actor: middleware.Actor(ctx), BookingID: ctx.Params("id")}
	result := c.UseCase.AssignableWorkers(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Assignable workers", fiber.StatusOK, ctx)
}

func (c *BookingController) Assign(ctx *fiber.Ctx) error {
	request := new(model.AssignWorkerRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("BookingController.Assign", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	request.BookingID = ctx.Params("id")
	result := c.UseCase.AssignWorker(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Worker assigned", fiber.StatusOK, ctx)
}

func (c *BookingController) Accept(ctx *fiber.Ctx) error {
	return c.action(ctx, "Booking accepted", c.UseCase.AcceptBooking)
}

func (c *BookingController) Reject(ctx *fiber.Ctx) error {
	return c.action(ctx, "Booking rejected", c.UseCase.RejectBooking)
}

func (c *BookingController) Cancel(ctx *fiber.Ctx) error {
	return c.action(ctx, "Booking cancelled", c.UseCase.CancelBooking)
}

func (c *BookingController) IssueStartCode(ctx *fiber.Ctx) error {
	return c.action(ctx, "Start code sent to customer", c.UseCase.IssueStartCode)
}

func (c *BookingController) IssueCompletionCode(ctx *fiber.Ctx) error {
	return c.action(ctx, "Completion code sent to customer", c.UseCase.IssueCompletionCode)
}

func (c *BookingController) Start(ctx *fiber.Ctx) error {
	return c.verify(ctx, "Booking started", c.UseCase.StartBooking)
}

func (c *BookingController) Complete(ctx *fiber.Ctx) error {
	return c.verify(ctx, "Booking completed", c.UseCase.CompleteBooking)
}

func (c *BookingController) OverrideStatus(ctx *fiber.Ctx) error {
	request := new(model.AdminOverrideRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("BookingController.OverrideStatus", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	request.BookingID = ctx.Params("id")
	result := c.UseCase.OverrideStatus(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Status overridden", fiber.StatusOK, ctx)
}

func (c *BookingController) ProposeReschedule(ctx *fiber.Ctx) error {
	request := new(model.RescheduleProposalRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("BookingController.ProposeReschedule", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	request.BookingID = ctx.Params("id")
	result := c.UseCase.RequestReschedule(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Reschedule requested", fiber.StatusOK, ctx)
}

func (c *BookingController) RespondReschedule(ctx *fiber.Ctx) error {
	request := new(model.RescheduleDecisionRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("BookingController.RespondReschedule", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	request.BookingID = ctx.Params("id")
	result := c.UseCase.RespondReschedule(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Reschedule answered", fiber.StatusOK, ctx)
}

type actionFunc func(ctx context.Context, request *model.BookingActionRequest) utils.Result

func (c *BookingController) action(ctx *fiber.Ctx, message string, run actionFunc) error {
	request := new(model.BookingActionRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("BookingController.action", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	request.BookingID = ctx.Params("id")
	result := run(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, message, fiber.StatusOK, ctx)
}

type verifyFunc func(ctx context.Context, request *model.VerifyCodeRequest) utils.Result

func (c *BookingController) verify(ctx *fiber.Ctx, message string, run verifyFunc) error {
	request := new(model.VerifyCodeRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("BookingController.action", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	request.BookingID = ctx.Params("id")
	result := run(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, message, fiber.StatusOK, ctx)
}
