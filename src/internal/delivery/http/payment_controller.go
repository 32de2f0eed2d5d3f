package http

import (
	"booking-service/src/internal/delivery/http/middleware"
	"booking-service/src/internal/model"
	"booking-service/src/internal/usecase"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type PaymentController struct {
	Log     log.Log
	UseCase *usecase.PaymentUseCase
}

func NewPaymentController(useCase *usecase.PaymentUseCase, logger log.Log) *PaymentController {
	return &PaymentController{
		Log:     logger,
		UseCase: useCase,
	}
}

func (c *PaymentController) Collect(ctx *fiber.Ctx) error {
	request := new(model.CollectPaymentRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("PaymentController.Collect", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	request.BookingID = ctx.Params("id")
	result := c.UseCase.CollectPayment(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Payment collection started", fiber.StatusOK, ctx)
}

func (c *PaymentController) Verify(ctx *fiber.Ctx) error {
	request := new(model.VerifyPaymentRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("PaymentController.Verify", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	request.BookingID = ctx.Params("id")
	result := c.UseCase.VerifyPayment(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Payment verified", fiber.StatusOK, ctx)
}
