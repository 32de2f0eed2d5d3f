package http

import (
	"booking-service/src/internal/delivery/http/middleware"
	"booking-service/src/internal/model"
	"booking-service/src/internal/usecase"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// WalletController serves wallet views, worker payouts and worker location pings.
type WalletController struct {
	Log      log.Log
	Payouts  *usecase.PayoutUseCase
	Location *usecase.LocationUseCase
}

func NewWalletController(payouts *usecase.PayoutUseCase, location *usecase.LocationUseCase, logger log.Log) *WalletController {
	return &WalletController{
		Log:      logger,
		Payouts:  payouts,
		Location: location,
	}
}

func (c *WalletController) Me(ctx *fiber.Ctx) error {
	result := c.Payouts.Wallet(ctx.UserContext(), middleware.Actor(ctx))
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Wallet", fiber.StatusOK, ctx)
}

func (c *WalletController) RequestPayout(ctx *fiber.Ctx) error {
	request := new(model.PayoutRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("WalletController.RequestPayout", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	result := c.Payouts.RequestPayout(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Payout requested", fiber.StatusCreated, ctx)
}

func (c *WalletController) DecidePayout(ctx *fiber.Ctx) error {
	request := new(model.PayoutDecisionRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("WalletController.DecidePayout", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	request.WithdrawalID = ctx.Params("id")
	result := c.Payouts.DecidePayout(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Payout decided", fiber.StatusOK, ctx)
}

func (c *WalletController) UpdateLocation(ctx *fiber.Ctx) error {
	request := new(model.UpdateLocationRequest)
	if err := parseBody(ctx, request); err != nil {
		c.Log.Error("WalletController.UpdateLocation", "Failed to parse request body", "error", err.Error())
		return utils.ResponseError(err, ctx)
	}
	request.Actor = middleware.Actor(ctx)
	result := c.Location.UpdateLocation(ctx.UserContext(), request)
	if result.Error != nil {
		return utils.ResponseError(result.Error, ctx)
	}
	return utils.Response(result.Data, "Location updated", fiber.StatusOK, ctx)
}
