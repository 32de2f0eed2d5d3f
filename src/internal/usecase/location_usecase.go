package usecase

import (
	"context"

	"booking-service/src/internal/model"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/token"
	"booking-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
)

type LocationWriter interface {
	UpdateLocation(ctx context.Context, workerID string, at model.Coordinates) error
}

// LocationUseCase records worker positions used by distance pricing and worker search.
type LocationUseCase struct {
	Log      log.Log
	Validate *validator.Validate
	Writer   LocationWriter
}

func NewLocationUseCase(logger log.Log, validate *validator.Validate, writer LocationWriter) *LocationUseCase {
	return &LocationUseCase{Log: logger, Validate: validate, Writer: writer}
}

func (c *LocationUseCase) UpdateLocation(ctx context.Context, request *model.UpdateLocationRequest) utils.Result {
	if err := validate(c.Validate, request); err != nil {
		return fail(c.Log, "UpdateLocation", request, err)
	}
	if request.Actor.Role != token.RoleWorker {
		return fail(c.Log, "UpdateLocation", request, forbidden("only workers report a location"))
	}
	if c.Writer == nil {
		return fail(c.Log, "UpdateLocation", request, external(nil, "worker location store is not configured"))
	}
	at := model.Coordinates{Latitude: request.Latitude, Longitude: request.Longitude}
	if err := c.Writer.UpdateLocation(ctx, request.Actor.ID, at); err != nil {
		return fail(c.Log, "UpdateLocation", request, external(err, "failed to store worker location"))
	}
	return utils.Result{Data: at}
}
