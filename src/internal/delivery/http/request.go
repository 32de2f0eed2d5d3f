package http

import (
	httpError "booking-service/src/pkg/http-error"

	"github.com/gofiber/fiber/v2"
)

// parseBody tolerates an empty body so action endpoints can be called without a payload.
func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.BodyParser(out); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = "Malformed request body"
		return errObj.Wrap(err)
	}
	return nil
}
