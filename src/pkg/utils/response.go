package utils

import (
	httpError "booking-service/src/pkg/http-error"

	"github.com/gofiber/fiber/v2"
)

type BaseResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Response(data interface{}, message string, code int, ctx *fiber.Ctx) error {
	return ctx.Status(code).JSON(BaseResponse{
		Success: true,
		Message: message,
		Code:    code,
		Data:    data,
	})
}

// ResponseError renders the structured message only; wrapped causes stay in the logs.
func ResponseError(err error, ctx *fiber.Ctx) error {
	if fe, ok := err.(*fiber.Error); ok {
		return ctx.Status(fe.Code).JSON(BaseResponse{
			Message: fe.Message,
			Code:    fe.Code,
			Kind:    string(httpError.KindValidation),
		})
	}
	ce := httpError.From(err)
	return ctx.Status(ce.Code).JSON(BaseResponse{
		Message: ce.Message,
		Code:    ce.Code,
		Kind:    string(ce.Kind),
	})
}
