package middleware

import (
	"strings"

	"booking-service/src/internal/model"
	httpError "booking-service/src/pkg/http-error"
	"booking-service/src/pkg/token"
	"booking-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const authKey = "auth"

type Auth struct {
	UserID   string
	FullName string
	Role     string
}

// VerifyBearer resolves the bearer token into the caller identity stored on the request.
func VerifyBearer(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return unauthorized(ctx, "Missing bearer token")
		}
		claim, err := token.Parse(strings.TrimSpace(raw), secret)
		if err != nil {
			return unauthorized(ctx, "Invalid or expired token")
		}
		ctx.Locals(authKey, &Auth{
			UserID:   claim.Metadata.UserID,
			FullName: claim.Metadata.FullName,
			Role:     claim.Metadata.Role,
		})
		return ctx.Next()
	}
}

func GetUser(ctx *fiber.Ctx) *Auth {
	auth, _ := ctx.Locals(authKey).(*Auth)
	if auth == nil {
		return &Auth{}
	}
	return auth
}

// Actor is the caller identity in the shape the usecases expect.
func Actor(ctx *fiber.Ctx) model.Actor {
	auth := GetUser(ctx)
	return model.Actor{ID: auth.UserID, Role: auth.Role}
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(ctx *fiber.Ctx) error {
		auth := GetUser(ctx)
		if auth.Role == "" {
			return unauthorized(ctx, "Missing caller identity")
		}
		if _, ok := allowed[auth.Role]; !ok {
			errObj := httpError.NewForbidden()
			errObj.Message = "Role " + auth.Role + " is not allowed to perform this action"
			return utils.ResponseError(errObj, ctx)
		}
		return ctx.Next()
	}
}

func unauthorized(ctx *fiber.Ctx, message string) error {
	errObj := httpError.NewUnauthorized()
	errObj.Message = message
	return utils.ResponseError(errObj, ctx)
}
