package route

import (
	"booking-service/src/internal/delivery/http"
	"booking-service/src/internal/delivery/http/middleware"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouteConfig struct {
	App               *fiber.App
	Log               log.Log
	BookingController *http.BookingController
	PaymentController *http.PaymentController
	WalletController  *http.WalletController
	AuthMiddleware    fiber.Handler
}

func (c *RouteConfig) Setup() {
	c.App.Use(middleware.NewLogger(c.Log))
	c.App.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	c.SetupAuthRoute()
}

func (c *RouteConfig) SetupAuthRoute() {
	customer := middleware.RequireRoles(token.RoleCustomer)
	worker := middleware.RequireRoles(token.RoleWorker)
	admin := middleware.RequireRoles(token.RoleAdmin)
	party := middleware.RequireRoles(token.RoleCustomer, token.RoleWorker)
	anyone := middleware.RequireRoles(token.RoleCustomer, token.RoleWorker, token.RoleAdmin)

	bookings := c.App.Group("/bookings/v1", c.AuthMiddleware)
	bookings.Post("/", customer, c.BookingController.Create)
	bookings.Post("/bulk", customer, c.BookingController.CreateBulk)
	bookings.Get("/", anyone, c.BookingController.List)
	bookings.Get("/:id", anyone, c.BookingController.Get)
	bookings.Get("/:id/invoice", anyone, c.BookingController.Invoice)
	bookings.Get("/:id/workers", admin, c.BookingController.AssignableWorkers)
	bookings.Put("/:id/assign", admin, c.BookingController.Assign)
	bookings.Post("/:id/accept", worker, c.BookingController.Accept)
	bookings.Post("/:id/reject", worker, c.BookingController.Reject)
	bookings.Post("/:id/start-code", worker, c.BookingController.IssueStartCode)
	bookings.Post("/:id/start", worker, c.BookingController.Start)
	bookings.Post("/:id/completion-code", worker, c.BookingController.IssueCompletionCode)
	bookings.Post("/:id/complete", worker, c.BookingController.Complete)
	bookings.Post("/:id/cancel", anyone, c.BookingController.Cancel)
	bookings.Put("/:id/status", admin, c.BookingController.OverrideStatus)
	bookings.Post("/:id/reschedule", worker, c.BookingController.ProposeReschedule)
	bookings.Put("/:id/reschedule", customer, c.BookingController.RespondReschedule)
	bookings.Post("/:id/payments", party, c.PaymentController.Collect)
	bookings.Post("/:id/payments/verify", party, c.PaymentController.Verify)

	c.App.Get("/wallets/v1/me", c.AuthMiddleware, party, c.WalletController.Me)
	c.App.Post("/payouts/v1", c.AuthMiddleware, worker, c.WalletController.RequestPayout)
	c.App.Put("/payouts/v1/:id", c.AuthMiddleware, admin, c.WalletController.DecidePayout)
	c.App.Put("/workers/v1/location", c.AuthMiddleware, worker, c.WalletController.UpdateLocation)
}
