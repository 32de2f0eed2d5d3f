package middleware

import (
	"fmt"
	"strconv"
	"time"

	"booking-service/src/pkg/log"
	"booking-service/src/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

const slowRequest = 2 * time.Second

func NewLogger(logger log.Log) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		latency := time.Since(start)

		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		metrics.HTTPRequests.WithLabelValues(ctx.Method(), ctx.Route().Path, strconv.Itoa(status)).Inc()
		meta := fmt.Sprintf("method=%s path=%s status=%d latency=%s", ctx.Method(), ctx.Path(), status, latency)
		switch {
		case latency > slowRequest:
			logger.Slow("http", "slow request", ctx.Route().Path, meta)
		case status >= fiber.StatusInternalServerError:
			logger.Error("http", "request failed", ctx.Route().Path, meta)
		default:
			logger.Info("http", "request served", ctx.Route().Path, meta)
		}
		return err
	}
}
