package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "transitions_total",
		Help:      "Booking status transitions by source, target and whether an admin override performed them.",
	}, []string{"from", "to", "privileged"})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "worker_settlements_total",
		Help:      "Worker credit attempts by outcome.",
	}, []string{"outcome"})

	Refunds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "refunds_total",
		Help:      "Customer refund transactions by portion.",
	}, []string{"portion"})

	CouponRedemptions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "coupon_redemptions_total",
		Help:      "Committed coupon redemptions.",
	})

	OTPFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "otp_failures_total",
		Help:      "Rejected one-time code verifications.",
	}, []string{"purpose"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Name:      "http_requests_total",
		Help:      "Served HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})
)
