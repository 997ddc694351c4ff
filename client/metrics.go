package client

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meeting_summary_client",
			Name:      "requests_total",
			Help:      "SDK calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meeting_summary_client",
			Name:      "retries_total",
			Help:      "Retries of idempotent calls after a recoverable failure.",
		},
		[]string{"op"},
	)
)

func observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidArgument):
		outcome = "invalid"
	case asAPIError(err):
		outcome = "error"
	default:
		outcome = "canceled"
	}
	requestsTotal.WithLabelValues(op, outcome).Inc()
}

func asAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
