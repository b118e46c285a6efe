package pipeline

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kirillkom/policy-navigator/internal/core/domain"
	"github.com/kirillkom/policy-navigator/internal/infrastructure/resilience"
)

// classifyPipelineError feeds the optional retry/breaker policy. Only active
// when hardening is configured; the default single-attempt path never
// consults it for retries.
func classifyPipelineError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return resilience.Verdict{
			Retry:               retryableStatus(statusErr.StatusCode),
			CountAgainstBreaker: statusErr.StatusCode >= http.StatusInternalServerError,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retry: true, CountAgainstBreaker: true}
	}
	return resilience.Verdict{CountAgainstBreaker: true}
}

func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// wrapTransport collapses every gateway failure into the single
// transport-error kind: endpoint unreachable, 4xx and 5xx all degrade to the
// same user-visible message path. An open breaker additionally carries the
// temporary kind so the adapter can answer 503.
func wrapTransport(operation string, err error) error {
	if err == nil {
		return nil
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return domain.WrapError(domain.ErrTransport, operation, err)
}
