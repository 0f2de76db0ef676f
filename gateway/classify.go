package gateway

import (
	"errors"
	"net/http"

	"github.com/gaborage/go-sequencer/logger"
)

type severity int

const (
	severityDebug severity = iota
	severityInfo
	severityWarn
	severityError
)

// classify decides whether err is worth another attempt and how loudly to report it.
// A well-formed sequencer error is the only terminal outcome.
func classify(err error) (bool, severity) {
	var (
		appErr       *ApplicationError
		malformedErr *MalformedApplicationError
		transportErr *TransportError
	)

	switch {
	case errors.As(err, &appErr):
		return false, severityDebug
	case errors.As(err, &malformedErr):
		return true, severityError
	case errors.As(err, &transportErr):
		return true, transportSeverity(transportErr)
	default:
		return true, severityWarn
	}
}

func transportSeverity(err *TransportError) severity {
	switch err.Kind {
	case KindConnect, KindTimeout, KindBody:
		return severityInfo
	case KindStatus:
		switch err.StatusCode {
		case http.StatusNotFound,
			http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return severityDebug
		case http.StatusInternalServerError:
			return severityError
		default:
			return severityWarn
		}
	case KindDecode:
		return severityError
	default:
		return severityWarn
	}
}

// shouldRetry classifies err and logs retryable failures at their severity.
func shouldRetry(log logger.Logger, err error) bool {
	retryable, sev := classify(err)
	if !retryable {
		return false
	}

	var event logger.LogEvent
	switch sev {
	case severityDebug:
		event = log.Debug()
	case severityInfo:
		event = log.Info()
	case severityWarn:
		event = log.Warn()
	default:
		event = log.Error()
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		event = event.Str("kind", string(transportErr.Kind))
		if transportErr.StatusCode != 0 {
			event = event.Int("status", transportErr.StatusCode)
		}
	}
	event.Err(err).Msg("Sequencer request failed, retrying")
	return true
}
