package gateway

import (
	"errors"
	"fmt"
)

// SequencerError is implemented by every error returned from a gateway request.
type SequencerError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of a sequencer error
type ErrorType string

const (
	// TransportErrorType covers everything below the application layer. Always retryable.
	TransportErrorType ErrorType = "transport"
	// ApplicationErrorType is a well-formed error reported by the sequencer. Never retried.
	ApplicationErrorType ErrorType = "application"
	// MalformedApplicationErrorType is an error status whose body could not be decoded.
	MalformedApplicationErrorType ErrorType = "malformed_application"
)

// TransportKind narrows a TransportError.
type TransportKind string

const (
	KindRequest TransportKind = "request"
	KindConnect TransportKind = "connect"
	KindTimeout TransportKind = "timeout"
	KindBody    TransportKind = "body"
	KindStatus  TransportKind = "status"
	KindDecode  TransportKind = "decode"
)

// TransportError is a failure to obtain or decode a usable response.
type TransportError struct {
	Kind       TransportKind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("sequencer transport error: unexpected status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("sequencer transport error (%s): %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("sequencer transport error (%s)", e.Kind)
	}
}

func (e *TransportError) Type() ErrorType {
	return TransportErrorType
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError is a structured error returned by the sequencer.
type ApplicationError struct {
	StatusCode int
	Code       ErrorCode
	Message    string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sequencer error %s", e.Code)
	}
	return fmt.Sprintf("sequencer error %s: %s", e.Code, e.Message)
}

func (e *ApplicationError) Type() ErrorType {
	return ApplicationErrorType
}

// MalformedApplicationError is returned when an error status carries a body
// that is not a valid {"code","message"} object.
type MalformedApplicationError struct {
	StatusCode int
	Err        error
}

func (e *MalformedApplicationError) Error() string {
	return "error decoding response body: invalid error variant"
}

func (e *MalformedApplicationError) Type() ErrorType {
	return MalformedApplicationErrorType
}

func (e *MalformedApplicationError) Unwrap() error {
	return e.Err
}

func newTransportError(kind TransportKind, err error) *TransportError {
	return &TransportError{Kind: kind, Err: err}
}

func newStatusError(statusCode int) *TransportError {
	return &TransportError{Kind: KindStatus, StatusCode: statusCode}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var seqErr SequencerError
	if errors.As(err, &seqErr) {
		return seqErr.Type() == errorType
	}
	return false
}

// IsTransportKind checks if an error is a transport error of the given kind.
func IsTransportKind(err error, kind TransportKind) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Kind == kind
	}
	return false
}

// IsApplicationError checks if an error is a sequencer error with the given code.
func IsApplicationError(err error, code ErrorCode) bool {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
