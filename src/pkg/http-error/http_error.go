package httperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure independently of the transport that reports it.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindAuthorization   Kind = "AUTHORIZATION_ERROR"
	KindStateConflict   Kind = "STATE_CONFLICT"
	KindExternalService Kind = "EXTERNAL_SERVICE_ERROR"
	KindInternal        Kind = "INTERNAL_ERROR"
)

// CommonError is the error value every usecase hands back to the delivery layer.
type CommonError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *CommonError) Error() string {
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Err
}

// Wrap keeps the cause for logging; it is never rendered to clients.
func (e *CommonError) Wrap(err error) *CommonError {
	e.Err = err
	return e
}

func NewBadRequest() *CommonError {
	return &CommonError{Code: http.StatusBadRequest, Kind: KindValidation, Message: "Bad Request"}
}

func NewNotFound() *CommonError {
	return &CommonError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Not Found"}
}

func NewUnauthorized() *CommonError {
	return &CommonError{Code: http.StatusUnauthorized, Kind: KindAuthorization, Message: "Unauthorized"}
}

func NewForbidden() *CommonError {
	return &CommonError{Code: http.StatusForbidden, Kind: KindAuthorization, Message: "Forbidden"}
}

// NewStateConflict reports an illegal transition or an exhausted financial precondition.
func NewStateConflict() *CommonError {
	return &CommonError{Code: http.StatusBadRequest, Kind: KindStateConflict, Message: "State Conflict"}
}

func NewExternalService() *CommonError {
	return &CommonError{Code: http.StatusInternalServerError, Kind: KindExternalService, Message: "External Service Error"}
}

func NewInternalServerError() *CommonError {
	return &CommonError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal Server Error"}
}

// Is reports whether err carries a CommonError of the given kind.
func Is(err error, kind Kind) bool {
	var ce *CommonError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// From converts any error into a CommonError, defaulting to an internal error.
func From(err error) *CommonError {
	var ce *CommonError
	if errors.As(err, &ce) {
		return ce
	}
	return NewInternalServerError().Wrap(err)
}
