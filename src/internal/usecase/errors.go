package usecase

import (
	"errors"
	"fmt"

	"booking-service/src/internal/repository"
	httpError "booking-service/src/pkg/http-error"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
)

func badRequest(format string, args ...interface{}) error {
	e := httpError.NewBadRequest()
	e.Message = fmt.Sprintf(format, args...)
	return e
}

func notFound(format string, args ...interface{}) error {
	e := httpError.NewNotFound()
	e.Message = fmt.Sprintf(format, args...)
	return e
}

func forbidden(format string, args ...interface{}) error {
	e := httpError.NewForbidden()
	e.Message = fmt.Sprintf(format, args...)
	return e
}

func conflict(format string, args ...interface{}) error {
	e := httpError.NewStateConflict()
	e.Message = fmt.Sprintf(format, args...)
	return e
}

func external(err error, format string, args ...interface{}) error {
	e := httpError.NewExternalService()
	e.Message = fmt.Sprintf(format, args...)
	return e.Wrap(err)
}

// lookup maps a repository miss to NotFound and anything else to an internal error.
func lookup(err error, what, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("%s with id %s not found", what, id)
	}
	return httpError.NewInternalServerError().Wrap(err)
}

func validate(v *validator.Validate, request interface{}) error {
	if err := v.Struct(request); err != nil {
		return badRequest("validation error: %v", err.Error())
	}
	return nil
}

// fail logs err under scope and wraps it for the controller.
func fail(l log.Log, scope string, request interface{}, err error) utils.Result {
	ce := httpError.From(err)
	if ce.Code >= 500 {
		l.Error(scope, ce.Error(), utils.ConvertString(ce.Err), utils.ConvertString(request))
	} else {
		l.Warn(scope, ce.Error(), string(ce.Kind), utils.ConvertString(request))
	}
	return utils.Result{Error: ce}
}
