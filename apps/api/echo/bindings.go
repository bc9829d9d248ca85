package echoapi

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type validatable interface {
	Validate(validate *validator.Validate) error
}

// bindAndValidate binds the request into data, then cleans & validates it.
func bindAndValidate(ctx echo.Context, validate *validator.Validate, data validatable) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to "+reflect.TypeOf(data).Elem().Name())
	}
	return data.Validate(validate)
}
