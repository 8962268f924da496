// Package services wraps each backend resource in a small typed service.
// Services validate their inputs, call the transport and hand the decoded
// payload to the normalizer; they never touch session state.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strings"

	applytrackErrors "applytrack/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Requester is the transport the services talk through. *client.Client implements it.
type Requester interface {
	Request(ctx context.Context, method, endpoint string, body any) (any, error)
	Upload(ctx context.Context, endpoint, filename string, r io.Reader) (any, error)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateInput checks in against its validate tags. A missing value is an
// empty input error, anything else an invalid id.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		code := applytrackErrors.ErrCodeInvalidID
		if ve.Tag() == "required" {
			code = applytrackErrors.ErrCodeEmptyInput
		}
		return applytrackErrors.NewValidationError(code,
			fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag()), err).
			WithContext("field", ve.Field())
	}
	return applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidRequest,
		"validation error: invalid request", err)
}

// idInput is the input of every lookup by id
type idInput struct {
	ID string `json:"id" validate:"required"`
}

func requireID(id string) (string, error) {
	in := idInput{ID: strings.TrimSpace(id)}
	if err := validateInput(in); err != nil {
		return "", err
	}
	return url.PathEscape(in.ID), nil
}
