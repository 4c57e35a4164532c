// Package adapter valida solicitações com as tags `validate` do go-playground/validator.
//
// Cada campo pode declarar a mensagem de erro na tag `msg`:
//
//	FirstName string `validate:"required" msg:"First name must not be empty"`
package adapter

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/mateusmacedo/go-users/pkg/application"
)

const messageTag = "msg"

// MaxBytesTag limita strings pelo tamanho em bytes; `max` conta runas.
const MaxBytesTag = "maxbytes"

var defaultValidate = newValidate()

func newValidate() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation(MaxBytesTag, maxBytes); err != nil {
		panic(err)
	}
	return validate
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic(fmt.Sprintf("%s: invalid limit %q", MaxBytesTag, fl.Param()))
	}

	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return len(field.String()) <= limit
}

type structValidator[T any] struct {
	validate *validator.Validate
}

// NewStructValidator cria um validador para T baseado nas tags do struct.
func NewStructValidator[T any]() application.Validator[T] {
	return &structValidator[T]{validate: defaultValidate}
}

func (v *structValidator[T]) Validate(ctx context.Context, request T) ([]application.ValidationFailure, error) {
	err := v.validate.StructCtx(ctx, request)
	if err == nil {
		return nil, nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return nil, fmt.Errorf("validate %T: %w", request, err)
	}

	requestType := reflect.TypeOf(request)
	for requestType.Kind() == reflect.Pointer {
		requestType = requestType.Elem()
	}

	failures := make([]application.ValidationFailure, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		failures = append(failures, application.ValidationFailure{
			PropertyName: fieldError.StructField(),
			ErrorMessage: messageFor(requestType, fieldError),
		})
	}
	return failures, nil
}

func messageFor(requestType reflect.Type, fieldError validator.FieldError) string {
	if field, ok := requestType.FieldByName(fieldError.StructField()); ok {
		if msg := field.Tag.Get(messageTag); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("%s failed on the '%s' rule", fieldError.StructField(), fieldError.Tag())
}
