package application

import (
	"errors"
	"strings"
)

var (
	ErrHandlerNotFound        = errors.New("no handler registered for request")
	ErrUnsupportedRequestKind = errors.New("unsupported request kind")
	ErrRegistrySealed         = errors.New("registry is sealed")
)

// ValidationError carrega as falhas de todos os validadores de uma solicitação.
type ValidationError struct {
	Failures []ValidationFailure
}

func NewValidationError(failures []ValidationFailure) *ValidationError {
	return &ValidationError{Failures: failures}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.PropertyName+": "+f.ErrorMessage)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
