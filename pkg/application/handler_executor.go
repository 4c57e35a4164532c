package application

import (
	"context"
	"errors"
	"fmt"
)

// Redactor é implementada por solicitações que carregam segredos;
// o executor registra Redacted() no lugar da solicitação.
type Redactor interface {
	Redacted() any
}

// HandlerExecutor valida a solicitação e só então executa a ação do handler,
// convertendo qualquer falha em Envelope.
type HandlerExecutor struct {
	validationService ValidationService
	logger            AppLogger
}

func NewHandlerExecutor(validationService ValidationService, logger AppLogger) *HandlerExecutor {
	return &HandlerExecutor{
		validationService: validationService,
		logger:            logger,
	}
}

// Execute valida request e executa action. Falhas de validação viram um Envelope com
// MessageValidationErrors; qualquer outro erro ou panic vira MessageUnexpectedError.
func Execute[Q any, R any](
	ctx context.Context,
	executor *HandlerExecutor,
	request Q,
	action func(ctx context.Context) (Envelope[R], error),
) (response Envelope[R]) {
	defer func() {
		if recovered := recover(); recovered != nil {
			response = unexpectedFailure[R](ctx, executor, request, fmt.Errorf("panic: %v", recovered))
		}
	}()

	if err := executor.validationService.Validate(ctx, request); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			LogWarn(ctx, executor.logger, "validation failed for request", map[string]interface{}{
				"request_type": fmt.Sprintf("%T", request),
				"request":      snapshot(request),
				"errors":       validationErr.Failures,
			})
			return Failure[R](MessageValidationErrors, validationErr.Failures...)
		}
		return unexpectedFailure[R](ctx, executor, request, err)
	}

	result, err := action(ctx)
	if err != nil {
		return unexpectedFailure[R](ctx, executor, request, err)
	}

	return result
}

func unexpectedFailure[R any](ctx context.Context, executor *HandlerExecutor, request any, err error) Envelope[R] {
	LogError(ctx, executor.logger, "an error occurred while processing request", err, map[string]interface{}{
		"request_type": fmt.Sprintf("%T", request),
		"request":      snapshot(request),
	})

	return Failure[R](MessageUnexpectedError, ValidationFailure{
		PropertyName: PropertyException,
		ErrorMessage: err.Error(),
	})
}

func snapshot(request any) any {
	if r, ok := request.(Redactor); ok {
		return r.Redacted()
	}
	return request
}
