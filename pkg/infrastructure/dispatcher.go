package infrastructure

import (
	"context"
	"fmt"

	"github.com/mateusmacedo/go-users/pkg/application"
	"github.com/mateusmacedo/go-users/pkg/domain"
)

// Dispatcher é o ponto de entrada único do pipeline de solicitações.
type Dispatcher struct {
	registry *HandlerRegistry
	logger   application.AppLogger
}

// NewDispatcher sela o registry; nenhum handler pode ser registrado depois disso.
func NewDispatcher(registry *HandlerRegistry, logger application.AppLogger) *Dispatcher {
	registry.Seal()
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

// Dispatch resolve o handler do tipo concreto de request e devolve o Envelope dele sem
// alterações. Nunca retorna erro nem propaga panic: toda falha vira um Envelope com
// um erro marcado como Dispatcher.
func Dispatch[R any](ctx context.Context, dispatcher *Dispatcher, request domain.Request[R]) (response application.Envelope[R]) {
	defer func() {
		if recovered := recover(); recovered != nil {
			response = dispatchFailure[R](ctx, dispatcher, request, fmt.Errorf("panic: %v", recovered))
		}
	}()

	if request == nil {
		return dispatchFailure[R](ctx, dispatcher, request, fmt.Errorf("%w: nil request", application.ErrUnsupportedRequestKind))
	}

	if err := ctx.Err(); err != nil {
		return dispatchFailure[R](ctx, dispatcher, request, err)
	}

	handler, err := lookup[R](dispatcher.registry, request)
	if err != nil {
		return dispatchFailure[R](ctx, dispatcher, request, err)
	}

	return handler(ctx, request)
}

func dispatchFailure[R any](ctx context.Context, dispatcher *Dispatcher, request any, err error) application.Envelope[R] {
	application.LogError(ctx, dispatcher.logger, "failed to dispatch request", err, map[string]interface{}{
		"request_type": fmt.Sprintf("%T", request),
	})

	return application.Failure[R](application.MessageDispatchError, application.ValidationFailure{
		PropertyName: application.PropertyDispatcher,
		ErrorMessage: err.Error(),
	})
}
