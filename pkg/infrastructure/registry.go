package infrastructure

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/mateusmacedo/go-users/pkg/application"
	"github.com/mateusmacedo/go-users/pkg/domain"
)

type handlerKey struct {
	request reflect.Type
	result  reflect.Type
}

type handlerFunc[R any] func(ctx context.Context, request domain.Request[R]) application.Envelope[R]

// HandlerRegistry associa (tipo da solicitação, tipo do resultado) a exatamente um handler.
// É preenchido na inicialização e selado por NewDispatcher; depois disso só é lido,
// sem sincronização.
type HandlerRegistry struct {
	commands map[handlerKey]any
	queries  map[handlerKey]any
	sealed   atomic.Bool
	logger   application.AppLogger
}

func NewHandlerRegistry(logger application.AppLogger) *HandlerRegistry {
	return &HandlerRegistry{
		commands: make(map[handlerKey]any),
		queries:  make(map[handlerKey]any),
		logger:   logger,
	}
}

// RegisterCommandHandler registra o handler do comando C. Um segundo registro para o
// mesmo par (C, R) substitui o anterior.
func RegisterCommandHandler[C domain.Request[R], R any](registry *HandlerRegistry, handler application.CommandHandler[C, R]) error {
	return register[C, R](registry, domain.KindCommand, handler.Handle)
}

// RegisterQueryHandler registra o handler da consulta Q.
func RegisterQueryHandler[Q domain.Request[R], R any](registry *HandlerRegistry, handler application.QueryHandler[Q, R]) error {
	return register[Q, R](registry, domain.KindQuery, handler.Handle)
}

func register[T domain.Request[R], R any](registry *HandlerRegistry, kind domain.Kind, handle func(context.Context, T) application.Envelope[R]) error {
	key := handlerKey{request: reflect.TypeFor[T](), result: reflect.TypeFor[R]()}

	if registry.sealed.Load() {
		return fmt.Errorf("register %s handler for %s: %w", kind, key.request, application.ErrRegistrySealed)
	}

	if requestKind := kindOf[T, R](key.request); requestKind != kind {
		return fmt.Errorf("register %s handler for %s (%s): %w", kind, key.request, requestKind, application.ErrUnsupportedRequestKind)
	}

	handlers := registry.section(kind)
	if _, exists := handlers[key]; exists {
		application.LogWarn(context.Background(), registry.logger, "handler replaced by a later registration", map[string]interface{}{
			"request_type": key.request.String(),
			"result_type":  key.result.String(),
		})
	}

	handlers[key] = handlerFunc[R](func(ctx context.Context, request domain.Request[R]) application.Envelope[R] {
		typed, ok := request.(T)
		if !ok {
			panic(fmt.Sprintf("handler for %s received %T", key.request, request))
		}
		return handle(ctx, typed)
	})

	application.LogDebug(context.Background(), registry.logger, "handler registered", map[string]interface{}{
		"kind":         kind.String(),
		"request_type": key.request.String(),
		"result_type":  key.result.String(),
	})
	return nil
}

// kindOf lê o Kind de T sem depender de uma instância; para ponteiros usa um valor novo do tipo apontado.
// Tipos interface não têm Kind fixo e são rejeitados.
func kindOf[T domain.Request[R], R any](requestType reflect.Type) domain.Kind {
	switch requestType.Kind() {
	case reflect.Interface:
		return domain.KindUnknown
	case reflect.Pointer:
		sample, ok := reflect.New(requestType.Elem()).Interface().(T)
		if !ok {
			return domain.KindUnknown
		}
		return sample.Kind()
	default:
		var zero T
		return zero.Kind()
	}
}

// Seal impede novos registros.
func (r *HandlerRegistry) Seal() {
	r.sealed.Store(true)
}

func (r *HandlerRegistry) section(kind domain.Kind) map[handlerKey]any {
	switch kind {
	case domain.KindCommand:
		return r.commands
	case domain.KindQuery:
		return r.queries
	default:
		return nil
	}
}

func lookup[R any](registry *HandlerRegistry, request domain.Request[R]) (handlerFunc[R], error) {
	kind := request.Kind()
	handlers := registry.section(kind)
	if handlers == nil {
		return nil, fmt.Errorf("%w: %T is neither a command nor a query", application.ErrUnsupportedRequestKind, request)
	}

	key := handlerKey{request: reflect.TypeOf(request), result: reflect.TypeFor[R]()}
	entry, found := handlers[key]
	if !found {
		return nil, fmt.Errorf("%w: %s %s returning %s", application.ErrHandlerNotFound, kind, key.request, key.result)
	}

	handler, ok := entry.(handlerFunc[R])
	if !ok {
		return nil, fmt.Errorf("%w: %s %s returning %s", application.ErrHandlerNotFound, kind, key.request, key.result)
	}
	return handler, nil
}
