package infrastructure

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mateusmacedo/go-users/pkg/application"
)

type validatorFunc func(ctx context.Context, request any) ([]application.ValidationFailure, error)

// ValidatorRegistry guarda, por tipo de solicitação, os validadores na ordem de registro.
type ValidatorRegistry struct {
	validators map[reflect.Type][]validatorFunc
	sealed     atomic.Bool
}

func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{
		validators: make(map[reflect.Type][]validatorFunc),
	}
}

// RegisterValidators acrescenta validadores para o tipo exato T.
func RegisterValidators[T any](registry *ValidatorRegistry, validators ...application.Validator[T]) error {
	requestType := reflect.TypeFor[T]()
	if registry.sealed.Load() {
		return fmt.Errorf("register validators for %s: %w", requestType, application.ErrRegistrySealed)
	}

	for _, validator := range validators {
		registry.validators[requestType] = append(registry.validators[requestType], func(ctx context.Context, request any) ([]application.ValidationFailure, error) {
			typed, ok := request.(T)
			if !ok {
				return nil, fmt.Errorf("validator for %s received %T", requestType, request)
			}
			return validator.Validate(ctx, typed)
		})
	}
	return nil
}

func (r *ValidatorRegistry) Seal() {
	r.sealed.Store(true)
}

func (r *ValidatorRegistry) lookup(requestType reflect.Type) []validatorFunc {
	return r.validators[requestType]
}

type validationService struct {
	registry *ValidatorRegistry
	logger   application.AppLogger
}

func NewValidationService(registry *ValidatorRegistry, logger application.AppLogger) application.ValidationService {
	return &validationService{
		registry: registry,
		logger:   logger,
	}
}

// Validate executa os validadores em paralelo e combina as falhas na ordem de registro.
func (s *validationService) Validate(ctx context.Context, request any) error {
	validators := s.registry.lookup(reflect.TypeOf(request))
	if len(validators) == 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	results := make([][]application.ValidationFailure, len(validators))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, validate := range validators {
		group.Go(func() (err error) {
			defer func() {
				if recovered := recover(); recovered != nil {
					err = fmt.Errorf("validator panic: %v", recovered)
				}
			}()

			failures, err := validate(groupCtx, request)
			if err != nil {
				return err
			}
			results[i] = failures
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("validate %T: %w", request, err)
	}

	var failures []application.ValidationFailure
	for _, result := range results {
		failures = append(failures, result...)
	}

	if len(failures) > 0 {
		application.LogDebug(ctx, s.logger, "request failed validation", map[string]interface{}{
			"request_type": fmt.Sprintf("%T", request),
			"failures":     len(failures),
		})
		return application.NewValidationError(failures)
	}

	return nil
}
