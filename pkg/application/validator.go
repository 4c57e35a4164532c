package application

import "context"

// Validator inspeciona uma solicitação e reporta falhas por campo, sem alterá-la.
// Um erro retornado indica falha do próprio validador, não da solicitação.
type Validator[T any] interface {
	Validate(ctx context.Context, request T) ([]ValidationFailure, error)
}

type ValidatorFunc[T any] func(ctx context.Context, request T) ([]ValidationFailure, error)

func (f ValidatorFunc[T]) Validate(ctx context.Context, request T) ([]ValidationFailure, error) {
	return f(ctx, request)
}

// ValidationService executa todos os validadores registrados para o tipo exato da solicitação.
// Retorna *ValidationError quando algum validador reporta falhas.
type ValidationService interface {
	Validate(ctx context.Context, request any) error
}
