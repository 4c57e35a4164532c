package application

import (
	"context"

	"github.com/mateusmacedo/go-users/pkg/domain"
)

// QueryHandler define a interface para manipuladores de consulta.
type QueryHandler[Q domain.Request[R], R any] interface {
	Handle(ctx context.Context, query Q) Envelope[R]
}

type QueryHandlerFunc[Q domain.Request[R], R any] func(ctx context.Context, query Q) Envelope[R]

func (f QueryHandlerFunc[Q, R]) Handle(ctx context.Context, query Q) Envelope[R] {
	return f(ctx, query)
}
