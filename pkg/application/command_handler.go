package application

import (
	"context"

	"github.com/mateusmacedo/go-users/pkg/domain"
)

// CommandHandler define a interface para manipuladores de comando.
type CommandHandler[C domain.Request[R], R any] interface {
	Handle(ctx context.Context, command C) Envelope[R]
}

// CommandHandlerFunc adapta uma função para CommandHandler.
type CommandHandlerFunc[C domain.Request[R], R any] func(ctx context.Context, command C) Envelope[R]

func (f CommandHandlerFunc[C, R]) Handle(ctx context.Context, command C) Envelope[R] {
	return f(ctx, command)
}
