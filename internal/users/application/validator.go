package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/mateusmacedo/go-users/internal/users/domain"
	pkgApp "github.com/mateusmacedo/go-users/pkg/application"
)

var emailTakenFailure = pkgApp.ValidationFailure{
	PropertyName: "Email",
	ErrorMessage: "Email is already registered",
}

// NewUniqueEmailValidator rejeita o cadastro quando o email já pertence a outro usuário.
// Emails vazios são ignorados; a regra de obrigatoriedade fica com as tags.
func NewUniqueEmailValidator(repository domain.UserRepository) pkgApp.Validator[CreateUser] {
	return pkgApp.ValidatorFunc[CreateUser](func(ctx context.Context, command CreateUser) ([]pkgApp.ValidationFailure, error) {
		return uniqueEmail(ctx, repository, command.Email, "")
	})
}

// NewUniqueEmailOnUpdateValidator aceita o email atual do próprio usuário.
func NewUniqueEmailOnUpdateValidator(repository domain.UserRepository) pkgApp.Validator[UpdateUser] {
	return pkgApp.ValidatorFunc[UpdateUser](func(ctx context.Context, command UpdateUser) ([]pkgApp.ValidationFailure, error) {
		return uniqueEmail(ctx, repository, command.Email, command.UserID)
	})
}

func uniqueEmail(ctx context.Context, repository domain.UserRepository, email, owner string) ([]pkgApp.ValidationFailure, error) {
	if email == "" {
		return nil, nil
	}

	found, err := repository.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("find user by email: %w", err)
	case owner != "" && found.ID == owner:
		return nil, nil
	}

	return []pkgApp.ValidationFailure{emailTakenFailure}, nil
}
