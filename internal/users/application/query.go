package application

import (
	pkgDomain "github.com/mateusmacedo/go-users/pkg/domain"
)

type GetUser struct {
	pkgDomain.Query[UserResponse]
	UserID string
}

type GetUsers struct {
	pkgDomain.Query[UsersResponse]
}

// Login autentica por email e senha e produz um token.
type Login struct {
	pkgDomain.Query[AuthenticationResponse]
	Email    string `validate:"required,email" msg:"Email must be a valid address"`
	Password string `validate:"required" msg:"Password must not be empty"`
}

func (q Login) Redacted() any {
	q.Password = redactedSecret
	return q
}
