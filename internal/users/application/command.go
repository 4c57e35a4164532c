package application

import (
	pkgDomain "github.com/mateusmacedo/go-users/pkg/domain"
)

const redactedSecret = "***"

// CreateUser registra um novo usuário; a senha chega em texto puro e é guardada como hash.
type CreateUser struct {
	pkgDomain.Command[bool]
	FirstName string `validate:"required" msg:"First name must not be empty"`
	LastName  string `validate:"required" msg:"Last name must not be empty"`
	Email     string `validate:"required,email" msg:"Email must be a valid address"`
	Password  string `validate:"maxbytes=72" msg:"Password must be at most 72 bytes long"`
}

func (c CreateUser) Redacted() any {
	c.Password = redactedSecret
	return c
}

type UpdateUser struct {
	pkgDomain.Command[bool]
	UserID    string
	FirstName string `validate:"required" msg:"First name must not be empty"`
	LastName  string `validate:"required" msg:"Last name must not be empty"`
	Email     string `validate:"required,email" msg:"Email must be a valid address"`
}

type DeleteUser struct {
	pkgDomain.Command[bool]
	UserID string
}
