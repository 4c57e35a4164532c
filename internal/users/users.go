package users

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-users/internal/users/application"
	"github.com/mateusmacedo/go-users/internal/users/domain"
	"github.com/mateusmacedo/go-users/internal/users/infrastructure"
	pkgApp "github.com/mateusmacedo/go-users/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-users/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-users/pkg/infrastructure"
	validatorAdapter "github.com/mateusmacedo/go-users/pkg/infrastructure/validator/adapter"
)

type Dependencies struct {
	Handlers    *pkgInfra.HandlerRegistry
	Validators  *pkgInfra.ValidatorRegistry
	Executor    *pkgApp.HandlerExecutor
	EventBus    application.UserEventBus
	Repository  domain.UserRepository
	Hasher      domain.PasswordHasher
	Tokens      domain.TokenIssuer
	IDGenerator pkgDomain.IDGenerator[string]
	Clock       application.Clock
	Logger      pkgApp.AppLogger
}

type UsersSlice struct {
	logger pkgApp.AppLogger
}

// NewUsersSlice registra handlers, validadores e o manipulador de auditoria de eventos.
// Deve ser chamado antes de NewDispatcher selar o registry.
func NewUsersSlice(deps Dependencies) (*UsersSlice, error) {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	registrations := []func() error{
		func() error {
			return pkgInfra.RegisterCommandHandler(deps.Handlers, application.NewCreateUserHandler(
				deps.Executor, deps.Repository, deps.Hasher, deps.EventBus, deps.IDGenerator, deps.Clock, deps.Logger))
		},
		func() error {
			return pkgInfra.RegisterCommandHandler(deps.Handlers, application.NewUpdateUserHandler(
				deps.Executor, deps.Repository, deps.EventBus, deps.Clock, deps.Logger))
		},
		func() error {
			return pkgInfra.RegisterCommandHandler(deps.Handlers, application.NewDeleteUserHandler(
				deps.Executor, deps.Repository, deps.EventBus, deps.Clock, deps.Logger))
		},
		func() error {
			return pkgInfra.RegisterQueryHandler(deps.Handlers, application.NewGetUserHandler(deps.Executor, deps.Repository))
		},
		func() error {
			return pkgInfra.RegisterQueryHandler(deps.Handlers, application.NewGetUsersHandler(deps.Executor, deps.Repository))
		},
		func() error {
			return pkgInfra.RegisterQueryHandler(deps.Handlers, application.NewLoginHandler(
				deps.Executor, deps.Repository, deps.Hasher, deps.Tokens, deps.Logger))
		},
		func() error {
			return pkgInfra.RegisterValidators(deps.Validators,
				validatorAdapter.NewStructValidator[application.CreateUser](),
				application.NewUniqueEmailValidator(deps.Repository),
			)
		},
		func() error {
			return pkgInfra.RegisterValidators(deps.Validators,
				validatorAdapter.NewStructValidator[application.UpdateUser](),
				application.NewUniqueEmailOnUpdateValidator(deps.Repository),
			)
		},
		func() error {
			return pkgInfra.RegisterValidators(deps.Validators, validatorAdapter.NewStructValidator[application.Login]())
		},
	}

	for _, register := range registrations {
		if err := register(); err != nil {
			return nil, fmt.Errorf("users slice: %w", err)
		}
	}

	auditHandler := application.NewUserEventAuditHandler(deps.Logger)
	for _, eventName := range application.EventNames {
		deps.EventBus.RegisterHandler(eventName, auditHandler)
	}

	return &UsersSlice{logger: deps.Logger}, nil
}

// RegisterRoutes expõe as rotas HTTP; middlewares protegem apenas o CRUD de usuários.
func (s *UsersSlice) RegisterRoutes(router chi.Router, dispatcher *pkgInfra.Dispatcher, middlewares ...func(http.Handler) http.Handler) {
	infrastructure.NewUserHTTPHandler(dispatcher, s.logger, middlewares...).RegisterRoutes(router)
}
