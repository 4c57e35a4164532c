package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mateusmacedo/go-users/internal/users/domain"
	pkgApp "github.com/mateusmacedo/go-users/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-users/pkg/domain"
)

const (
	MessageUserRegistered  = "User registered successfully"
	MessageUserUpdated     = "User updated successfully"
	MessageUserDeleted     = "User deleted successfully"
	MessageUserRetrieved   = "User retrieved successfully"
	MessageUsersRetrieved  = "Users retrieved successfully"
	MessageTokenGenerated  = "Token generated successfully"
	MessageUserNotFound    = "User not found"
	MessageUserNotExists   = "User does not exist"
	MessageIncorrectPasswd = "Incorrect password"
)

// Clock permite fixar o horário dos eventos em testes.
type Clock func() time.Time

type createUserHandler struct {
	executor    *pkgApp.HandlerExecutor
	repository  domain.UserRepository
	hasher      domain.PasswordHasher
	eventBus    UserEventBus
	idGenerator pkgDomain.IDGenerator[string]
	clock       Clock
	logger      pkgApp.AppLogger
}

func NewCreateUserHandler(
	executor *pkgApp.HandlerExecutor,
	repository domain.UserRepository,
	hasher domain.PasswordHasher,
	eventBus UserEventBus,
	idGenerator pkgDomain.IDGenerator[string],
	clock Clock,
	logger pkgApp.AppLogger,
) pkgApp.CommandHandler[CreateUser, bool] {
	return &createUserHandler{
		executor:    executor,
		repository:  repository,
		hasher:      hasher,
		eventBus:    eventBus,
		idGenerator: idGenerator,
		clock:       clock,
		logger:      logger,
	}
}

func (h *createUserHandler) Handle(ctx context.Context, command CreateUser) pkgApp.Envelope[bool] {
	return pkgApp.Execute(ctx, h.executor, command, func(ctx context.Context) (pkgApp.Envelope[bool], error) {
		if err := ctx.Err(); err != nil {
			return pkgApp.Envelope[bool]{}, err
		}

		hash, err := h.hasher.Hash(command.Password)
		if err != nil {
			return pkgApp.Envelope[bool]{}, fmt.Errorf("hash password: %w", err)
		}

		user := domain.User{
			ID:        h.idGenerator(),
			FirstName: command.FirstName,
			LastName:  command.LastName,
			Email:     normalizeEmail(command.Email),
			Password:  hash,
		}
		if err := h.repository.Save(ctx, user); err != nil {
			if errors.Is(err, domain.ErrUserAlreadyExists) {
				return pkgApp.Failure[bool](pkgApp.MessageValidationErrors, emailTakenFailure), nil
			}
			return pkgApp.Envelope[bool]{}, fmt.Errorf("save user: %w", err)
		}

		publish(ctx, h.eventBus, h.logger, NewUserEvent(UserRegisteredEvent, user.ID, user.Email, h.clock()))

		pkgApp.LogInfo(ctx, h.logger, "user registered", map[string]interface{}{"user_id": user.ID})
		return pkgApp.Success(true, MessageUserRegistered), nil
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type updateUserHandler struct {
	executor   *pkgApp.HandlerExecutor
	repository domain.UserRepository
	eventBus   UserEventBus
	clock      Clock
	logger     pkgApp.AppLogger
}

func NewUpdateUserHandler(executor *pkgApp.HandlerExecutor, repository domain.UserRepository, eventBus UserEventBus, clock Clock, logger pkgApp.AppLogger) pkgApp.CommandHandler[UpdateUser, bool] {
	return &updateUserHandler{
		executor:   executor,
		repository: repository,
		eventBus:   eventBus,
		clock:      clock,
		logger:     logger,
	}
}

func (h *updateUserHandler) Handle(ctx context.Context, command UpdateUser) pkgApp.Envelope[bool] {
	return pkgApp.Execute(ctx, h.executor, command, func(ctx context.Context) (pkgApp.Envelope[bool], error) {
		if err := ctx.Err(); err != nil {
			return pkgApp.Envelope[bool]{}, err
		}

		user, err := h.repository.FindByID(ctx, command.UserID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return pkgApp.Failure[bool](MessageUserNotFound), nil
		}
		if err != nil {
			return pkgApp.Envelope[bool]{}, fmt.Errorf("find user: %w", err)
		}

		user.FirstName = command.FirstName
		user.LastName = command.LastName
		user.Email = normalizeEmail(command.Email)

		if err := h.repository.Update(ctx, user); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return pkgApp.Failure[bool](MessageUserNotFound), nil
			}
			if errors.Is(err, domain.ErrUserAlreadyExists) {
				return pkgApp.Failure[bool](pkgApp.MessageValidationErrors, emailTakenFailure), nil
			}
			return pkgApp.Envelope[bool]{}, fmt.Errorf("update user: %w", err)
		}

		publish(ctx, h.eventBus, h.logger, NewUserEvent(UserUpdatedEvent, user.ID, user.Email, h.clock()))

		pkgApp.LogInfo(ctx, h.logger, "user updated", map[string]interface{}{"user_id": user.ID})
		return pkgApp.Success(true, MessageUserUpdated), nil
	})
}

type deleteUserHandler struct {
	executor   *pkgApp.HandlerExecutor
	repository domain.UserRepository
	eventBus   UserEventBus
	clock      Clock
	logger     pkgApp.AppLogger
}

func NewDeleteUserHandler(executor *pkgApp.HandlerExecutor, repository domain.UserRepository, eventBus UserEventBus, clock Clock, logger pkgApp.AppLogger) pkgApp.CommandHandler[DeleteUser, bool] {
	return &deleteUserHandler{
		executor:   executor,
		repository: repository,
		eventBus:   eventBus,
		clock:      clock,
		logger:     logger,
	}
}

func (h *deleteUserHandler) Handle(ctx context.Context, command DeleteUser) pkgApp.Envelope[bool] {
	return pkgApp.Execute(ctx, h.executor, command, func(ctx context.Context) (pkgApp.Envelope[bool], error) {
		if err := ctx.Err(); err != nil {
			return pkgApp.Envelope[bool]{}, err
		}

		user, err := h.repository.FindByID(ctx, command.UserID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return pkgApp.Failure[bool](MessageUserNotFound), nil
		}
		if err != nil {
			return pkgApp.Envelope[bool]{}, fmt.Errorf("find user: %w", err)
		}

		if err := h.repository.Delete(ctx, user.ID); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return pkgApp.Failure[bool](MessageUserNotFound), nil
			}
			return pkgApp.Envelope[bool]{}, fmt.Errorf("delete user: %w", err)
		}

		publish(ctx, h.eventBus, h.logger, NewUserEvent(UserDeletedEvent, user.ID, user.Email, h.clock()))

		pkgApp.LogInfo(ctx, h.logger, "user deleted", map[string]interface{}{"user_id": user.ID})
		return pkgApp.Success(true, MessageUserDeleted), nil
	})
}

type getUserHandler struct {
	executor   *pkgApp.HandlerExecutor
	repository domain.UserRepository
}

func NewGetUserHandler(executor *pkgApp.HandlerExecutor, repository domain.UserRepository) pkgApp.QueryHandler[GetUser, UserResponse] {
	return &getUserHandler{
		executor:   executor,
		repository: repository,
	}
}

func (h *getUserHandler) Handle(ctx context.Context, query GetUser) pkgApp.Envelope[UserResponse] {
	return pkgApp.Execute(ctx, h.executor, query, func(ctx context.Context) (pkgApp.Envelope[UserResponse], error) {
		if err := ctx.Err(); err != nil {
			return pkgApp.Envelope[UserResponse]{}, err
		}

		user, err := h.repository.FindByID(ctx, query.UserID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return pkgApp.Failure[UserResponse](MessageUserNotFound), nil
		}
		if err != nil {
			return pkgApp.Envelope[UserResponse]{}, fmt.Errorf("find user: %w", err)
		}

		return pkgApp.Success(toUserResponse(user), MessageUserRetrieved), nil
	})
}

type getUsersHandler struct {
	executor   *pkgApp.HandlerExecutor
	repository domain.UserRepository
}

func NewGetUsersHandler(executor *pkgApp.HandlerExecutor, repository domain.UserRepository) pkgApp.QueryHandler[GetUsers, UsersResponse] {
	return &getUsersHandler{
		executor:   executor,
		repository: repository,
	}
}

func (h *getUsersHandler) Handle(ctx context.Context, query GetUsers) pkgApp.Envelope[UsersResponse] {
	return pkgApp.Execute(ctx, h.executor, query, func(ctx context.Context) (pkgApp.Envelope[UsersResponse], error) {
		if err := ctx.Err(); err != nil {
			return pkgApp.Envelope[UsersResponse]{}, err
		}

		users, err := h.repository.List(ctx)
		if err != nil {
			return pkgApp.Envelope[UsersResponse]{}, fmt.Errorf("list users: %w", err)
		}

		response := UsersResponse{Users: make([]UserResponse, 0, len(users))}
		for _, user := range users {
			response.Users = append(response.Users, toUserResponse(user))
		}
		return pkgApp.Success(response, MessageUsersRetrieved), nil
	})
}

type loginHandler struct {
	executor   *pkgApp.HandlerExecutor
	repository domain.UserRepository
	hasher     domain.PasswordHasher
	tokens     domain.TokenIssuer
	logger     pkgApp.AppLogger
}

func NewLoginHandler(executor *pkgApp.HandlerExecutor, repository domain.UserRepository, hasher domain.PasswordHasher, tokens domain.TokenIssuer, logger pkgApp.AppLogger) pkgApp.QueryHandler[Login, AuthenticationResponse] {
	return &loginHandler{
		executor:   executor,
		repository: repository,
		hasher:     hasher,
		tokens:     tokens,
		logger:     logger,
	}
}

func (h *loginHandler) Handle(ctx context.Context, query Login) pkgApp.Envelope[AuthenticationResponse] {
	return pkgApp.Execute(ctx, h.executor, query, func(ctx context.Context) (pkgApp.Envelope[AuthenticationResponse], error) {
		if err := ctx.Err(); err != nil {
			return pkgApp.Envelope[AuthenticationResponse]{}, err
		}

		user, err := h.repository.FindByEmail(ctx, query.Email)
		if errors.Is(err, domain.ErrUserNotFound) {
			return pkgApp.Failure[AuthenticationResponse](MessageUserNotExists), nil
		}
		if err != nil {
			return pkgApp.Envelope[AuthenticationResponse]{}, fmt.Errorf("find user by email: %w", err)
		}

		matches, err := h.hasher.Compare(user.Password, query.Password)
		if err != nil {
			return pkgApp.Envelope[AuthenticationResponse]{}, fmt.Errorf("compare password: %w", err)
		}
		if !matches {
			pkgApp.LogWarn(ctx, h.logger, "login with incorrect password", map[string]interface{}{"user_id": user.ID})
			return pkgApp.Failure[AuthenticationResponse](MessageIncorrectPasswd), nil
		}

		token, err := h.tokens.Issue(user)
		if err != nil {
			return pkgApp.Envelope[AuthenticationResponse]{}, fmt.Errorf("issue token: %w", err)
		}

		return pkgApp.Success(AuthenticationResponse{
			Token:     token,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		}, MessageTokenGenerated), nil
	})
}

// Falha ao publicar não altera o resultado do comando.
func publish(ctx context.Context, eventBus UserEventBus, logger pkgApp.AppLogger, event pkgDomain.Event[UserEvent]) {
	if err := eventBus.Publish(ctx, event); err != nil {
		pkgApp.LogError(ctx, logger, "failed to publish event", err, map[string]interface{}{
			"event_name": event.EventName(),
		})
	}
}

type userEventAuditHandler struct {
	logger pkgApp.AppLogger
}

// NewUserEventAuditHandler registra no log cada evento de usuário recebido.
func NewUserEventAuditHandler(logger pkgApp.AppLogger) pkgApp.EventHandler[pkgDomain.Event[UserEvent], UserEvent] {
	return &userEventAuditHandler{logger: logger}
}

func (h *userEventAuditHandler) Handle(ctx context.Context, event pkgDomain.Event[UserEvent]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context canceled", ctx.Err(), nil)
		return ctx.Err()
	}

	payload := event.Payload()
	pkgApp.LogInfo(ctx, h.logger, "user event received", map[string]interface{}{
		"event_name":  event.EventName(),
		"user_id":     payload.UserID,
		"email":       payload.Email,
		"occurred_at": payload.OccurredAt,
	})
	return nil
}
