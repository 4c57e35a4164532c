package users_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/mateusmacedo/go-users/internal/users"
	"github.com/mateusmacedo/go-users/internal/users/application"
	"github.com/mateusmacedo/go-users/internal/users/domain"
	"github.com/mateusmacedo/go-users/internal/users/infrastructure"
	pkgApp "github.com/mateusmacedo/go-users/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-users/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-users/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/go-users/pkg/infrastructure/zaplogger/adapter"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type eventRecorder struct {
	mu     sync.Mutex
	events []pkgDomain.Event[application.UserEvent]
}

func (r *eventRecorder) Handle(_ context.Context, event pkgDomain.Event[application.UserEvent]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, event := range r.events {
		names = append(names, event.EventName())
	}
	return names
}

// failingRepository simula uma falha de persistência ao salvar.
type failingRepository struct {
	*infrastructure.InMemoryUserRepository
	saveErr error
}

func (r *failingRepository) Save(context.Context, domain.User) error {
	return r.saveErr
}

type pipeline struct {
	dispatcher *pkgInfra.Dispatcher
	repository domain.UserRepository
	tokens     *infrastructure.JWTTokenIssuer
	events     *eventRecorder
	logs       *observer.ObservedLogs
	slice      *users.UsersSlice
}

func newPipeline(t *testing.T, repository domain.UserRepository) *pipeline {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zapAdapter.NewZapAppLoggerFrom(zap.New(core))

	if repository == nil {
		repository = infrastructure.NewInMemoryUserRepository(logger)
	}

	handlers := pkgInfra.NewHandlerRegistry(logger)
	validators := pkgInfra.NewValidatorRegistry()
	eventBus := pkgInfra.NewSimpleEventBus[pkgDomain.Event[application.UserEvent], application.UserEvent](logger)
	recorder := &eventRecorder{}
	for _, name := range application.EventNames {
		eventBus.RegisterHandler(name, recorder)
	}

	tokens := infrastructure.NewJWTTokenIssuer(infrastructure.TokenConfig{
		SecretKey: testSecret,
		Issuer:    "users-service",
		Audience:  "users-api",
		Expiry:    time.Hour,
	})

	slice, err := users.NewUsersSlice(users.Dependencies{
		Handlers:    handlers,
		Validators:  validators,
		Executor:    pkgApp.NewHandlerExecutor(pkgInfra.NewValidationService(validators, logger), logger),
		EventBus:    eventBus,
		Repository:  repository,
		Hasher:      infrastructure.NewBcryptHasher(bcrypt.MinCost),
		Tokens:      tokens,
		IDGenerator: pkgInfra.GenerateUUID,
		Clock:       func() time.Time { return fixedNow },
		Logger:      logger,
	})
	require.NoError(t, err)

	dispatcher := pkgInfra.NewDispatcher(handlers, logger)
	validators.Seal()

	return &pipeline{
		dispatcher: dispatcher,
		repository: repository,
		tokens:     tokens,
		events:     recorder,
		logs:       logs,
		slice:      slice,
	}
}

func (p *pipeline) register(t *testing.T, command application.CreateUser) domain.User {
	t.Helper()

	response := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, command)
	require.True(t, response.IsSuccess, "register failed: %+v", response)

	user, err := p.repository.FindByEmail(context.Background(), command.Email)
	require.NoError(t, err)
	return user
}

func validUser() application.CreateUser {
	return application.CreateUser{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "s3cret"}
}

func TestCreateUserWithEmptyFirstNameFailsValidation(t *testing.T) {
	p := newPipeline(t, nil)

	response := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, application.CreateUser{
		FirstName: "",
		LastName:  "Doe",
		Email:     "a@b.com",
	})

	assert.False(t, response.IsSuccess)
	assert.Equal(t, pkgApp.MessageValidationErrors, response.Message)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "FirstName", response.Errors[0].PropertyName)

	stored, err := p.repository.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, p.events.names())
}

func TestCreateUserSucceeds(t *testing.T) {
	p := newPipeline(t, nil)

	response := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, validUser())

	assert.Equal(t, pkgApp.Success(true, application.MessageUserRegistered), response)

	user, err := p.repository.FindByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret", user.Password)
	assert.Equal(t, []string{application.UserRegisteredEvent}, p.events.names())
}

func TestCreateUserRejectsRegisteredEmail(t *testing.T) {
	p := newPipeline(t, nil)
	p.register(t, validUser())

	response := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, validUser())

	assert.False(t, response.IsSuccess)
	assert.Equal(t, pkgApp.MessageValidationErrors, response.Message)
	assert.Equal(t, []pkgApp.ValidationFailure{{PropertyName: "Email", ErrorMessage: "Email is already registered"}}, response.Errors)
}

func TestCreateUserRejectsPasswordOverBcryptByteLimit(t *testing.T) {
	p := newPipeline(t, nil)
	command := validUser()
	command.Password = strings.Repeat("é", 40)

	response := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, command)

	assert.False(t, response.IsSuccess)
	assert.Equal(t, pkgApp.MessageValidationErrors, response.Message)
	assert.Equal(t, []pkgApp.ValidationFailure{{PropertyName: "Password", ErrorMessage: "Password must be at most 72 bytes long"}}, response.Errors)
	assert.Empty(t, p.events.names())
}

func TestCreateUserConflictOnSaveBecomesValidationError(t *testing.T) {
	repository := &failingRepository{
		InMemoryUserRepository: infrastructure.NewInMemoryUserRepository(pkgApp.NopLogger{}),
		saveErr:                domain.ErrUserAlreadyExists,
	}
	p := newPipeline(t, repository)

	response := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, validUser())

	assert.Equal(t, pkgApp.Failure[bool](pkgApp.MessageValidationErrors,
		pkgApp.ValidationFailure{PropertyName: "Email", ErrorMessage: "Email is already registered"}), response)
	assert.Empty(t, p.events.names())
}

func TestUpdateUserEmailMustStayUnique(t *testing.T) {
	p := newPipeline(t, nil)
	jane := p.register(t, validUser())
	bob := p.register(t, application.CreateUser{FirstName: "Bob", LastName: "Roe", Email: "bob@example.com", Password: "pw"})

	taken := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher,
		application.UpdateUser{UserID: bob.ID, FirstName: "Bob", LastName: "Roe", Email: "JANE@example.com"})

	assert.False(t, taken.IsSuccess)
	assert.Equal(t, pkgApp.MessageValidationErrors, taken.Message)
	assert.Equal(t, []pkgApp.ValidationFailure{{PropertyName: "Email", ErrorMessage: "Email is already registered"}}, taken.Errors)

	own := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher,
		application.UpdateUser{UserID: jane.ID, FirstName: "Janet", LastName: "Doe", Email: "jane@example.com"})
	assert.Equal(t, pkgApp.Success(true, application.MessageUserUpdated), own)

	listed := pkgInfra.Dispatch[application.UsersResponse](context.Background(), p.dispatcher, application.GetUsers{})
	require.True(t, listed.IsSuccess)
	emails := make([]string, 0, len(listed.Data.Users))
	for _, user := range listed.Data.Users {
		emails = append(emails, user.Email)
	}
	assert.ElementsMatch(t, []string{"jane@example.com", "bob@example.com"}, emails)
}

func TestGetUserNotFoundPassesThrough(t *testing.T) {
	p := newPipeline(t, nil)

	response := pkgInfra.Dispatch[application.UserResponse](context.Background(), p.dispatcher, application.GetUser{UserID: "missing"})

	assert.Equal(t, pkgApp.Failure[application.UserResponse](application.MessageUserNotFound), response)
	assert.Empty(t, response.Errors)
}

func TestPersistenceFailureBecomesUnexpectedError(t *testing.T) {
	repository := &failingRepository{
		InMemoryUserRepository: infrastructure.NewInMemoryUserRepository(pkgApp.NopLogger{}),
		saveErr:                errors.New("persistence timeout"),
	}
	p := newPipeline(t, repository)

	response := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, validUser())

	assert.False(t, response.IsSuccess)
	assert.Equal(t, pkgApp.MessageUnexpectedError, response.Message)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, pkgApp.PropertyException, response.Errors[0].PropertyName)
	assert.Contains(t, response.Errors[0].ErrorMessage, "persistence timeout")

	errorLogs := p.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.NotEmpty(t, errorLogs)
	assert.Contains(t, errorLogs[0].ContextMap()["error"], "persistence timeout")
	assert.Empty(t, p.events.names())
}

func TestQueriesAreIdempotent(t *testing.T) {
	p := newPipeline(t, nil)
	jane := p.register(t, validUser())
	p.register(t, application.CreateUser{FirstName: "John", LastName: "Roe", Email: "john@example.com", Password: "pw"})

	first := pkgInfra.Dispatch[application.UsersResponse](context.Background(), p.dispatcher, application.GetUsers{})
	second := pkgInfra.Dispatch[application.UsersResponse](context.Background(), p.dispatcher, application.GetUsers{})
	assert.True(t, first.IsSuccess)
	assert.Len(t, first.Data.Users, 2)
	assert.Equal(t, first, second)

	one := pkgInfra.Dispatch[application.UserResponse](context.Background(), p.dispatcher, application.GetUser{UserID: jane.ID})
	again := pkgInfra.Dispatch[application.UserResponse](context.Background(), p.dispatcher, application.GetUser{UserID: jane.ID})
	assert.Equal(t, pkgApp.Success(application.UserResponse{
		UserID:    jane.ID,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
	}, application.MessageUserRetrieved), one)
	assert.Equal(t, one, again)
}

func TestGetUsersWithoutUsersReturnsEmptyList(t *testing.T) {
	p := newPipeline(t, nil)

	response := pkgInfra.Dispatch[application.UsersResponse](context.Background(), p.dispatcher, application.GetUsers{})

	assert.True(t, response.IsSuccess)
	assert.NotNil(t, response.Data.Users)
	assert.Empty(t, response.Data.Users)
}

func TestUpdateUser(t *testing.T) {
	p := newPipeline(t, nil)
	user := p.register(t, validUser())

	cases := []struct {
		desc    string
		command application.UpdateUser
		message string
		success bool
		errors  []pkgApp.ValidationFailure
	}{
		{
			desc:    "unknown user",
			command: application.UpdateUser{UserID: "missing", FirstName: "Jane", LastName: "Doe", Email: "ghost@example.com"},
			message: application.MessageUserNotFound,
		},
		{
			desc:    "invalid email",
			command: application.UpdateUser{UserID: user.ID, FirstName: "Jane", LastName: "Doe", Email: "jane"},
			message: pkgApp.MessageValidationErrors,
			errors:  []pkgApp.ValidationFailure{{PropertyName: "Email", ErrorMessage: "Email must be a valid address"}},
		},
		{
			desc:    "existing user",
			command: application.UpdateUser{UserID: user.ID, FirstName: "Janet", LastName: "Smith", Email: "janet@example.com"},
			message: application.MessageUserUpdated,
			success: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			response := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, tc.command)

			assert.Equal(t, tc.success, response.IsSuccess)
			assert.Equal(t, tc.message, response.Message)
			assert.Equal(t, tc.errors, response.Errors)
		})
	}

	updated, err := p.repository.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "janet@example.com", updated.Email)
	assert.Equal(t, user.Password, updated.Password)
	assert.Equal(t, []string{application.UserRegisteredEvent, application.UserUpdatedEvent}, p.events.names())
}

func TestDeleteUser(t *testing.T) {
	p := newPipeline(t, nil)
	user := p.register(t, validUser())

	response := pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, application.DeleteUser{UserID: user.ID})
	assert.Equal(t, pkgApp.Success(true, application.MessageUserDeleted), response)

	response = pkgInfra.Dispatch[bool](context.Background(), p.dispatcher, application.DeleteUser{UserID: user.ID})
	assert.Equal(t, pkgApp.Failure[bool](application.MessageUserNotFound), response)

	_, err := p.repository.FindByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, []string{application.UserRegisteredEvent, application.UserDeletedEvent}, p.events.names())
}

func TestLogin(t *testing.T) {
	p := newPipeline(t, nil)
	user := p.register(t, validUser())

	cases := []struct {
		desc    string
		query   application.Login
		message string
		success bool
	}{
		{desc: "unknown email", query: application.Login{Email: "nobody@example.com", Password: "s3cret"}, message: application.MessageUserNotExists},
		{desc: "wrong password", query: application.Login{Email: "jane@example.com", Password: "wrong"}, message: application.MessageIncorrectPasswd},
		{desc: "missing password", query: application.Login{Email: "jane@example.com"}, message: pkgApp.MessageValidationErrors},
		{desc: "valid credentials", query: application.Login{Email: "jane@example.com", Password: "s3cret"}, message: application.MessageTokenGenerated, success: true},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			response := pkgInfra.Dispatch[application.AuthenticationResponse](context.Background(), p.dispatcher, tc.query)

			assert.Equal(t, tc.success, response.IsSuccess)
			assert.Equal(t, tc.message, response.Message)
			if !tc.success {
				assert.Empty(t, response.Data.Token)
				return
			}

			assert.Equal(t, "jane@example.com", response.Data.Email)
			assert.Equal(t, "Jane", response.Data.FirstName)
			assert.Equal(t, "Doe", response.Data.LastName)

			claims, err := p.tokens.Parse(response.Data.Token)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.Subject)
		})
	}
}

func TestPasswordIsNeverLogged(t *testing.T) {
	p := newPipeline(t, nil)
	p.register(t, validUser())

	pkgInfra.Dispatch[application.AuthenticationResponse](context.Background(), p.dispatcher, application.Login{Email: "bad", Password: "s3cret"})

	warnings := p.logs.FilterMessage("validation failed for request").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, application.Login{Email: "bad", Password: "***"}, warnings[0].ContextMap()["request"])
}
