package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-users/internal/users/application"
	pkgApp "github.com/mateusmacedo/go-users/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-users/pkg/infrastructure"
)

const (
	MessageInvalidBody  = "Invalid request body"
	MessageUnauthorized = "Unauthorized"
)

type claimsContextKey struct{}

type TokenParser interface {
	Parse(token string) (*UserClaims, error)
}

type UserHTTPHandler struct {
	dispatcher  *pkgInfra.Dispatcher
	middlewares []func(http.Handler) http.Handler
	logger      pkgApp.AppLogger
}

// NewUserHTTPHandler aplica middlewares apenas às rotas de CRUD de usuários.
func NewUserHTTPHandler(dispatcher *pkgInfra.Dispatcher, logger pkgApp.AppLogger, middlewares ...func(http.Handler) http.Handler) *UserHTTPHandler {
	return &UserHTTPHandler{
		dispatcher:  dispatcher,
		middlewares: middlewares,
		logger:      logger,
	}
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHTTPHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequest
	if !h.decode(w, r, &body) {
		return
	}

	response := pkgInfra.Dispatch[bool](r.Context(), h.dispatcher, application.CreateUser{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Password:  body.Password,
	})
	h.writeEnvelope(w, r, statusFor(response.IsSuccess, http.StatusBadRequest), response)
}

func (h *UserHTTPHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if !h.decode(w, r, &body) {
		return
	}

	response := pkgInfra.Dispatch[application.AuthenticationResponse](r.Context(), h.dispatcher, application.Login{
		Email:    body.Email,
		Password: body.Password,
	})
	h.writeEnvelope(w, r, statusFor(response.IsSuccess, http.StatusUnauthorized), response)
}

func (h *UserHTTPHandler) HandleGetUsers(w http.ResponseWriter, r *http.Request) {
	response := pkgInfra.Dispatch[application.UsersResponse](r.Context(), h.dispatcher, application.GetUsers{})
	h.writeEnvelope(w, r, statusFor(response.IsSuccess, http.StatusBadRequest), response)
}

func (h *UserHTTPHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	response := pkgInfra.Dispatch[application.UserResponse](r.Context(), h.dispatcher, application.GetUser{
		UserID: chi.URLParam(r, "userID"),
	})
	h.writeEnvelope(w, r, statusFor(response.IsSuccess, http.StatusNotFound), response)
}

func (h *UserHTTPHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var body UpdateUserRequest
	if !h.decode(w, r, &body) {
		return
	}

	response := pkgInfra.Dispatch[bool](r.Context(), h.dispatcher, application.UpdateUser{
		UserID:    chi.URLParam(r, "userID"),
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
	})
	h.writeEnvelope(w, r, statusFor(response.IsSuccess, http.StatusBadRequest), response)
}

func (h *UserHTTPHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	response := pkgInfra.Dispatch[bool](r.Context(), h.dispatcher, application.DeleteUser{
		UserID: chi.URLParam(r, "userID"),
	})
	h.writeEnvelope(w, r, statusFor(response.IsSuccess, http.StatusNotFound), response)
}

func (h *UserHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Post("/api/users/register", h.HandleRegister)
	router.Post("/api/auth/login", h.HandleLogin)

	router.Group(func(r chi.Router) {
		r.Use(h.middlewares...)
		r.Get("/api/users", h.HandleGetUsers)
		r.Get("/api/users/{userID}", h.HandleGetUser)
		r.Put("/api/users/{userID}", h.HandleUpdateUser)
		r.Delete("/api/users/{userID}", h.HandleDeleteUser)
	})
}

func (h *UserHTTPHandler) decode(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		h.writeEnvelope(w, r, http.StatusBadRequest, pkgApp.Failure[any](MessageInvalidBody, pkgApp.ValidationFailure{
			PropertyName: "Body",
			ErrorMessage: err.Error(),
		}))
		return false
	}
	return true
}

func (h *UserHTTPHandler) writeEnvelope(w http.ResponseWriter, r *http.Request, statusCode int, envelope interface{}) {
	writeJSON(r.Context(), w, h.logger, statusCode, envelope)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, logger pkgApp.AppLogger, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		pkgApp.LogError(ctx, logger, "failed to encode response", err, nil)
	}
}

func statusFor(success bool, failureStatus int) int {
	if success {
		return http.StatusOK
	}
	return failureStatus
}

// Authenticate exige um bearer token válido e guarda as claims no contexto da requisição.
func Authenticate(parser TokenParser, logger pkgApp.AppLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				unauthorized(w, r, logger, "missing bearer token")
				return
			}

			claims, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				pkgApp.LogWarn(r.Context(), logger, "rejected bearer token", map[string]interface{}{
					"error": err.Error(),
				})
				unauthorized(w, r, logger, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey{}, claims)))
		})
	}
}

// ClaimsFromContext devolve as claims de uma requisição autenticada.
func ClaimsFromContext(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*UserClaims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, logger pkgApp.AppLogger, detail string) {
	writeJSON(r.Context(), w, logger, http.StatusUnauthorized, pkgApp.Failure[any](MessageUnauthorized, pkgApp.ValidationFailure{
		PropertyName: "Authorization",
		ErrorMessage: detail,
	}))
}
