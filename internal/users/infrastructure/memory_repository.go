package infrastructure

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mateusmacedo/go-users/internal/users/domain"
	"github.com/mateusmacedo/go-users/pkg/application"
)

// InMemoryUserRepository é uma implementação em memória do repositório de usuários.
type InMemoryUserRepository struct {
	mu     sync.RWMutex
	data   map[string]domain.User
	logger application.AppLogger
}

func NewInMemoryUserRepository(logger application.AppLogger) *InMemoryUserRepository {
	return &InMemoryUserRepository{
		data:   make(map[string]domain.User),
		logger: logger,
	}
}

func (r *InMemoryUserRepository) Save(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[user.ID]; exists || r.emailTaken(user) {
		application.LogInfo(ctx, r.logger, "user already exists", map[string]interface{}{
			"user_id": user.ID,
		})
		return domain.ErrUserAlreadyExists
	}

	r.data[user.ID] = user
	application.LogDebug(ctx, r.logger, "user saved", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *InMemoryUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.data[id]
	if !exists {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.data {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[user.ID]; !exists {
		return domain.ErrUserNotFound
	}
	if r.emailTaken(user) {
		application.LogInfo(ctx, r.logger, "email already in use", map[string]interface{}{
			"user_id": user.ID,
		})
		return domain.ErrUserAlreadyExists
	}

	r.data[user.ID] = user
	application.LogDebug(ctx, r.logger, "user updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// emailTaken deve ser chamado com o lock adquirido.
func (r *InMemoryUserRepository) emailTaken(user domain.User) bool {
	for id, other := range r.data {
		if id != user.ID && strings.EqualFold(other.Email, user.Email) {
			return true
		}
	}
	return false
}

func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[id]; !exists {
		return domain.ErrUserNotFound
	}

	delete(r.data, id)
	application.LogDebug(ctx, r.logger, "user deleted", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

// List devolve os usuários ordenados por ID.
func (r *InMemoryUserRepository) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.data))
	for _, user := range r.data {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
