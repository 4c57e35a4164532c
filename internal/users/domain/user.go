package domain

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists indica ID ou email já usados por outro usuário.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// User é o registro persistido; Password guarda apenas o hash.
type User struct {
	ID        string `json:"userId" gorm:"primaryKey;size:36"`
	FirstName string `json:"firstName" gorm:"size:25;not null"`
	LastName  string `json:"lastName" gorm:"size:25;not null"`
	Email     string `json:"email" gorm:"size:100;not null;uniqueIndex"`
	Password  string `json:"-" gorm:"not null"`
}

// UserRepository retorna ErrUserNotFound quando o usuário não existe e
// ErrUserAlreadyExists quando Save ou Update violam a unicidade de ID ou email.
type UserRepository interface {
	Save(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare retorna false, sem erro, quando a senha não confere.
	Compare(hash, password string) (bool, error)
}

type TokenIssuer interface {
	Issue(user User) (string, error)
}
