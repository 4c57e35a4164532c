package infrastructure

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mateusmacedo/go-users/internal/users/domain"
	"github.com/mateusmacedo/go-users/pkg/application"
)

type gormUserRepository struct {
	db     *gorm.DB
	logger application.AppLogger
}

// NewGormUserRepository abre a conexão com o PostgreSQL e migra a tabela users.
func NewGormUserRepository(dsn string, logger application.AppLogger) (domain.UserRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	return NewGormUserRepositoryFrom(db, logger)
}

// NewGormUserRepositoryFrom usa uma conexão já aberta, de qualquer dialeto.
// O dialeto precisa traduzir erros para que violações de unicidade virem ErrUserAlreadyExists.
func NewGormUserRepositoryFrom(db *gorm.DB, logger application.AppLogger) (domain.UserRepository, error) {
	db.Config.TranslateError = true
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return nil, err
	}

	return &gormUserRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *gormUserRepository) Save(ctx context.Context, user domain.User) error {
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		application.LogError(ctx, r.logger, "failed to save user", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	application.LogDebug(ctx, r.logger, "user saved", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *gormUserRepository) first(ctx context.Context, query string, arg string) (domain.User, error) {
	var user domain.User

	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		application.LogError(ctx, r.logger, "failed to find user", err, map[string]interface{}{
			"query": query,
		})
		return domain.User{}, err
	}
	return user, nil
}

func (r *gormUserRepository) Update(ctx context.Context, user domain.User) error {
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
	})
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return domain.ErrUserAlreadyExists
	}
	if result.Error != nil {
		application.LogError(ctx, r.logger, "failed to update user", result.Error, map[string]interface{}{
			"user_id": user.ID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	application.LogDebug(ctx, r.logger, "user updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if result.Error != nil {
		application.LogError(ctx, r.logger, "failed to delete user", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	application.LogDebug(ctx, r.logger, "user deleted", map[string]interface{}{
		"user_id": id,
	})
	return nil
}

func (r *gormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to list users", err, nil)
		return nil, err
	}
	return users, nil
}
