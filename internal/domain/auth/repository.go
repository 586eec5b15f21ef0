package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"fieldjobs/internal/database"
	"fieldjobs/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	err := r.db.WithContext(ctx).Create(u).Error
	if database.IsUniqueViolation(err) {
		return ErrEmailAlreadyExists
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", normalizeEmail(email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	users := []domain.User{}
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("full_name ASC, email ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, fullName, phone *string) error {
	updates := map[string]any{"updated_at": time.Now()}
	if fullName != nil {
		updates["full_name"] = strings.TrimSpace(*fullName)
	}
	if phone != nil {
		updates["phone"] = strings.TrimSpace(*phone)
	}
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error
}

// RecordLoginFailure bumps the failure counter and locks the account
// once it reaches max.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, u *domain.User, max int, lockFor time.Duration) (bool, error) {
	attempts := u.FailedLoginAttempts + 1
	updates := map[string]any{"failed_login_attempts": attempts}
	locked := attempts >= max
	if locked {
		updates["locked_until"] = time.Now().Add(lockFor)
		updates["failed_login_attempts"] = 0
	}
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", u.ID).Updates(updates).Error
	return locked, err
}

func (r *UserRepository) ResetLoginFailures(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
