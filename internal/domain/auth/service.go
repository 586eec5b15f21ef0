package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"fieldjobs/internal/domain"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

type tokenIssuer interface {
	GenerateToken(userID, role string) (string, error)
}

type Service struct {
	users *UserRepository
	jwt   tokenIssuer
	log   logrus.FieldLogger
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(users *UserRepository, jwt tokenIssuer, log logrus.FieldLogger) *Service {
	return &Service{users: users, jwt: jwt, log: log}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks the password and issues an access token. Five wrong
// passwords in a row lock the account for a while.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		locked, updateErr := s.users.RecordLoginFailure(ctx, user, maxFailedLoginAttempts, lockoutDuration)
		if updateErr != nil {
			return nil, updateErr
		}
		if locked {
			s.log.WithField("user_id", user.ID).Warn("account locked after repeated login failures")
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.ResetLoginFailures(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}

// CreateUser lets an admin add an installer or another admin.
func (s *Service) CreateUser(ctx context.Context, callerRole domain.UserRole, req CreateUserRequest) (*domain.User, error) {
	if callerRole != domain.RoleAdmin {
		return nil, ErrUnauthorized
	}
	role, err := domain.ParseUserRole(req.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created")
	return u, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, req.FullName, req.Phone); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *Service) ListInstallers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleInstaller)
}
