package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultation-bot/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	// Студенты не проходят модерацию, их нельзя деактивировать
	ErrCannotDeactivateStudent = errors.New("students cannot be deactivated")
)

const tokenTTL = 24 * time.Hour

// AdminClaims - полезная нагрузка JWT административной панели
type AdminClaims struct {
	Login string `json:"login"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AdminService обслуживает административный HTTP API:
// аутентификация по логину и паролю, модерация пользователей бота.
type AdminService struct {
	admins        AdminStore
	users         UserStore
	notifications *NotificationService
	jwtSecret     []byte
	logger        *zap.Logger
}

func NewAdminService(
	admins AdminStore,
	users UserStore,
	notifications *NotificationService,
	jwtSecret string,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		admins:        admins,
		users:         users,
		notifications: notifications,
		jwtSecret:     []byte(jwtSecret),
		logger:        logger,
	}
}

// Login проверяет пароль и выдаёт JWT на tokenTTL
func (s *AdminService) Login(ctx context.Context, login, password string) (string, error) {
	admin, err := s.admins.GetByLogin(ctx, login)
	if err != nil {
		return "", fmt.Errorf("get admin by login: %w", err)
	}
	if admin == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := AdminClaims{
		Login: admin.Login,
		Role:  admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", admin.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("Admin logged in", zap.String("login", admin.Login))
	return token, nil
}

// ValidateToken разбирает и проверяет JWT, возвращая его claims
func (s *AdminService) ValidateToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ListUsers возвращает пользователей по статусу подтверждения.
// confirmed=nil возвращает всех, ожидающих модерации и активных.
func (s *AdminService) ListUsers(ctx context.Context, confirmed *bool) ([]*model.User, error) {
	if confirmed == nil {
		pending, err := s.users.GetByConfirmation(ctx, false)
		if err != nil {
			return nil, err
		}
		active, err := s.users.GetByConfirmation(ctx, true)
		if err != nil {
			return nil, err
		}
		return append(pending, active...), nil
	}
	return s.users.GetByConfirmation(ctx, *confirmed)
}

// Activate подтверждает учётную запись преподавателя или сотрудника деканата
// и уведомляет пользователя в Telegram
func (s *AdminService) Activate(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.HasConfirmed {
		return user, nil
	}

	user.HasConfirmed = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("activate user: %w", err)
	}

	s.logger.Info("User activated",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)))

	s.notifications.NotifyAccountApproved(ctx, user)
	return user, nil
}

// Deactivate отзывает подтверждение. Студентов деактивировать нельзя.
func (s *AdminService) Deactivate(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Role == model.RoleStudent {
		return nil, ErrCannotDeactivateStudent
	}
	if !user.HasConfirmed {
		return user, nil
	}

	user.HasConfirmed = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("deactivate user: %w", err)
	}

	s.logger.Info("User deactivated", zap.Int64("user_id", user.ID))
	return user, nil
}

// UpdateUser меняет профиль пользователя из административной панели.
// Пустые значения не трогают соответствующее поле.
func (s *AdminService) UpdateUser(ctx context.Context, userID int64, firstName, lastName, phone string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}
	if phone != "" {
		user.Phone = phone
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser удаляет учётную запись пользователя
func (s *AdminService) DeleteUser(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("User deleted by admin", zap.Int64("user_id", userID))
	return nil
}
