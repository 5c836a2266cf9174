package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"consultation-bot/internal/model"
	"go.uber.org/zap"
)

// UserService управляет учётными записями пользователей бота.
// Студенты подтверждаются автоматически, преподаватели и сотрудники
// деканата ждут активации администратором.
type UserService struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// GetByTelegramID возвращает пользователя по telegram id, nil если не найден
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Register создаёт пользователя с выбранной ролью. Повторный вызов для уже
// зарегистрированного telegram id возвращает существующую запись без изменений.
func (s *UserService) Register(ctx context.Context, telegramID int64, username, firstName, lastName string, role model.Role) (*model.User, error) {
	existing, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	user := &model.User{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		HasConfirmed: role == model.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Два параллельных /start: возвращаем запись, созданную первым
		if errors.Is(err, ErrDuplicate) {
			return s.users.GetByTelegramID(ctx, telegramID)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(role)),
		zap.Bool("confirmed", user.HasConfirmed))

	return user, nil
}

// GetTeachers возвращает подтверждённых преподавателей
func (s *UserService) GetTeachers(ctx context.Context) ([]*model.User, error) {
	return s.users.GetTeachers(ctx)
}

// SearchTeachers ищет подтверждённых преподавателей по фамилии или имени.
// Пустой запрос возвращает всех.
func (s *UserService) SearchTeachers(ctx context.Context, query string) ([]*model.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.users.GetTeachers(ctx)
	}
	return s.users.SearchTeachers(ctx, query)
}

// UpdateName меняет имя и фамилию пользователя
func (s *UserService) UpdateName(ctx context.Context, user *model.User, firstName, lastName string) error {
	user.FirstName = strings.TrimSpace(firstName)
	user.LastName = strings.TrimSpace(lastName)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user name: %w", err)
	}
	return nil
}

// UpdatePhone меняет контактный телефон
func (s *UserService) UpdatePhone(ctx context.Context, user *model.User, phone string) error {
	user.Phone = strings.TrimSpace(phone)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user phone: %w", err)
	}
	return nil
}

// UpdateReminderMinutes задаёт, за сколько минут до дедлайна напоминать о задачах.
// nil отключает напоминания.
func (s *UserService) UpdateReminderMinutes(ctx context.Context, user *model.User, minutes *int) error {
	user.ReminderMinutes = minutes
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update reminder minutes: %w", err)
	}
	return nil
}
