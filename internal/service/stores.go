package service

import (
	"context"
	"errors"
	"time"

	"consultation-bot/internal/model"
)

// Интерфейсы хранилищ. Реализуются пакетом repository,
// в тестах подменяются in-memory реализациями.

// ErrDuplicate возвращается хранилищем при нарушении уникального
// ограничения: повторная запись на консультацию, повторная подписка,
// повторная регистрация пользователя.
var ErrDuplicate = errors.New("duplicate record")

type ConsultationStore interface {
	Create(ctx context.Context, c *model.Consultation) error
	GetByID(ctx context.Context, id int64) (*model.Consultation, error)
	Update(ctx context.Context, c *model.Consultation) error
	GetByTeacher(ctx context.Context, teacherID int64) ([]*model.Consultation, error)
	GetByTeacherAndStatus(ctx context.Context, teacherID int64, status model.ConsultationStatus) ([]*model.Consultation, error)
	GetByStatus(ctx context.Context, status model.ConsultationStatus) ([]*model.Consultation, error)
	CountRegistrations(ctx context.Context, consultationID int64) (int64, error)
	GetExpiredOpen(ctx context.Context, before time.Time) ([]*model.Consultation, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type RegistrationStore interface {
	Create(ctx context.Context, reg *model.Registration) error
	GetByStudentAndConsultation(ctx context.Context, studentID, consultationID int64) (*model.Registration, error)
	GetByConsultation(ctx context.Context, consultationID int64) ([]*model.Registration, error)
	GetByStudent(ctx context.Context, studentID int64) ([]*model.Registration, error)
	Delete(ctx context.Context, id int64) error
	DeleteByConsultation(ctx context.Context, consultationID int64) (int64, error)
	DeleteByConsultationDateBefore(ctx context.Context, before time.Time) (int64, error)
}

type SubscriptionStore interface {
	Create(ctx context.Context, sub *model.Subscription) error
	Exists(ctx context.Context, studentID, teacherID int64) (bool, error)
	GetByTeacher(ctx context.Context, teacherID int64) ([]*model.Subscription, error)
	GetByStudent(ctx context.Context, studentID int64) ([]*model.Subscription, error)
	Delete(ctx context.Context, studentID, teacherID int64) error
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetTeachers(ctx context.Context) ([]*model.User, error)
	SearchTeachers(ctx context.Context, query string) ([]*model.User, error)
	GetByConfirmation(ctx context.Context, confirmed bool) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

type TodoStore interface {
	Create(ctx context.Context, t *model.TodoTask) error
	GetByID(ctx context.Context, id int64) (*model.TodoTask, error)
	GetAll(ctx context.Context) ([]*model.TodoTask, error)
	GetByTeacher(ctx context.Context, teacherID int64) ([]*model.TodoTask, error)
	GetPendingWithDeadlineAfter(ctx context.Context, after time.Time) ([]*model.TodoTask, error)
	Update(ctx context.Context, t *model.TodoTask) error
	Delete(ctx context.Context, id int64) error
}

type AdminStore interface {
	GetByLogin(ctx context.Context, login string) (*model.AdminUser, error)
}

// Messenger отправляет сообщения пользователям через Telegram
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}
