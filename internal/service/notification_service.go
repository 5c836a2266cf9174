package service

import (
	"context"
	"fmt"

	"consultation-bot/internal/model"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// NotificationService рассылает уведомления о событиях жизненного цикла
// консультаций. Аудитория каждого события вычисляется в момент отправки,
// ошибка доставки одному получателю не прерывает рассылку остальным.
type NotificationService struct {
	messenger     Messenger
	subscriptions SubscriptionStore
	registrations RegistrationStore
	users         UserStore
	logger        *zap.Logger
}

func NewNotificationService(
	messenger Messenger,
	subscriptions SubscriptionStore,
	registrations RegistrationStore,
	users UserStore,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		messenger:     messenger,
		subscriptions: subscriptions,
		registrations: registrations,
		users:         users,
		logger:        logger,
	}
}

// deliver отправляет сообщение каждому получателю независимо.
// Возвращает число успешных доставок.
func (s *NotificationService) deliver(ctx context.Context, recipients []*model.User, text, event string) int {
	batchID := uuid.NewString()

	sent := 0
	for _, recipient := range recipients {
		if err := s.messenger.SendText(ctx, recipient.TelegramID, text); err != nil {
			s.logger.Error("Failed to deliver notification",
				zap.String("event", event),
				zap.String("batch_id", batchID),
				zap.Int64("user_id", recipient.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("Notification batch delivered",
		zap.String("event", event),
		zap.String("batch_id", batchID),
		zap.Int("sent", sent),
		zap.Int("total", len(recipients)))

	return sent
}

// subscribersOf возвращает всех подписчиков преподавателя
func (s *NotificationService) subscribersOf(ctx context.Context, teacherID int64) ([]*model.User, error) {
	subs, err := s.subscriptions.GetByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return lo.Map(subs, func(sub *model.Subscription, _ int) *model.User {
		return sub.Student
	}), nil
}

// registrantsOf возвращает всех записанных на консультацию студентов
func (s *NotificationService) registrantsOf(ctx context.Context, consultationID int64) ([]*model.User, error) {
	regs, err := s.registrations.GetByConsultation(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	return lo.Map(regs, func(reg *model.Registration, _ int) *model.User {
		return reg.Student
	}), nil
}

func (s *NotificationService) teacherName(ctx context.Context, c *model.Consultation) string {
	if c.Teacher != nil {
		return c.Teacher.FullName()
	}
	teacher, err := s.users.GetByID(ctx, c.TeacherID)
	if err != nil || teacher == nil {
		return "преподаватель"
	}
	return teacher.FullName()
}

func formatSchedule(c *model.Consultation) string {
	if c.Date == nil || c.StartTime == nil || c.EndTime == nil {
		return "дата и время уточняются"
	}
	return fmt.Sprintf("%s с %s до %s",
		c.Date.Format("02.01.2006"),
		c.StartTime.Format("15:04"),
		c.EndTime.Format("15:04"))
}

// NotifyNewConsultation уведомляет подписчиков преподавателя о новой консультации
func (s *NotificationService) NotifyNewConsultation(ctx context.Context, c *model.Consultation) {
	subscribers, err := s.subscribersOf(ctx, c.TeacherID)
	if err != nil {
		s.logger.Error("Failed to load subscribers", zap.Int64("teacher_id", c.TeacherID), zap.Error(err))
		return
	}
	if len(subscribers) == 0 {
		return
	}

	text := fmt.Sprintf(
		"🔔 Новая консультация!\n\n📚 %s\n👨‍🏫 %s\n📅 %s\n\nВведите №%d в разделе консультаций, чтобы записаться.",
		c.Title, s.teacherName(ctx, c), formatSchedule(c), c.ID,
	)

	s.deliver(ctx, subscribers, text, "new_consultation")
}

// NotifyConsultationUpdated уведомляет записанных студентов об изменении консультации
func (s *NotificationService) NotifyConsultationUpdated(ctx context.Context, c *model.Consultation, change string) {
	registrants, err := s.registrantsOf(ctx, c.ID)
	if err != nil {
		s.logger.Error("Failed to load registrants", zap.Int64("consultation_id", c.ID), zap.Error(err))
		return
	}
	if len(registrants) == 0 {
		return
	}

	text := fmt.Sprintf(
		"✏️ Консультация «%s» изменена.\n\n%s\n\nАктуально: %s",
		c.Title, change, formatSchedule(c),
	)

	s.deliver(ctx, registrants, text, "consultation_updated")
}

// NotifyConsultationCancelled уведомляет записанных студентов об отмене
func (s *NotificationService) NotifyConsultationCancelled(ctx context.Context, c *model.Consultation) {
	registrants, err := s.registrantsOf(ctx, c.ID)
	if err != nil {
		s.logger.Error("Failed to load registrants", zap.Int64("consultation_id", c.ID), zap.Error(err))
		return
	}
	if len(registrants) == 0 {
		return
	}

	text := fmt.Sprintf("❌ Консультация «%s» (%s) отменена.", c.Title, formatSchedule(c))
	if c.ClosedReason != "" {
		text += "\nПричина: " + c.ClosedReason
	}

	s.deliver(ctx, registrants, text, "consultation_cancelled")
}

// NotifySpotAvailable уведомляет о свободном месте подписчиков преподавателя,
// которые ещё не записаны на консультацию. Студент, чья отмена освободила
// место, исключается из рассылки.
func (s *NotificationService) NotifySpotAvailable(ctx context.Context, c *model.Consultation, excludeStudentID int64) {
	subscribers, err := s.subscribersOf(ctx, c.TeacherID)
	if err != nil {
		s.logger.Error("Failed to load subscribers", zap.Int64("teacher_id", c.TeacherID), zap.Error(err))
		return
	}
	if len(subscribers) == 0 {
		return
	}

	regs, err := s.registrations.GetByConsultation(ctx, c.ID)
	if err != nil {
		s.logger.Error("Failed to load registrants", zap.Int64("consultation_id", c.ID), zap.Error(err))
		return
	}

	registeredIDs := lo.Map(regs, func(reg *model.Registration, _ int) int64 {
		return reg.StudentID
	})

	recipients := lo.Filter(subscribers, func(student *model.User, _ int) bool {
		return !lo.Contains(registeredIDs, student.ID) && student.ID != excludeStudentID
	})
	if len(recipients) == 0 {
		return
	}

	text := fmt.Sprintf(
		"💺 Освободилось место на консультации «%s» (%s).\nЗаписано: %d",
		c.Title, formatSchedule(c), len(regs),
	)

	s.deliver(ctx, recipients, text, "spot_available")
}

// NotifyRequestAccepted уведомляет записавшихся на запрос студентов,
// что преподаватель принял запрос и назначил консультацию
func (s *NotificationService) NotifyRequestAccepted(ctx context.Context, c *model.Consultation) {
	registrants, err := s.registrantsOf(ctx, c.ID)
	if err != nil {
		s.logger.Error("Failed to load registrants", zap.Int64("consultation_id", c.ID), zap.Error(err))
		return
	}
	if len(registrants) == 0 {
		return
	}

	text := fmt.Sprintf(
		"✅ Ваш запрос принят преподавателем!\n\n📚 %s\n👨‍🏫 %s\n📅 %s\n\nВы уже записаны, повторная запись не нужна.",
		c.Title, s.teacherName(ctx, c), formatSchedule(c),
	)

	s.deliver(ctx, registrants, text, "request_accepted")
}

// NotifyAccountApproved уведомляет пользователя об активации учётной записи
func (s *NotificationService) NotifyAccountApproved(ctx context.Context, user *model.User) {
	var text string
	switch user.Role {
	case model.RoleTeacher:
		text = "✅ Ваша учётная запись преподавателя подтверждена. Теперь вам доступны все команды."
	case model.RoleDeanery:
		text = "✅ Ваша учётная запись сотрудника деканата подтверждена. Теперь вам доступны все команды."
	default:
		text = "✅ Ваша учётная запись подтверждена."
	}

	if err := s.messenger.SendText(ctx, user.TelegramID, text); err != nil {
		s.logger.Error("Failed to send approval notification",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
	}
}
