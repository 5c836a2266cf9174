package service

import (
	"context"
	"errors"
	"fmt"

	"consultation-bot/internal/lock"
	"consultation-bot/internal/model"
	"go.uber.org/zap"
)

// RegisterOutcome исход попытки записи на консультацию
type RegisterOutcome int

const (
	RegisterOK RegisterOutcome = iota
	RegisterAlreadyRegistered
	RegisterConsultationNotFound
	RegisterCancelled // Консультация отменена
	RegisterClosed    // Запись закрыта
	RegisterFull      // Все места заняты
)

// RegisterResult результат записи на консультацию
type RegisterResult struct {
	Outcome    RegisterOutcome
	Count      int64 // Текущее число записей (для сообщения о занятых местах)
	Capacity   int   // Вместимость, если ограничена
	AutoClosed bool  // Запись привела к автозакрытию
}

// CancelRegistrationResult результат отмены записи
type CancelRegistrationResult struct {
	Success       bool
	NotRegistered bool
	CountBefore   int64
	CountAfter    int64
	Reopened      bool
	// Статус консультации после отмены: уведомление о свободном месте
	// отправляется только если запись открыта.
	Status model.ConsultationStatus
}

// SubscribeOutcome исход подписки или отписки
type SubscribeOutcome int

const (
	SubscribeOK SubscribeOutcome = iota
	SubscribeAlready
	SubscribeNotSubscribed
)

// RegistrationService контролирует допуск студентов на консультации:
// проверка дубликатов, статуса и вместимости перед созданием записи,
// пересчёт автозакрытия и автооткрытия после каждого изменения.
// Использует общий с ConsultationService keyed mutex, поэтому проверка
// числа мест и создание записи атомарны для одной консультации.
type RegistrationService struct {
	consultations ConsultationStore
	registrations RegistrationStore
	subscriptions SubscriptionStore
	lifecycle     *ConsultationService
	locks         *lock.KeyedMutex
	logger        *zap.Logger
}

func NewRegistrationService(
	consultations ConsultationStore,
	registrations RegistrationStore,
	subscriptions SubscriptionStore,
	lifecycle *ConsultationService,
	locks *lock.KeyedMutex,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		consultations: consultations,
		registrations: registrations,
		subscriptions: subscriptions,
		lifecycle:     lifecycle,
		locks:         locks,
		logger:        logger,
	}
}

// Register записывает студента на консультацию или запрос.
// Проверки и вставка выполняются под локом консультации,
// число записей перечитывается из БД непосредственно перед проверкой.
func (s *RegistrationService) Register(ctx context.Context, studentID, consultationID int64, message string) (RegisterResult, error) {
	unlock := s.locks.Lock(consultationID)
	defer unlock()

	c, err := s.consultations.GetByID(ctx, consultationID)
	if err != nil {
		return RegisterResult{}, err
	}
	if c == nil {
		return RegisterResult{Outcome: RegisterConsultationNotFound}, nil
	}

	existing, err := s.registrations.GetByStudentAndConsultation(ctx, studentID, consultationID)
	if err != nil {
		return RegisterResult{}, err
	}
	if existing != nil {
		return RegisterResult{Outcome: RegisterAlreadyRegistered}, nil
	}

	switch c.Status {
	case model.StatusCancelled:
		return RegisterResult{Outcome: RegisterCancelled}, nil
	case model.StatusClosed:
		return RegisterResult{Outcome: RegisterClosed}, nil
	}

	count, err := s.consultations.CountRegistrations(ctx, consultationID)
	if err != nil {
		return RegisterResult{}, err
	}

	if c.HasCapacityLimit() && count >= int64(*c.Capacity) {
		return RegisterResult{Outcome: RegisterFull, Count: count, Capacity: *c.Capacity}, nil
	}

	reg := &model.Registration{
		StudentID:      studentID,
		ConsultationID: consultationID,
		Message:        message,
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		// Конкурентная запись того же студента успела раньше
		if errors.Is(err, ErrDuplicate) {
			return RegisterResult{Outcome: RegisterAlreadyRegistered}, nil
		}
		return RegisterResult{}, fmt.Errorf("create registration: %w", err)
	}

	autoClosed, err := s.lifecycle.autoCloseLocked(ctx, consultationID)
	if err != nil {
		// Запись уже создана, ошибка пересчёта не отменяет её
		s.logger.Error("Auto-close check failed after registration",
			zap.Int64("consultation_id", consultationID),
			zap.Error(err))
	}

	s.logger.Info("Registered student",
		zap.Int64("student_id", studentID),
		zap.Int64("consultation_id", consultationID),
		zap.Bool("auto_closed", autoClosed))

	return RegisterResult{Outcome: RegisterOK, Count: count + 1, AutoClosed: autoClosed}, nil
}

// CancelRegistration отменяет запись студента на консультацию
// и проверяет автооткрытие по числу записей до отмены.
func (s *RegistrationService) CancelRegistration(ctx context.Context, studentID, consultationID int64) (CancelRegistrationResult, error) {
	unlock := s.locks.Lock(consultationID)
	defer unlock()

	reg, err := s.registrations.GetByStudentAndConsultation(ctx, studentID, consultationID)
	if err != nil {
		return CancelRegistrationResult{}, err
	}
	if reg == nil {
		return CancelRegistrationResult{NotRegistered: true}, nil
	}

	countBefore, err := s.consultations.CountRegistrations(ctx, consultationID)
	if err != nil {
		return CancelRegistrationResult{}, err
	}

	if err := s.registrations.Delete(ctx, reg.ID); err != nil {
		return CancelRegistrationResult{}, fmt.Errorf("delete registration: %w", err)
	}

	reopened, err := s.lifecycle.autoOpenLocked(ctx, consultationID, countBefore)
	if err != nil {
		s.logger.Error("Auto-open check failed after cancellation",
			zap.Int64("consultation_id", consultationID),
			zap.Error(err))
	}

	c, err := s.consultations.GetByID(ctx, consultationID)
	if err != nil {
		return CancelRegistrationResult{}, err
	}

	result := CancelRegistrationResult{
		Success:     true,
		CountBefore: countBefore,
		CountAfter:  countBefore - 1,
		Reopened:    reopened,
	}
	if c != nil {
		result.Status = c.Status
	}

	s.logger.Info("Cancelled registration",
		zap.Int64("student_id", studentID),
		zap.Int64("consultation_id", consultationID),
		zap.Bool("reopened", reopened))

	return result, nil
}

// IsRegistered проверяет, записан ли студент на консультацию
func (s *RegistrationService) IsRegistered(ctx context.Context, studentID, consultationID int64) (bool, error) {
	reg, err := s.registrations.GetByStudentAndConsultation(ctx, studentID, consultationID)
	if err != nil {
		return false, err
	}
	return reg != nil, nil
}

// GetRegistration получает запись студента на консультацию (nil если не записан)
func (s *RegistrationService) GetRegistration(ctx context.Context, studentID, consultationID int64) (*model.Registration, error) {
	return s.registrations.GetByStudentAndConsultation(ctx, studentID, consultationID)
}

// GetStudentRegistrations получает все записи студента (без запросов)
func (s *RegistrationService) GetStudentRegistrations(ctx context.Context, studentID int64) ([]*model.Registration, error) {
	return s.registrations.GetByStudent(ctx, studentID)
}

// GetConsultationRegistrations получает все записи на консультацию
func (s *RegistrationService) GetConsultationRegistrations(ctx context.Context, consultationID int64) ([]*model.Registration, error) {
	return s.registrations.GetByConsultation(ctx, consultationID)
}

// ========== Подписки ==========

// Subscribe подписывает студента на обновления преподавателя
func (s *RegistrationService) Subscribe(ctx context.Context, studentID, teacherID int64) (SubscribeOutcome, error) {
	exists, err := s.subscriptions.Exists(ctx, studentID, teacherID)
	if err != nil {
		return SubscribeOK, err
	}
	if exists {
		return SubscribeAlready, nil
	}

	sub := &model.Subscription{StudentID: studentID, TeacherID: teacherID}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return SubscribeAlready, nil
		}
		return SubscribeOK, fmt.Errorf("create subscription: %w", err)
	}

	return SubscribeOK, nil
}

// Unsubscribe отписывает студента от обновлений преподавателя
func (s *RegistrationService) Unsubscribe(ctx context.Context, studentID, teacherID int64) (SubscribeOutcome, error) {
	exists, err := s.subscriptions.Exists(ctx, studentID, teacherID)
	if err != nil {
		return SubscribeOK, err
	}
	if !exists {
		return SubscribeNotSubscribed, nil
	}

	if err := s.subscriptions.Delete(ctx, studentID, teacherID); err != nil {
		return SubscribeOK, fmt.Errorf("delete subscription: %w", err)
	}

	return SubscribeOK, nil
}

// IsSubscribed проверяет, подписан ли студент на преподавателя
func (s *RegistrationService) IsSubscribed(ctx context.Context, studentID, teacherID int64) (bool, error) {
	return s.subscriptions.Exists(ctx, studentID, teacherID)
}

// GetStudentSubscriptions получает все подписки студента
func (s *RegistrationService) GetStudentSubscriptions(ctx context.Context, studentID int64) ([]*model.Subscription, error) {
	return s.subscriptions.GetByStudent(ctx, studentID)
}
