package service

import (
	"context"
	"fmt"
	"time"

	"consultation-bot/internal/lock"
	"consultation-bot/internal/model"
	"go.uber.org/zap"
)

// TimeFilter фильтр консультаций по времени
type TimeFilter string

const (
	FilterAll    TimeFilter = "all"
	FilterFuture TimeFilter = "future"
	FilterPast   TimeFilter = "past"
)

// OpenResult результат открытия консультации
type OpenResult struct {
	Success               bool
	NeedsDisableAutoClose bool
}

// UnregisterResult результат отписки от запроса
type UnregisterResult struct {
	Success        bool
	NotRegistered  bool
	RequestDeleted bool // Запрос удалён, так как отписался последний студент
}

// ConsultationService управляет жизненным циклом консультаций.
// Все мутирующие операции сериализуются по ID консультации через keyed mutex,
// актуальное число записей всегда перечитывается из БД перед проверкой условий.
type ConsultationService struct {
	consultations ConsultationStore
	registrations RegistrationStore
	locks         *lock.KeyedMutex
	logger        *zap.Logger
	now           func() time.Time
}

func NewConsultationService(
	consultations ConsultationStore,
	registrations RegistrationStore,
	locks *lock.KeyedMutex,
	logger *zap.Logger,
) *ConsultationService {
	return &ConsultationService{
		consultations: consultations,
		registrations: registrations,
		locks:         locks,
		logger:        logger,
		now:           time.Now,
	}
}

// Create создаёт новую консультацию со статусом open
func (s *ConsultationService) Create(
	ctx context.Context,
	teacherID int64,
	title string,
	date, startTime, endTime time.Time,
	capacity *int,
	autoClose bool,
) (*model.Consultation, error) {
	c := &model.Consultation{
		Title:     title,
		TeacherID: teacherID,
		Date:      &date,
		StartTime: &startTime,
		EndTime:   &endTime,
		Capacity:  capacity,
		AutoClose: autoClose,
		Status:    model.StatusOpen,
	}

	if err := s.consultations.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create consultation: %w", err)
	}

	s.logger.Info("Created consultation",
		zap.Int64("consultation_id", c.ID),
		zap.Int64("teacher_id", teacherID))

	return c, nil
}

// CreateRequest создаёт запрос консультации от студента.
// В teacher_id записывается сам студент, дата и время не заполняются.
// Студент сразу записывается на собственный запрос (message = title).
func (s *ConsultationService) CreateRequest(ctx context.Context, student *model.User, title string) (*model.Consultation, error) {
	request := &model.Consultation{
		Title:     title,
		TeacherID: student.ID,
		Status:    model.StatusRequest,
	}

	if err := s.consultations.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	reg := &model.Registration{
		StudentID:      student.ID,
		ConsultationID: request.ID,
		Message:        title,
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("register requester: %w", err)
	}

	s.logger.Info("Created consultation request",
		zap.Int64("request_id", request.ID),
		zap.Int64("student_id", student.ID))

	return request, nil
}

// FindByID находит консультацию по ID (nil, nil если не найдена)
func (s *ConsultationService) FindByID(ctx context.Context, id int64) (*model.Consultation, error) {
	return s.consultations.GetByID(ctx, id)
}

// RegisteredCount возвращает актуальное число записей на консультацию
func (s *ConsultationService) RegisteredCount(ctx context.Context, consultationID int64) (int64, error) {
	return s.consultations.CountRegistrations(ctx, consultationID)
}

// Close закрывает запись на консультацию. Повторное закрытие - no-op.
func (s *ConsultationService) Close(ctx context.Context, id int64, reason string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("consultation not found")
	}

	if c.Status == model.StatusClosed {
		return nil
	}
	if c.Status == model.StatusCancelled {
		return fmt.Errorf("consultation is cancelled")
	}

	c.Status = model.StatusClosed
	c.ClosedReason = reason
	if err := s.consultations.Update(ctx, c); err != nil {
		return err
	}

	s.logger.Info("Closed consultation", zap.Int64("consultation_id", id))
	return nil
}

// Open открывает запись на консультацию.
// Если включено автозакрытие и свободных мест нет, открытие невозможно:
// сначала нужно отключить автозакрытие или увеличить вместимость.
func (s *ConsultationService) Open(ctx context.Context, id int64) (OpenResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return OpenResult{}, err
	}
	if c == nil {
		return OpenResult{}, fmt.Errorf("consultation not found")
	}
	if c.Status == model.StatusCancelled {
		return OpenResult{}, fmt.Errorf("consultation is cancelled")
	}

	count, err := s.consultations.CountRegistrations(ctx, id)
	if err != nil {
		return OpenResult{}, err
	}

	if c.AutoClose && c.Capacity != nil && count >= int64(*c.Capacity) {
		return OpenResult{NeedsDisableAutoClose: true}, nil
	}

	c.Status = model.StatusOpen
	if err := s.consultations.Update(ctx, c); err != nil {
		return OpenResult{}, err
	}

	s.logger.Info("Opened consultation", zap.Int64("consultation_id", id))
	return OpenResult{Success: true}, nil
}

// DisableAutoClose отключает автозакрытие консультации
func (s *ConsultationService) DisableAutoClose(ctx context.Context, id int64) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("consultation not found")
	}

	c.AutoClose = false
	if err := s.consultations.Update(ctx, c); err != nil {
		return err
	}

	s.logger.Info("Disabled auto-close", zap.Int64("consultation_id", id))
	return nil
}

// Cancel отменяет консультацию окончательно. Из cancelled выхода нет.
func (s *ConsultationService) Cancel(ctx context.Context, id int64, reason string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("consultation not found")
	}
	if c.Status == model.StatusCancelled {
		return nil
	}

	c.Status = model.StatusCancelled
	c.ClosedReason = reason
	if err := s.consultations.Update(ctx, c); err != nil {
		return err
	}

	s.logger.Info("Cancelled consultation",
		zap.Int64("consultation_id", id),
		zap.String("reason", reason))
	return nil
}

// AcceptRequest превращает запрос в консультацию: автор-студент заменяется
// преподавателем, заполняются дата, время и вместимость. Все записавшиеся
// на запрос студенты становятся записанными на консультацию без повторной записи.
// Если автозакрытие включено и заинтересованных уже не меньше вместимости,
// консультация сразу закрывается для записи.
func (s *ConsultationService) AcceptRequest(
	ctx context.Context,
	requestID, teacherID int64,
	date, startTime, endTime time.Time,
	capacity *int,
	autoClose bool,
) (*model.Consultation, error) {
	unlock := s.locks.Lock(requestID)
	defer unlock()

	request, err := s.consultations.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil || request.Status != model.StatusRequest {
		return nil, fmt.Errorf("request not found")
	}

	interested, err := s.consultations.CountRegistrations(ctx, requestID)
	if err != nil {
		return nil, err
	}

	request.TeacherID = teacherID
	request.Date = &date
	request.StartTime = &startTime
	request.EndTime = &endTime
	request.Capacity = capacity
	request.AutoClose = autoClose

	if autoClose && capacity != nil && interested >= int64(*capacity) {
		request.Status = model.StatusClosed
	} else {
		request.Status = model.StatusOpen
	}

	if err := s.consultations.Update(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("Accepted consultation request",
		zap.Int64("request_id", requestID),
		zap.Int64("teacher_id", teacherID),
		zap.Int64("interested", interested),
		zap.String("status", string(request.Status)))

	return request, nil
}

// CheckAndAutoClose закрывает открытую консультацию, если включено автозакрытие
// и число записей достигло вместимости. Вызывается после записи студента.
func (s *ConsultationService) CheckAndAutoClose(ctx context.Context, id int64) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	return s.autoCloseLocked(ctx, id)
}

// autoCloseLocked выполняет проверку автозакрытия. Вызывающий держит lock по id.
func (s *ConsultationService) autoCloseLocked(ctx context.Context, id int64) (bool, error) {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil || c == nil {
		return false, err
	}

	if !c.AutoClose || c.Capacity == nil {
		return false, nil
	}

	count, err := s.consultations.CountRegistrations(ctx, id)
	if err != nil {
		return false, err
	}

	if count >= int64(*c.Capacity) && c.Status == model.StatusOpen {
		c.Status = model.StatusClosed
		if err := s.consultations.Update(ctx, c); err != nil {
			return false, err
		}
		s.logger.Info("Auto-closed consultation (capacity reached)",
			zap.Int64("consultation_id", id),
			zap.Int64("count", count))
		return true, nil
	}

	return false, nil
}

// CheckAndAutoOpen открывает закрытую консультацию, если после отмены записи
// появилось свободное место. Открывается только когда текущая вместимость
// совпадает с числом записей до отмены: так автозакрытую консультацию можно
// отличить от закрытой вручную по другой причине без отдельного флага.
func (s *ConsultationService) CheckAndAutoOpen(ctx context.Context, id int64, countBefore int64) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	return s.autoOpenLocked(ctx, id, countBefore)
}

// autoOpenLocked выполняет проверку автооткрытия. Вызывающий держит lock по id.
func (s *ConsultationService) autoOpenLocked(ctx context.Context, id int64, countBefore int64) (bool, error) {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil || c == nil {
		return false, err
	}

	if !c.AutoClose || c.Capacity == nil {
		return false, nil
	}

	count, err := s.consultations.CountRegistrations(ctx, id)
	if err != nil {
		return false, err
	}

	if int64(*c.Capacity) == countBefore &&
		count < countBefore &&
		c.Status == model.StatusClosed {
		c.Status = model.StatusOpen
		if err := s.consultations.Update(ctx, c); err != nil {
			return false, err
		}
		s.logger.Info("Auto-opened consultation (spot freed)",
			zap.Int64("consultation_id", id),
			zap.Int64("count", count))
		return true, nil
	}

	return false, nil
}

// ========== Редактирование ==========

// UpdateTitle изменяет название консультации
func (s *ConsultationService) UpdateTitle(ctx context.Context, id int64, title string) error {
	return s.updateLocked(ctx, id, func(c *model.Consultation) {
		c.Title = title
	})
}

// UpdateSchedule изменяет дату и время консультации
func (s *ConsultationService) UpdateSchedule(ctx context.Context, id int64, date, startTime, endTime time.Time) error {
	return s.updateLocked(ctx, id, func(c *model.Consultation) {
		c.Date = &date
		c.StartTime = &startTime
		c.EndTime = &endTime
	})
}

// UpdateCapacity изменяет вместимость консультации
func (s *ConsultationService) UpdateCapacity(ctx context.Context, id int64, capacity *int) error {
	return s.updateLocked(ctx, id, func(c *model.Consultation) {
		c.Capacity = capacity
	})
}

// UpdateAutoClose изменяет флаг автозакрытия
func (s *ConsultationService) UpdateAutoClose(ctx context.Context, id int64, autoClose bool) error {
	return s.updateLocked(ctx, id, func(c *model.Consultation) {
		c.AutoClose = autoClose
	})
}

func (s *ConsultationService) updateLocked(ctx context.Context, id int64, mutate func(*model.Consultation)) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("consultation not found")
	}

	mutate(c)
	return s.consultations.Update(ctx, c)
}

// ========== Списки и фильтры ==========

// GetTeacherConsultations получает консультации преподавателя без запросов,
// с фильтром по времени
func (s *ConsultationService) GetTeacherConsultations(ctx context.Context, teacherID int64, filter TimeFilter) ([]*model.Consultation, error) {
	all, err := s.consultations.GetByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	var consultations []*model.Consultation
	for _, c := range all {
		if c.Status != model.StatusRequest {
			consultations = append(consultations, c)
		}
	}

	return s.ApplyFilter(consultations, filter), nil
}

// ApplyFilter применяет фильтр по времени к списку консультаций
func (s *ConsultationService) ApplyFilter(consultations []*model.Consultation, filter TimeFilter) []*model.Consultation {
	if filter == FilterAll || filter == "" {
		return consultations
	}

	now := s.now()

	var filtered []*model.Consultation
	for _, c := range consultations {
		if c.Date == nil || c.StartTime == nil {
			continue
		}

		start := time.Date(
			c.Date.Year(), c.Date.Month(), c.Date.Day(),
			c.StartTime.Hour(), c.StartTime.Minute(), 0, 0, now.Location(),
		)

		switch filter {
		case FilterFuture:
			if start.After(now) {
				filtered = append(filtered, c)
			}
		case FilterPast:
			if start.Before(now) {
				filtered = append(filtered, c)
			}
		}
	}

	return filtered
}

// ========== Запросы консультаций ==========

// GetStudentRequests получает все запросы, созданные студентом
func (s *ConsultationService) GetStudentRequests(ctx context.Context, studentID int64) ([]*model.Consultation, error) {
	return s.consultations.GetByTeacherAndStatus(ctx, studentID, model.StatusRequest)
}

// GetAllRequests получает все запросы всех студентов
func (s *ConsultationService) GetAllRequests(ctx context.Context) ([]*model.Consultation, error) {
	return s.consultations.GetByStatus(ctx, model.StatusRequest)
}

// FindRequestByID находит запрос по ID (nil, если записи нет или это не запрос)
func (s *ConsultationService) FindRequestByID(ctx context.Context, id int64) (*model.Consultation, error) {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	if c.Status != model.StatusRequest {
		return nil, nil
	}
	return c, nil
}

// UnregisterFromRequest отписывает студента от запроса.
// Если отписался последний заинтересованный студент, запрос удаляется целиком.
func (s *ConsultationService) UnregisterFromRequest(ctx context.Context, studentID, requestID int64) (UnregisterResult, error) {
	unlock := s.locks.Lock(requestID)
	defer unlock()

	request, err := s.consultations.GetByID(ctx, requestID)
	if err != nil {
		return UnregisterResult{}, err
	}
	if request == nil || request.Status != model.StatusRequest {
		return UnregisterResult{}, fmt.Errorf("request not found")
	}

	reg, err := s.registrations.GetByStudentAndConsultation(ctx, studentID, requestID)
	if err != nil {
		return UnregisterResult{}, err
	}
	if reg == nil {
		return UnregisterResult{NotRegistered: true}, nil
	}

	if err := s.registrations.Delete(ctx, reg.ID); err != nil {
		return UnregisterResult{}, err
	}

	remaining, err := s.consultations.CountRegistrations(ctx, requestID)
	if err != nil {
		return UnregisterResult{}, err
	}

	if remaining == 0 {
		if _, err := s.registrations.DeleteByConsultation(ctx, requestID); err != nil {
			return UnregisterResult{}, err
		}
		if err := s.consultations.Delete(ctx, requestID); err != nil {
			return UnregisterResult{}, err
		}
		s.logger.Info("Deleted empty request", zap.Int64("request_id", requestID))
		return UnregisterResult{Success: true, RequestDeleted: true}, nil
	}

	return UnregisterResult{Success: true}, nil
}

// ========== Фоновые задачи ==========

// CloseExpired закрывает открытые консультации с прошедшей датой.
// Ошибка по одной записи не прерывает обработку остальных.
func (s *ConsultationService) CloseExpired(ctx context.Context) (int, error) {
	today := s.now().Truncate(24 * time.Hour)

	expired, err := s.consultations.GetExpiredOpen(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("find expired consultations: %w", err)
	}

	closed := 0
	for _, c := range expired {
		c.Status = model.StatusClosed
		if err := s.consultations.Update(ctx, c); err != nil {
			s.logger.Error("Failed to close expired consultation",
				zap.Int64("consultation_id", c.ID),
				zap.Error(err))
			continue
		}
		closed++
	}

	return closed, nil
}

// DeleteOld удаляет консультации, завершившиеся более 30 дней назад.
// Сначала удаляются записи студентов, затем сами консультации.
func (s *ConsultationService) DeleteOld(ctx context.Context) (regs, consultations int64, err error) {
	cutoff := s.now().AddDate(0, 0, -30)

	regs, err = s.registrations.DeleteByConsultationDateBefore(ctx, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("delete old registrations: %w", err)
	}

	consultations, err = s.consultations.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return regs, 0, fmt.Errorf("delete old consultations: %w", err)
	}

	return regs, consultations, nil
}
