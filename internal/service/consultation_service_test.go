package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"consultation-bot/internal/lock"
	"consultation-bot/internal/model"
)

func intPtr(v int) *int { return &v }

// lifecycleFixture - связка сервисов жизненного цикла поверх общего memDB
type lifecycleFixture struct {
	db            *memDB
	consultations *ConsultationService
	registrations *RegistrationService
}

func newLifecycleFixture() *lifecycleFixture {
	db := newMemDB()
	locks := lock.NewKeyedMutex()
	logger := zap.NewNop()

	cs := NewConsultationService(&memConsultations{db}, &memRegistrations{db}, locks, logger)
	rs := NewRegistrationService(
		&memConsultations{db},
		&memRegistrations{db},
		&memSubscriptions{db},
		cs, locks, logger,
	)

	return &lifecycleFixture{db: db, consultations: cs, registrations: rs}
}

func (f *lifecycleFixture) addStudent(telegramID int64, name string) *model.User {
	return f.db.addUser(&model.User{
		TelegramID:   telegramID,
		FirstName:    name,
		Role:         model.RoleStudent,
		HasConfirmed: true,
	})
}

func (f *lifecycleFixture) addTeacher(telegramID int64, name string) *model.User {
	return f.db.addUser(&model.User{
		TelegramID:   telegramID,
		FirstName:    name,
		Role:         model.RoleTeacher,
		HasConfirmed: true,
	})
}

func (f *lifecycleFixture) createConsultation(t *testing.T, teacherID int64, capacity *int, autoClose bool) *model.Consultation {
	t.Helper()
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.Local)
	start := time.Date(2026, 9, 15, 14, 0, 0, 0, time.Local)
	end := time.Date(2026, 9, 15, 16, 0, 0, 0, time.Local)

	c, err := f.consultations.Create(context.Background(), teacherID, "Матанализ", date, start, end, capacity, autoClose)
	require.NoError(t, err)
	return c
}

func Test_Register_auto_closes_consultation_at_capacity(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	b := f.addStudent(102, "Борис")
	c := f.createConsultation(t, teacher.ID, intPtr(2), true)
	ctx := context.Background()

	// Act
	first, err := f.registrations.Register(ctx, a.ID, c.ID, "вопрос по пределам")
	require.NoError(t, err)
	second, err := f.registrations.Register(ctx, b.ID, c.ID, "")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, RegisterOK, first.Outcome)
	assert.False(t, first.AutoClosed)
	assert.Equal(t, RegisterOK, second.Outcome)
	assert.True(t, second.AutoClosed)

	stored, err := f.consultations.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, stored.Status)
}

func Test_Register_without_auto_close_rejects_when_full_but_stays_open(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	b := f.addStudent(102, "Борис")
	c := f.createConsultation(t, teacher.ID, intPtr(1), false)
	ctx := context.Background()

	_, err := f.registrations.Register(ctx, a.ID, c.ID, "")
	require.NoError(t, err)

	// Act
	res, err := f.registrations.Register(ctx, b.ID, c.ID, "")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, RegisterFull, res.Outcome)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, 1, res.Capacity)

	stored, err := f.consultations.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, stored.Status)
}

func Test_Register_rejects_duplicate(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	c := f.createConsultation(t, teacher.ID, nil, false)
	ctx := context.Background()

	_, err := f.registrations.Register(ctx, a.ID, c.ID, "первый раз")
	require.NoError(t, err)

	// Act
	res, err := f.registrations.Register(ctx, a.ID, c.ID, "второй раз")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, RegisterAlreadyRegistered, res.Outcome)

	count, err := f.consultations.RegisteredCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func Test_Register_rejects_closed_and_cancelled(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	closed := f.createConsultation(t, teacher.ID, nil, false)
	cancelled := f.createConsultation(t, teacher.ID, nil, false)
	ctx := context.Background()

	require.NoError(t, f.consultations.Close(ctx, closed.ID, ""))
	require.NoError(t, f.consultations.Cancel(ctx, cancelled.ID, "болезнь"))

	// Act
	resClosed, err := f.registrations.Register(ctx, a.ID, closed.ID, "")
	require.NoError(t, err)
	resCancelled, err := f.registrations.Register(ctx, a.ID, cancelled.ID, "")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, RegisterClosed, resClosed.Outcome)
	assert.Equal(t, RegisterCancelled, resCancelled.Outcome)
}

func Test_Register_unknown_consultation_reports_not_found(t *testing.T) {
	f := newLifecycleFixture()
	a := f.addStudent(101, "Анна")

	res, err := f.registrations.Register(context.Background(), a.ID, 9999, "")

	require.NoError(t, err)
	assert.Equal(t, RegisterConsultationNotFound, res.Outcome)
}

func Test_CancelRegistration_reopens_auto_closed_consultation(t *testing.T) {
	// Arrange: консультация на одно место автозакрылась после записи
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	c := f.createConsultation(t, teacher.ID, intPtr(1), true)
	ctx := context.Background()

	res, err := f.registrations.Register(ctx, a.ID, c.ID, "")
	require.NoError(t, err)
	require.True(t, res.AutoClosed)

	// Act
	cancel, err := f.registrations.CancelRegistration(ctx, a.ID, c.ID)
	require.NoError(t, err)

	// Assert
	assert.True(t, cancel.Success)
	assert.True(t, cancel.Reopened)
	assert.Equal(t, int64(1), cancel.CountBefore)
	assert.Equal(t, int64(0), cancel.CountAfter)
	assert.Equal(t, model.StatusOpen, cancel.Status)
}

func Test_CancelRegistration_keeps_manually_closed_consultation_closed(t *testing.T) {
	// Arrange: вместимость 3, закрыта вручную при одной записи.
	// Вместимость не равна числу записей до отмены, автооткрытие не срабатывает.
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	c := f.createConsultation(t, teacher.ID, intPtr(3), true)
	ctx := context.Background()

	_, err := f.registrations.Register(ctx, a.ID, c.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.consultations.Close(ctx, c.ID, "перенос"))

	// Act
	cancel, err := f.registrations.CancelRegistration(ctx, a.ID, c.ID)
	require.NoError(t, err)

	// Assert
	assert.True(t, cancel.Success)
	assert.False(t, cancel.Reopened)
	assert.Equal(t, model.StatusClosed, cancel.Status)
}

func Test_CancelRegistration_of_unregistered_student(t *testing.T) {
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	c := f.createConsultation(t, teacher.ID, nil, false)

	res, err := f.registrations.CancelRegistration(context.Background(), a.ID, c.ID)

	require.NoError(t, err)
	assert.True(t, res.NotRegistered)
	assert.False(t, res.Success)
}

func Test_full_capacity_cycle_close_reopen_rebook(t *testing.T) {
	// Консультация на одно место с автозакрытием: запись Анны закрывает её,
	// Борис получает отказ, отмена Анны вновь открывает, Борис записывается.
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	b := f.addStudent(102, "Борис")
	c := f.createConsultation(t, teacher.ID, intPtr(1), true)
	ctx := context.Background()

	first, err := f.registrations.Register(ctx, a.ID, c.ID, "")
	require.NoError(t, err)
	require.Equal(t, RegisterOK, first.Outcome)
	require.True(t, first.AutoClosed)

	rejected, err := f.registrations.Register(ctx, b.ID, c.ID, "")
	require.NoError(t, err)
	require.Equal(t, RegisterClosed, rejected.Outcome)

	cancel, err := f.registrations.CancelRegistration(ctx, a.ID, c.ID)
	require.NoError(t, err)
	require.True(t, cancel.Reopened)

	retry, err := f.registrations.Register(ctx, b.ID, c.ID, "")
	require.NoError(t, err)
	assert.Equal(t, RegisterOK, retry.Outcome)
	assert.True(t, retry.AutoClosed)

	registered, err := f.registrations.IsRegistered(ctx, b.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, registered)
}

func Test_Open_requires_disabling_auto_close_when_full(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	c := f.createConsultation(t, teacher.ID, intPtr(1), true)
	ctx := context.Background()

	_, err := f.registrations.Register(ctx, a.ID, c.ID, "")
	require.NoError(t, err)

	// Act: попытка открыть при заполненной вместимости и включённом автозакрытии
	res, err := f.consultations.Open(ctx, c.ID)
	require.NoError(t, err)

	// Assert
	assert.False(t, res.Success)
	assert.True(t, res.NeedsDisableAutoClose)

	// После отключения автозакрытия консультация открывается
	require.NoError(t, f.consultations.DisableAutoClose(ctx, c.ID))
	res, err = f.consultations.Open(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func Test_Close_is_idempotent_and_cancel_is_final(t *testing.T) {
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	c := f.createConsultation(t, teacher.ID, nil, false)
	ctx := context.Background()

	require.NoError(t, f.consultations.Close(ctx, c.ID, "перерыв"))
	require.NoError(t, f.consultations.Close(ctx, c.ID, "перерыв"))

	require.NoError(t, f.consultations.Cancel(ctx, c.ID, "болезнь"))
	require.NoError(t, f.consultations.Cancel(ctx, c.ID, "болезнь"))

	// Отменённую консультацию нельзя ни открыть, ни закрыть
	_, err := f.consultations.Open(ctx, c.ID)
	assert.Error(t, err)
	assert.Error(t, f.consultations.Close(ctx, c.ID, ""))
}

func Test_CreateRequest_registers_author_immediately(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	author := f.addStudent(101, "Анна")
	ctx := context.Background()

	// Act
	request, err := f.consultations.CreateRequest(ctx, author, "Нужна консультация по рядам")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, model.StatusRequest, request.Status)
	assert.Equal(t, author.ID, request.TeacherID)
	assert.Nil(t, request.Date)

	registered, err := f.registrations.IsRegistered(ctx, author.ID, request.ID)
	require.NoError(t, err)
	assert.True(t, registered)
}

func Test_Register_allows_joining_request(t *testing.T) {
	// Запрос без вместимости: другие студенты присоединяются обычной записью
	f := newLifecycleFixture()
	author := f.addStudent(101, "Анна")
	other := f.addStudent(102, "Борис")
	ctx := context.Background()

	request, err := f.consultations.CreateRequest(ctx, author, "Ряды Фурье")
	require.NoError(t, err)

	res, err := f.registrations.Register(ctx, other.ID, request.ID, "")
	require.NoError(t, err)

	assert.Equal(t, RegisterOK, res.Outcome)
	count, err := f.consultations.RegisteredCount(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func Test_AcceptRequest_converts_to_open_consultation(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	author := f.addStudent(101, "Анна")
	teacher := f.addTeacher(100, "Иван")
	ctx := context.Background()

	request, err := f.consultations.CreateRequest(ctx, author, "Ряды Фурье")
	require.NoError(t, err)

	date := time.Date(2026, 9, 20, 0, 0, 0, 0, time.Local)
	start := time.Date(2026, 9, 20, 10, 0, 0, 0, time.Local)
	end := time.Date(2026, 9, 20, 12, 0, 0, 0, time.Local)

	// Act
	accepted, err := f.consultations.AcceptRequest(ctx, request.ID, teacher.ID, date, start, end, intPtr(5), true)
	require.NoError(t, err)

	// Assert: автор заменён преподавателем, запись автора сохранилась
	assert.Equal(t, model.StatusOpen, accepted.Status)
	assert.Equal(t, teacher.ID, accepted.TeacherID)
	require.NotNil(t, accepted.Date)

	registered, err := f.registrations.IsRegistered(ctx, author.ID, accepted.ID)
	require.NoError(t, err)
	assert.True(t, registered)
}

func Test_AcceptRequest_closes_immediately_when_interest_fills_capacity(t *testing.T) {
	// Arrange: на запрос записаны двое, преподаватель принимает с вместимостью 2
	f := newLifecycleFixture()
	author := f.addStudent(101, "Анна")
	other := f.addStudent(102, "Борис")
	teacher := f.addTeacher(100, "Иван")
	ctx := context.Background()

	request, err := f.consultations.CreateRequest(ctx, author, "Ряды Фурье")
	require.NoError(t, err)
	_, err = f.registrations.Register(ctx, other.ID, request.ID, "")
	require.NoError(t, err)

	date := time.Date(2026, 9, 20, 0, 0, 0, 0, time.Local)
	start := time.Date(2026, 9, 20, 10, 0, 0, 0, time.Local)
	end := time.Date(2026, 9, 20, 12, 0, 0, 0, time.Local)

	// Act
	accepted, err := f.consultations.AcceptRequest(ctx, request.ID, teacher.ID, date, start, end, intPtr(2), true)
	require.NoError(t, err)

	// Assert: консультация сразу закрыта, обе записи сохранены
	assert.Equal(t, model.StatusClosed, accepted.Status)
	count, err := f.consultations.RegisteredCount(ctx, accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func Test_UnregisterFromRequest_deletes_request_when_last_student_leaves(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	author := f.addStudent(101, "Анна")
	ctx := context.Background()

	request, err := f.consultations.CreateRequest(ctx, author, "Ряды Фурье")
	require.NoError(t, err)

	// Act
	res, err := f.consultations.UnregisterFromRequest(ctx, author.ID, request.ID)
	require.NoError(t, err)

	// Assert
	assert.True(t, res.Success)
	assert.True(t, res.RequestDeleted)

	stored, err := f.consultations.FindByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func Test_UnregisterFromRequest_keeps_request_while_others_remain(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	author := f.addStudent(101, "Анна")
	other := f.addStudent(102, "Борис")
	ctx := context.Background()

	request, err := f.consultations.CreateRequest(ctx, author, "Ряды Фурье")
	require.NoError(t, err)
	_, err = f.registrations.Register(ctx, other.ID, request.ID, "")
	require.NoError(t, err)

	// Act
	res, err := f.consultations.UnregisterFromRequest(ctx, author.ID, request.ID)
	require.NoError(t, err)

	// Assert
	assert.True(t, res.Success)
	assert.False(t, res.RequestDeleted)

	stored, err := f.consultations.FindByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.StatusRequest, stored.Status)
}

func Test_ApplyFilter_splits_future_and_past(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.Local)
	f.consultations.now = func() time.Time { return now }

	past := timeConsultation(t, now.AddDate(0, 0, -1))
	future := timeConsultation(t, now.AddDate(0, 0, 1))
	all := []*model.Consultation{past, future}

	// Act / Assert
	assert.Equal(t, all, f.consultations.ApplyFilter(all, FilterAll))
	assert.Equal(t, []*model.Consultation{future}, f.consultations.ApplyFilter(all, FilterFuture))
	assert.Equal(t, []*model.Consultation{past}, f.consultations.ApplyFilter(all, FilterPast))
}

func timeConsultation(t *testing.T, start time.Time) *model.Consultation {
	t.Helper()
	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	return &model.Consultation{
		Title:     "Тест",
		Date:      &date,
		StartTime: &start,
		Status:    model.StatusOpen,
	}
}

func Test_CloseExpired_closes_only_past_open_consultations(t *testing.T) {
	// Arrange
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	now := time.Date(2026, 9, 10, 9, 0, 0, 0, time.Local)
	f.consultations.now = func() time.Time { return now }
	ctx := context.Background()

	expired, err := f.consultations.Create(ctx, teacher.ID, "Прошедшая",
		now.AddDate(0, 0, -2), now.AddDate(0, 0, -2), now.AddDate(0, 0, -2).Add(2*time.Hour), nil, false)
	require.NoError(t, err)
	upcoming, err := f.consultations.Create(ctx, teacher.ID, "Будущая",
		now.AddDate(0, 0, 2), now.AddDate(0, 0, 2), now.AddDate(0, 0, 2).Add(2*time.Hour), nil, false)
	require.NoError(t, err)

	// Act
	closed, err := f.consultations.CloseExpired(ctx)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, closed)

	storedExpired, err := f.consultations.FindByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, storedExpired.Status)

	storedUpcoming, err := f.consultations.FindByID(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, storedUpcoming.Status)
}

func Test_DeleteOld_removes_consultations_and_registrations_past_retention(t *testing.T) {
	// Arrange: консультация 40-дневной давности с записью и свежая консультация
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	now := time.Date(2026, 9, 10, 9, 0, 0, 0, time.Local)
	f.consultations.now = func() time.Time { return now }
	ctx := context.Background()

	oldDate := now.AddDate(0, 0, -40)
	old, err := f.consultations.Create(ctx, teacher.ID, "Старая", oldDate, oldDate, oldDate.Add(time.Hour), nil, false)
	require.NoError(t, err)
	recentDate := now.AddDate(0, 0, -5)
	recent, err := f.consultations.Create(ctx, teacher.ID, "Недавняя", recentDate, recentDate, recentDate.Add(time.Hour), nil, false)
	require.NoError(t, err)

	// Записи создаются напрямую: обе консультации уже не open
	regs := &memRegistrations{f.db}
	require.NoError(t, regs.Create(ctx, &model.Registration{StudentID: a.ID, ConsultationID: old.ID}))
	require.NoError(t, regs.Create(ctx, &model.Registration{StudentID: a.ID, ConsultationID: recent.ID}))

	// Act
	deletedRegs, deletedConsultations, err := f.consultations.DeleteOld(ctx)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int64(1), deletedRegs)
	assert.Equal(t, int64(1), deletedConsultations)

	stored, err := f.consultations.FindByID(ctx, recent.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func Test_Subscribe_and_Unsubscribe_roundtrip(t *testing.T) {
	f := newLifecycleFixture()
	teacher := f.addTeacher(100, "Иван")
	a := f.addStudent(101, "Анна")
	ctx := context.Background()

	outcome, err := f.registrations.Subscribe(ctx, a.ID, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscribeOK, outcome)

	outcome, err = f.registrations.Subscribe(ctx, a.ID, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscribeAlready, outcome)

	subscribed, err := f.registrations.IsSubscribed(ctx, a.ID, teacher.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	outcome, err = f.registrations.Unsubscribe(ctx, a.ID, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscribeOK, outcome)

	outcome, err = f.registrations.Unsubscribe(ctx, a.ID, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscribeNotSubscribed, outcome)
}

// blindRegistrations скрывает существующие записи от предварительной
// проверки, имитируя окно между проверкой дубликата и вставкой
// при двух параллельных запросах одного студента.
type blindRegistrations struct{ *memRegistrations }

func (b *blindRegistrations) GetByStudentAndConsultation(context.Context, int64, int64) (*model.Registration, error) {
	return nil, nil
}

func Test_Register_reports_already_registered_on_unique_violation(t *testing.T) {
	// Arrange: первая запись уже в базе, но проверка дубликата её не видит
	db := newMemDB()
	locks := lock.NewKeyedMutex()
	logger := zap.NewNop()
	cs := NewConsultationService(&memConsultations{db}, &memRegistrations{db}, locks, logger)
	rs := NewRegistrationService(
		&memConsultations{db},
		&blindRegistrations{&memRegistrations{db}},
		&memSubscriptions{db},
		cs, locks, logger,
	)

	teacher := db.addUser(&model.User{TelegramID: 100, FirstName: "Иван", Role: model.RoleTeacher, HasConfirmed: true})
	student := db.addUser(&model.User{TelegramID: 101, FirstName: "Анна", Role: model.RoleStudent, HasConfirmed: true})

	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.Local)
	start := time.Date(2026, 9, 15, 14, 0, 0, 0, time.Local)
	end := time.Date(2026, 9, 15, 16, 0, 0, 0, time.Local)
	c, err := cs.Create(context.Background(), teacher.ID, "Матанализ", date, start, end, nil, false)
	require.NoError(t, err)

	err = (&memRegistrations{db}).Create(context.Background(), &model.Registration{
		StudentID:      student.ID,
		ConsultationID: c.ID,
	})
	require.NoError(t, err)

	// Act: повторная вставка упирается в уникальный индекс
	res, err := rs.Register(context.Background(), student.ID, c.ID, "")

	// Assert: нарушение уникальности отдаётся как "уже записан", не как ошибка
	require.NoError(t, err)
	assert.Equal(t, RegisterAlreadyRegistered, res.Outcome)

	count, err := cs.RegisteredCount(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// blindSubscriptions прячет существующую подписку от проверки Exists
type blindSubscriptions struct{ *memSubscriptions }

func (b *blindSubscriptions) Exists(context.Context, int64, int64) (bool, error) {
	return false, nil
}

func Test_Subscribe_reports_already_subscribed_on_unique_violation(t *testing.T) {
	// Arrange
	db := newMemDB()
	locks := lock.NewKeyedMutex()
	logger := zap.NewNop()
	cs := NewConsultationService(&memConsultations{db}, &memRegistrations{db}, locks, logger)
	rs := NewRegistrationService(
		&memConsultations{db},
		&memRegistrations{db},
		&blindSubscriptions{&memSubscriptions{db}},
		cs, locks, logger,
	)

	teacher := db.addUser(&model.User{TelegramID: 100, FirstName: "Иван", Role: model.RoleTeacher, HasConfirmed: true})
	student := db.addUser(&model.User{TelegramID: 101, FirstName: "Анна", Role: model.RoleStudent, HasConfirmed: true})

	err := (&memSubscriptions{db}).Create(context.Background(), &model.Subscription{
		StudentID: student.ID,
		TeacherID: teacher.ID,
	})
	require.NoError(t, err)

	// Act
	outcome, err := rs.Subscribe(context.Background(), student.ID, teacher.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, SubscribeAlready, outcome)
}
