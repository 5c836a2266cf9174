package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"consultation-bot/internal/controller/state"
	"consultation-bot/internal/lock"
	"consultation-bot/internal/model"
	"consultation-bot/internal/service"
)

// telegramStub принимает вызовы Bot API и запоминает тексты сообщений
type telegramStub struct {
	mu    sync.Mutex
	texts []string
}

func (s *telegramStub) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	// Текст достаётся из JSON либо из form-data, смотря как кодирует клиент
	var params struct {
		Text string `json:"text"`
	}
	_ = json.Unmarshal(body, &params)
	text := params.Text
	if text == "" {
		r.Body = io.NopCloser(bytes.NewReader(body))
		text = r.FormValue("text")
	}
	if text != "" {
		s.mu.Lock()
		s.texts = append(s.texts, text)
		s.mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`))
}

func (s *telegramStub) sawText(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, text := range s.texts {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

// Минимальные хранилища для диалоговых тестов

type stubConsultations struct {
	mu   sync.Mutex
	byID map[int64]*model.Consultation
	regs *stubRegistrations
}

func (s *stubConsultations) Create(_ context.Context, c *model.Consultation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[c.ID] = c
	return nil
}

func (s *stubConsultations) GetByID(_ context.Context, id int64) (*model.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id], nil
}

func (s *stubConsultations) Update(_ context.Context, c *model.Consultation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[c.ID] = c
	return nil
}

func (s *stubConsultations) GetByTeacher(context.Context, int64) ([]*model.Consultation, error) {
	return nil, nil
}

func (s *stubConsultations) GetByTeacherAndStatus(context.Context, int64, model.ConsultationStatus) ([]*model.Consultation, error) {
	return nil, nil
}

func (s *stubConsultations) GetByStatus(context.Context, model.ConsultationStatus) ([]*model.Consultation, error) {
	return nil, nil
}

func (s *stubConsultations) CountRegistrations(_ context.Context, consultationID int64) (int64, error) {
	s.regs.mu.Lock()
	defer s.regs.mu.Unlock()
	var n int64
	for _, reg := range s.regs.items {
		if reg.ConsultationID == consultationID {
			n++
		}
	}
	return n, nil
}

func (s *stubConsultations) GetExpiredOpen(context.Context, time.Time) ([]*model.Consultation, error) {
	return nil, nil
}

func (s *stubConsultations) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *stubConsultations) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

type stubRegistrations struct {
	mu     sync.Mutex
	nextID int64
	items  []*model.Registration
}

func (s *stubRegistrations) Create(_ context.Context, reg *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	reg.ID = s.nextID
	cp := *reg
	s.items = append(s.items, &cp)
	return nil
}

func (s *stubRegistrations) GetByStudentAndConsultation(_ context.Context, studentID, consultationID int64) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.items {
		if reg.StudentID == studentID && reg.ConsultationID == consultationID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubRegistrations) GetByConsultation(context.Context, int64) ([]*model.Registration, error) {
	return nil, nil
}

func (s *stubRegistrations) GetByStudent(context.Context, int64) ([]*model.Registration, error) {
	return nil, nil
}

func (s *stubRegistrations) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, reg := range s.items {
		if reg.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *stubRegistrations) DeleteByConsultation(context.Context, int64) (int64, error) {
	return 0, nil
}

func (s *stubRegistrations) DeleteByConsultationDateBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type stubSubscriptions struct{}

func (stubSubscriptions) Create(context.Context, *model.Subscription) error { return nil }
func (stubSubscriptions) Exists(context.Context, int64, int64) (bool, error) {
	return false, nil
}
func (stubSubscriptions) GetByTeacher(context.Context, int64) ([]*model.Subscription, error) {
	return nil, nil
}
func (stubSubscriptions) GetByStudent(context.Context, int64) ([]*model.Subscription, error) {
	return nil, nil
}
func (stubSubscriptions) Delete(context.Context, int64, int64) error { return nil }

// dialogFixture собирает обработчик с заглушкой Bot API
type dialogFixture struct {
	handlers *Handlers
	bot      *bot.Bot
	telegram *telegramStub
	regs     *stubRegistrations
	cons     *stubConsultations
}

func newDialogFixture(t *testing.T) *dialogFixture {
	t.Helper()

	tg := &telegramStub{}
	srv := httptest.NewServer(http.HandlerFunc(tg.handler))
	t.Cleanup(srv.Close)

	b, err := bot.New("test-token",
		bot.WithServerURL(srv.URL),
		bot.WithSkipGetMe(),
	)
	require.NoError(t, err)

	regs := &stubRegistrations{}
	cons := &stubConsultations{byID: map[int64]*model.Consultation{}, regs: regs}
	locks := lock.NewKeyedMutex()
	logger := zap.NewNop()

	lifecycle := service.NewConsultationService(cons, regs, locks, logger)
	registrations := service.NewRegistrationService(cons, regs, stubSubscriptions{}, lifecycle, locks, logger)

	h := NewHandlers(nil, lifecycle, registrations, nil, nil, logger)
	return &dialogFixture{handlers: h, bot: b, telegram: tg, regs: regs, cons: cons}
}

func Test_request_registration_asks_for_message_before_joining(t *testing.T) {
	// Arrange: студент смотрит карточку запроса
	f := newDialogFixture(t)
	ctx := context.Background()
	chatID := int64(1001)
	student := &model.User{ID: 5, TelegramID: chatID, FirstName: "Анна", Role: model.RoleStudent, HasConfirmed: true}

	f.cons.byID[42] = &model.Consultation{ID: 42, Title: "Линейная алгебра", TeacherID: 7, Status: model.StatusRequest}
	f.handlers.studentStates.SetState(chatID, state.StudentViewingRequest)
	f.handlers.studentStates.SetConsultation(chatID, 42)

	// Act: кнопка записи сначала спрашивает тему
	f.handlers.handleStudent(ctx, f.bot, chatID, student, BtnRegisterForRequest)

	// Assert: записи ещё нет, бот ждёт текст
	assert.Empty(t, f.regs.items)
	assert.Equal(t, state.StudentEnteringReqMessage, f.handlers.studentStates.State(chatID))
	assert.True(t, f.telegram.sawText("Укажите тему или вопрос"))

	// Act: студент отвечает текстом
	f.handlers.handleStudent(ctx, f.bot, chatID, student, "Тоже нужна эта тема")

	// Assert: запись создана с сообщением студента
	require.Len(t, f.regs.items, 1)
	assert.Equal(t, int64(42), f.regs.items[0].ConsultationID)
	assert.Equal(t, student.ID, f.regs.items[0].StudentID)
	assert.Equal(t, "Тоже нужна эта тема", f.regs.items[0].Message)
	assert.Equal(t, state.StudentDefault, f.handlers.studentStates.State(chatID))
	assert.True(t, f.telegram.sawText("Вы записались на запрос"))
}

func Test_request_registration_skip_joins_without_message(t *testing.T) {
	// Arrange
	f := newDialogFixture(t)
	ctx := context.Background()
	chatID := int64(1002)
	student := &model.User{ID: 6, TelegramID: chatID, FirstName: "Борис", Role: model.RoleStudent, HasConfirmed: true}

	f.cons.byID[42] = &model.Consultation{ID: 42, Title: "Линейная алгебра", TeacherID: 7, Status: model.StatusRequest}
	f.handlers.studentStates.SetState(chatID, state.StudentViewingRequest)
	f.handlers.studentStates.SetConsultation(chatID, 42)
	f.handlers.handleStudent(ctx, f.bot, chatID, student, BtnRegisterForRequest)

	// Act
	f.handlers.handleStudent(ctx, f.bot, chatID, student, BtnSkip)

	// Assert
	require.Len(t, f.regs.items, 1)
	assert.Equal(t, "", f.regs.items[0].Message)
}

func Test_request_registration_cancel_leaves_request_untouched(t *testing.T) {
	// Arrange
	f := newDialogFixture(t)
	ctx := context.Background()
	chatID := int64(1003)
	student := &model.User{ID: 8, TelegramID: chatID, FirstName: "Вера", Role: model.RoleStudent, HasConfirmed: true}

	f.cons.byID[42] = &model.Consultation{ID: 42, Title: "Линейная алгебра", TeacherID: 7, Status: model.StatusRequest}
	f.handlers.studentStates.SetState(chatID, state.StudentViewingRequest)
	f.handlers.studentStates.SetConsultation(chatID, 42)
	f.handlers.handleStudent(ctx, f.bot, chatID, student, BtnRegisterForRequest)

	// Act
	f.handlers.handleStudent(ctx, f.bot, chatID, student, BtnCancel)

	// Assert
	assert.Empty(t, f.regs.items)
	assert.Equal(t, state.StudentDefault, f.handlers.studentStates.State(chatID))
}
