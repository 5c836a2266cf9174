package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"consultation-bot/internal/model"
)

// memDB - общие данные in-memory хранилищ для тестов сервисов.
// Типы-обёртки ниже реализуют интерфейсы хранилищ поверх одних и тех же карт,
// повторяя семантику пакета repository, включая подгрузку связанных
// пользователей там, где репозиторий делает JOIN.
type memDB struct {
	mu            sync.Mutex
	nextID        int64
	consultations map[int64]*model.Consultation
	registrations map[int64]*model.Registration
	subscriptions map[int64]*model.Subscription
	users         map[int64]*model.User
	todos         map[int64]*model.TodoTask
	admins        map[string]*model.AdminUser
}

func newMemDB() *memDB {
	return &memDB{
		consultations: make(map[int64]*model.Consultation),
		registrations: make(map[int64]*model.Registration),
		subscriptions: make(map[int64]*model.Subscription),
		users:         make(map[int64]*model.User),
		todos:         make(map[int64]*model.TodoTask),
		admins:        make(map[string]*model.AdminUser),
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) addUser(u *model.User) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u.ID = db.id()
	cp := *u
	db.users[u.ID] = &cp
	return u
}

// ========== ConsultationStore ==========

type memConsultations struct{ db *memDB }

func (m *memConsultations) Create(_ context.Context, c *model.Consultation) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c.ID = m.db.id()
	c.CreatedAt = time.Now()
	cp := *c
	m.db.consultations[c.ID] = &cp
	return nil
}

func (m *memConsultations) GetByID(_ context.Context, id int64) (*model.Consultation, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.consultations[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memConsultations) Update(_ context.Context, c *model.Consultation) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *c
	m.db.consultations[c.ID] = &cp
	return nil
}

func (m *memConsultations) GetByTeacher(_ context.Context, teacherID int64) ([]*model.Consultation, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Consultation
	for _, c := range m.db.consultations {
		if c.TeacherID == teacherID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memConsultations) GetByTeacherAndStatus(_ context.Context, teacherID int64, status model.ConsultationStatus) ([]*model.Consultation, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Consultation
	for _, c := range m.db.consultations {
		if c.TeacherID == teacherID && c.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memConsultations) GetByStatus(_ context.Context, status model.ConsultationStatus) ([]*model.Consultation, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Consultation
	for _, c := range m.db.consultations {
		if c.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memConsultations) CountRegistrations(_ context.Context, consultationID int64) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, reg := range m.db.registrations {
		if reg.ConsultationID == consultationID {
			n++
		}
	}
	return n, nil
}

func (m *memConsultations) GetExpiredOpen(_ context.Context, before time.Time) ([]*model.Consultation, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Consultation
	for _, c := range m.db.consultations {
		if c.Status == model.StatusOpen && c.Date != nil && c.Date.Before(before) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memConsultations) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for id, c := range m.db.consultations {
		if c.Date != nil && c.Date.Before(before) {
			delete(m.db.consultations, id)
			n++
		}
	}
	return n, nil
}

func (m *memConsultations) Delete(_ context.Context, id int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.consultations, id)
	return nil
}

// ========== RegistrationStore ==========

type memRegistrations struct{ db *memDB }

func (m *memRegistrations) Create(_ context.Context, reg *model.Registration) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, r := range m.db.registrations {
		if r.StudentID == reg.StudentID && r.ConsultationID == reg.ConsultationID {
			return fmt.Errorf("create registration: %w", ErrDuplicate)
		}
	}
	reg.ID = m.db.id()
	reg.CreatedAt = time.Now()
	cp := *reg
	m.db.registrations[reg.ID] = &cp
	return nil
}

func (m *memRegistrations) GetByStudentAndConsultation(_ context.Context, studentID, consultationID int64) (*model.Registration, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, reg := range m.db.registrations {
		if reg.StudentID == studentID && reg.ConsultationID == consultationID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRegistrations) GetByConsultation(_ context.Context, consultationID int64) ([]*model.Registration, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Registration
	for _, reg := range m.db.registrations {
		if reg.ConsultationID == consultationID {
			cp := *reg
			cp.Student = m.db.users[reg.StudentID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRegistrations) GetByStudent(_ context.Context, studentID int64) ([]*model.Registration, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Registration
	for _, reg := range m.db.registrations {
		if reg.StudentID == studentID {
			cp := *reg
			cp.Consultation = m.db.consultations[reg.ConsultationID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRegistrations) Delete(_ context.Context, id int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.registrations, id)
	return nil
}

func (m *memRegistrations) DeleteByConsultation(_ context.Context, consultationID int64) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for id, reg := range m.db.registrations {
		if reg.ConsultationID == consultationID {
			delete(m.db.registrations, id)
			n++
		}
	}
	return n, nil
}

func (m *memRegistrations) DeleteByConsultationDateBefore(_ context.Context, before time.Time) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for id, reg := range m.db.registrations {
		c, ok := m.db.consultations[reg.ConsultationID]
		if ok && c.Date != nil && c.Date.Before(before) {
			delete(m.db.registrations, id)
			n++
		}
	}
	return n, nil
}

// ========== SubscriptionStore ==========

type memSubscriptions struct{ db *memDB }

func (m *memSubscriptions) Create(_ context.Context, sub *model.Subscription) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, s := range m.db.subscriptions {
		if s.StudentID == sub.StudentID && s.TeacherID == sub.TeacherID {
			return fmt.Errorf("create subscription: %w", ErrDuplicate)
		}
	}
	sub.ID = m.db.id()
	sub.CreatedAt = time.Now()
	cp := *sub
	m.db.subscriptions[sub.ID] = &cp
	return nil
}

func (m *memSubscriptions) Exists(_ context.Context, studentID, teacherID int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, sub := range m.db.subscriptions {
		if sub.StudentID == studentID && sub.TeacherID == teacherID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memSubscriptions) GetByTeacher(_ context.Context, teacherID int64) ([]*model.Subscription, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Subscription
	for _, sub := range m.db.subscriptions {
		if sub.TeacherID == teacherID {
			cp := *sub
			cp.Student = m.db.users[sub.StudentID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubscriptions) GetByStudent(_ context.Context, studentID int64) ([]*model.Subscription, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Subscription
	for _, sub := range m.db.subscriptions {
		if sub.StudentID == studentID {
			cp := *sub
			cp.Teacher = m.db.users[sub.TeacherID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubscriptions) Delete(_ context.Context, studentID, teacherID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, sub := range m.db.subscriptions {
		if sub.StudentID == studentID && sub.TeacherID == teacherID {
			delete(m.db.subscriptions, id)
		}
	}
	return nil
}

// ========== UserStore ==========

type memUsers struct{ db *memDB }

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, u := range m.db.users {
		if u.TelegramID == user.TelegramID {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
	}
	user.ID = m.db.id()
	user.CreatedAt = time.Now()
	cp := *user
	m.db.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, u := range m.db.users {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u, ok := m.db.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetTeachers(_ context.Context) ([]*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.User
	for _, u := range m.db.users {
		if u.Role == model.RoleTeacher && u.HasConfirmed {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUsers) SearchTeachers(_ context.Context, query string) ([]*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	q := strings.ToLower(query)
	var out []*model.User
	for _, u := range m.db.users {
		if u.Role != model.RoleTeacher || !u.HasConfirmed {
			continue
		}
		name := strings.ToLower(u.FirstName + " " + u.LastName)
		if strings.Contains(name, q) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUsers) GetByConfirmation(_ context.Context, confirmed bool) ([]*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.User
	for _, u := range m.db.users {
		if u.HasConfirmed == confirmed {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, user *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *user
	m.db.users[user.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.users, id)
	return nil
}

// ========== TodoStore ==========

type memTodos struct{ db *memDB }

func (m *memTodos) Create(_ context.Context, t *model.TodoTask) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	t.ID = m.db.id()
	t.CreatedAt = time.Now()
	cp := *t
	m.db.todos[t.ID] = &cp
	return nil
}

func (m *memTodos) GetByID(_ context.Context, id int64) (*model.TodoTask, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	t, ok := m.db.todos[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTodos) GetAll(_ context.Context) ([]*model.TodoTask, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.TodoTask
	for _, t := range m.db.todos {
		cp := *t
		cp.Teacher = m.db.users[t.TeacherID]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memTodos) GetByTeacher(_ context.Context, teacherID int64) ([]*model.TodoTask, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.TodoTask
	for _, t := range m.db.todos {
		if t.TeacherID == teacherID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTodos) GetPendingWithDeadlineAfter(_ context.Context, after time.Time) ([]*model.TodoTask, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.TodoTask
	for _, t := range m.db.todos {
		if !t.IsCompleted && !t.ReminderSent && t.Deadline != nil && t.Deadline.After(after) {
			cp := *t
			cp.Teacher = m.db.users[t.TeacherID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTodos) Update(_ context.Context, t *model.TodoTask) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *t
	cp.Teacher = nil
	m.db.todos[t.ID] = &cp
	return nil
}

func (m *memTodos) Delete(_ context.Context, id int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.todos, id)
	return nil
}

// ========== AdminStore ==========

type memAdmins struct{ db *memDB }

func (m *memAdmins) GetByLogin(_ context.Context, login string) (*model.AdminUser, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	a, ok := m.db.admins[login]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// ========== Messenger ==========

// sentMessage - одна попытка отправки, записанная фейковым мессенджером
type sentMessage struct {
	ChatID int64
	Text   string
}

// recordingMessenger запоминает все отправленные сообщения.
// Для чатов из failFor отправка завершается ошибкой.
type recordingMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]error
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{failFor: make(map[int64]error)}
}

func (r *recordingMessenger) SendText(_ context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failFor[chatID]; ok {
		return err
	}
	r.sent = append(r.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (r *recordingMessenger) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

func (r *recordingMessenger) chatIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int64
	for _, msg := range r.sent {
		out = append(out, msg.ChatID)
	}
	return out
}
