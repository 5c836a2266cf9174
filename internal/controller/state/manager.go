package state

import (
	"sync"
)

// shardCount - число сегментов карты состояний. Степень двойки,
// чтобы выбирать сегмент битовой маской.
const shardCount = 16

// FilterFuture - фильтр консультаций по умолчанию
const FilterFuture = "future"

// Session хранит диалоговый контекст одного пользователя:
// текущий шаг, выбранные сущности и черновик многошагового диалога
type Session[S comparable, D any] struct {
	State          S
	PrevState      S
	ConsultationID int64
	CounterpartID  int64
	Filter         string
	Draft          D
}

type shard[S comparable, D any] struct {
	mu       sync.RWMutex
	sessions map[int64]*Session[S, D]
}

// Manager управляет диалоговыми состояниями пользователей одной роли.
// Карта сегментирована по chat id: пользователи из разных сегментов
// не блокируют друг друга.
type Manager[S comparable, D any] struct {
	shards       [shardCount]shard[S, D]
	defaultState S
}

// NewManager создаёт менеджер, возвращающий defaultState
// для пользователей без активной сессии
func NewManager[S comparable, D any](defaultState S) *Manager[S, D] {
	m := &Manager[S, D]{defaultState: defaultState}
	for i := range m.shards {
		m.shards[i].sessions = make(map[int64]*Session[S, D])
	}
	return m
}

func (m *Manager[S, D]) shardFor(chatID int64) *shard[S, D] {
	return &m.shards[uint64(chatID)&(shardCount-1)]
}

// session возвращает сессию, создавая её при отсутствии.
// Вызывается под write-блокировкой сегмента.
func (sh *shard[S, D]) session(chatID int64, defaultState S) *Session[S, D] {
	s, ok := sh.sessions[chatID]
	if !ok {
		s = &Session[S, D]{
			State:  defaultState,
			Filter: FilterFuture,
		}
		sh.sessions[chatID] = s
	}
	return s
}

// State возвращает текущее состояние пользователя
func (m *Manager[S, D]) State(chatID int64) S {
	sh := m.shardFor(chatID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if s, ok := sh.sessions[chatID]; ok {
		return s.State
	}
	return m.defaultState
}

// SetState переводит пользователя в новое состояние,
// запоминая предыдущее для кнопки "назад"
func (m *Manager[S, D]) SetState(chatID int64, state S) {
	sh := m.shardFor(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s := sh.session(chatID, m.defaultState)
	s.PrevState = s.State
	s.State = state
}

// PrevState возвращает состояние до последнего перехода
func (m *Manager[S, D]) PrevState(chatID int64) S {
	sh := m.shardFor(chatID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if s, ok := sh.sessions[chatID]; ok {
		return s.PrevState
	}
	return m.defaultState
}

// ResetState возвращает пользователя в состояние по умолчанию
// и очищает черновик, сохраняя выбранный фильтр
func (m *Manager[S, D]) ResetState(chatID int64) {
	sh := m.shardFor(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[chatID]
	if !ok {
		return
	}
	s.PrevState = s.State
	s.State = m.defaultState
	s.ConsultationID = 0
	s.CounterpartID = 0
	var zero D
	s.Draft = zero
}

// Get возвращает копию сессии пользователя
func (m *Manager[S, D]) Get(chatID int64) Session[S, D] {
	sh := m.shardFor(chatID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if s, ok := sh.sessions[chatID]; ok {
		return *s
	}
	return Session[S, D]{State: m.defaultState, Filter: FilterFuture}
}

// SetConsultation запоминает консультацию, с которой работает пользователь
func (m *Manager[S, D]) SetConsultation(chatID, consultationID int64) {
	sh := m.shardFor(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.session(chatID, m.defaultState).ConsultationID = consultationID
}

// ConsultationID возвращает выбранную консультацию, 0 если не выбрана
func (m *Manager[S, D]) ConsultationID(chatID int64) int64 {
	sh := m.shardFor(chatID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if s, ok := sh.sessions[chatID]; ok {
		return s.ConsultationID
	}
	return 0
}

// SetCounterpart запоминает выбранного собеседника (преподавателя)
func (m *Manager[S, D]) SetCounterpart(chatID, counterpartID int64) {
	sh := m.shardFor(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.session(chatID, m.defaultState).CounterpartID = counterpartID
}

// CounterpartID возвращает выбранного собеседника, 0 если не выбран
func (m *Manager[S, D]) CounterpartID(chatID int64) int64 {
	sh := m.shardFor(chatID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if s, ok := sh.sessions[chatID]; ok {
		return s.CounterpartID
	}
	return 0
}

// SetFilter запоминает активный фильтр списков
func (m *Manager[S, D]) SetFilter(chatID int64, filter string) {
	sh := m.shardFor(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.session(chatID, m.defaultState).Filter = filter
}

// Filter возвращает активный фильтр, по умолчанию FilterFuture
func (m *Manager[S, D]) Filter(chatID int64) string {
	sh := m.shardFor(chatID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if s, ok := sh.sessions[chatID]; ok && s.Filter != "" {
		return s.Filter
	}
	return FilterFuture
}

// UpdateDraft изменяет черновик пользователя под блокировкой сегмента
func (m *Manager[S, D]) UpdateDraft(chatID int64, fn func(*D)) {
	sh := m.shardFor(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	fn(&sh.session(chatID, m.defaultState).Draft)
}

// Draft возвращает копию черновика пользователя
func (m *Manager[S, D]) Draft(chatID int64) D {
	sh := m.shardFor(chatID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if s, ok := sh.sessions[chatID]; ok {
		return s.Draft
	}
	var zero D
	return zero
}

// Clear полностью удаляет сессию пользователя
func (m *Manager[S, D]) Clear(chatID int64) {
	sh := m.shardFor(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.sessions, chatID)
}
