package lock

import "sync"

// KeyedMutex сериализует операции по идентификатору сущности.
// Операции с разными ключами выполняются параллельно, с одним ключом - по очереди.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		entries: make(map[int64]*entry),
	}
}

// Lock захватывает мьютекс для ключа и возвращает функцию освобождения.
// Запись в таблице удаляется, когда последний владелец отпускает ключ.
func (k *KeyedMutex) Lock(key int64) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
