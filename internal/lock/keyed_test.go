package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_KeyedMutex_serializes_same_key(t *testing.T) {
	// Arrange
	km := NewKeyedMutex()
	const workers = 50
	counter := 0

	// Act: конкурентный инкремент под одним ключом
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(7)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, workers, counter)
}

func Test_KeyedMutex_different_keys_do_not_block(t *testing.T) {
	// Arrange: ключ 1 захвачен, ключ 2 должен быть доступен сразу
	km := NewKeyedMutex()
	unlock1 := km.Lock(1)
	defer unlock1()

	done := make(chan struct{})

	// Act
	go func() {
		unlock2 := km.Lock(2)
		unlock2()
		close(done)
	}()

	// Assert: без таймаута - при взаимной блокировке тест повиснет и упадёт
	<-done
}

func Test_KeyedMutex_cleans_up_released_keys(t *testing.T) {
	// Arrange
	km := NewKeyedMutex()

	// Act
	unlock := km.Lock(42)
	unlock()

	// Assert: таблица не растёт с каждым ключом
	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.entries)
}

func Test_KeyedMutex_reacquire_after_unlock(t *testing.T) {
	km := NewKeyedMutex()

	unlock := km.Lock(5)
	unlock()
	unlock = km.Lock(5)
	unlock()
}
