package handlers

import (
	"errors"
	"strconv"
	"strings"
)

// ErrBadSelector - номер после № не удалось разобрать
var ErrBadSelector = errors.New("malformed numeric selector")

// ParseSelector разбирает токен вида "№<число>[ остальное]".
// Возвращает номер и остаток строки после номера.
// Кнопки списков выглядят как "№12 Матанализ 03.10 14:00",
// пользователь также может ввести "№12" вручную.
func ParseSelector(text string) (int64, string, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, NumberPrefix) {
		return 0, "", ErrBadSelector
	}

	rest := text[len(NumberPrefix):]
	digitsEnd := 0
	for digitsEnd < len(rest) && rest[digitsEnd] >= '0' && rest[digitsEnd] <= '9' {
		digitsEnd++
	}
	if digitsEnd == 0 {
		return 0, "", ErrBadSelector
	}

	id, err := strconv.ParseInt(rest[:digitsEnd], 10, 64)
	if err != nil {
		return 0, "", ErrBadSelector
	}

	return id, strings.TrimSpace(rest[digitsEnd:]), nil
}

// IsSelector сообщает, похоже ли сообщение на выбор нумерованного пункта
func IsSelector(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), NumberPrefix)
}
