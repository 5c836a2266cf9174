package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errBadSchedule = errors.New("bad schedule input")

// scheduleInputHint - подсказка формата даты и времени
const scheduleInputHint = "📅 Введите дату и время в формате:\nДД.ММ.ГГГГ ЧЧ:ММ-ЧЧ:ММ\n\nНапример: 15.09.2026 14:00-16:00"

// parseSchedule разбирает строку вида "15.09.2026 14:00-16:00"
func parseSchedule(text string) (date, start, end time.Time, err error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) != 2 {
		return date, start, end, errBadSchedule
	}

	date, err = time.Parse(dateLayout, parts[0])
	if err != nil {
		return date, start, end, errBadSchedule
	}

	times := strings.SplitN(parts[1], "-", 2)
	if len(times) != 2 {
		return date, start, end, errBadSchedule
	}

	startClock, err := time.Parse(timeLayout, times[0])
	if err != nil {
		return date, start, end, errBadSchedule
	}
	endClock, err := time.Parse(timeLayout, times[1])
	if err != nil {
		return date, start, end, errBadSchedule
	}

	start = time.Date(date.Year(), date.Month(), date.Day(),
		startClock.Hour(), startClock.Minute(), 0, 0, time.Local)
	end = time.Date(date.Year(), date.Month(), date.Day(),
		endClock.Hour(), endClock.Minute(), 0, 0, time.Local)

	if !end.After(start) {
		return date, start, end, errBadSchedule
	}

	return date, start, end, nil
}

// parseCapacity разбирает вместимость: положительное число
// или пропуск для консультации без ограничения мест
func parseCapacity(text string) (*int, error) {
	text = strings.TrimSpace(text)
	if text == BtnSkip {
		return nil, nil
	}

	n, err := strconv.Atoi(text)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("capacity must be a positive number")
	}
	return &n, nil
}

// parseReminderMinutes разбирает время напоминаний: кнопка
// с предустановкой или число минут
func parseReminderMinutes(text string) (int, error) {
	switch strings.TrimSpace(text) {
	case "⏱️ 15 минут":
		return 15, nil
	case "⏱️ 30 минут":
		return 30, nil
	case "⏱️ 1 час":
		return 60, nil
	case "⏱️ 1 день":
		return 24 * 60, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("reminder minutes must be a positive number")
	}
	return n, nil
}
