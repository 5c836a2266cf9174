package handlers

import (
	"fmt"
	"strings"

	"consultation-bot/internal/model"
)

// Форматтеры дат для сообщений и кнопок
const (
	dateLayout       = "02.01.2006"
	timeLayout       = "15:04"
	buttonDateLayout = "02.01"
	deadlineLayout   = "02.01.2006 15:04"
)

// statusDisplay возвращает emoji и текст статуса консультации
func statusDisplay(status model.ConsultationStatus) (string, string) {
	switch status {
	case model.StatusOpen:
		return "🟢", "запись открыта"
	case model.StatusClosed:
		return "🔒", "запись закрыта"
	case model.StatusCancelled:
		return "❌", "отменена"
	case model.StatusRequest:
		return "❓", "запрос"
	default:
		return "", string(status)
	}
}

// FormatConsultation форматирует карточку консультации
func FormatConsultation(c *model.Consultation, registered int64) string {
	emoji, statusText := statusDisplay(c.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s №%d %s\n\n", emoji, c.ID, c.Title)
	if c.Teacher != nil {
		fmt.Fprintf(&sb, "👨‍🏫 %s\n", c.Teacher.FullName())
	}
	if c.Date != nil && c.StartTime != nil && c.EndTime != nil {
		fmt.Fprintf(&sb, "📅 %s с %s до %s\n",
			c.Date.Format(dateLayout),
			c.StartTime.Format(timeLayout),
			c.EndTime.Format(timeLayout))
	}
	if c.Capacity != nil {
		fmt.Fprintf(&sb, "👥 Записано: %d из %d\n", registered, *c.Capacity)
	} else {
		fmt.Fprintf(&sb, "👥 Записано: %d\n", registered)
	}
	fmt.Fprintf(&sb, "📊 Статус: %s", statusText)
	if c.Status == model.StatusCancelled && c.ClosedReason != "" {
		fmt.Fprintf(&sb, "\nПричина: %s", c.ClosedReason)
	}

	return sb.String()
}

// ConsultationButton форматирует консультацию для кнопки списка
func ConsultationButton(c *model.Consultation) string {
	label := fmt.Sprintf("%s%d %s", NumberPrefix, c.ID, c.Title)
	if c.Date != nil && c.StartTime != nil {
		label += fmt.Sprintf(" %s %s",
			c.Date.Format(buttonDateLayout),
			c.StartTime.Format(timeLayout))
	}
	return label
}

// RequestButton форматирует запрос консультации для кнопки списка
func RequestButton(c *model.Consultation, interested int64) string {
	return fmt.Sprintf("%s%d %s (%d)", NumberPrefix, c.ID, c.Title, interested)
}

// TaskButton форматирует задачу для кнопки списка
func TaskButton(t *model.TodoTask) string {
	prefix := "⏳ "
	if t.IsCompleted {
		prefix = "✅ "
	}
	return fmt.Sprintf("%s%s%d %s", prefix, NumberPrefix, t.ID, t.Title)
}

// FormatTask форматирует карточку задачи
func FormatTask(t *model.TodoTask) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 №%d %s\n", t.ID, t.Title)
	if t.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", t.Description)
	}
	if t.Teacher != nil {
		fmt.Fprintf(&sb, "\n👨‍🏫 %s\n", t.Teacher.FullName())
	}
	if t.Deadline != nil {
		fmt.Fprintf(&sb, "⏰ Срок: %s\n", t.Deadline.Format(deadlineLayout))
	}
	if t.IsCompleted {
		sb.WriteString("📊 Статус: выполнена")
		if t.CompletedAt != nil {
			fmt.Fprintf(&sb, " (%s)", t.CompletedAt.Format(deadlineLayout))
		}
	} else {
		sb.WriteString("📊 Статус: не выполнена")
	}
	return sb.String()
}

// FormatRegistrations форматирует список записавшихся студентов
func FormatRegistrations(regs []*model.Registration) string {
	if len(regs) == 0 {
		return "На консультацию пока никто не записан."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Записались (%d):\n\n", len(regs))
	for i, reg := range regs {
		name := "студент"
		if reg.Student != nil {
			name = reg.Student.FullName()
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, name)
		if reg.Message != "" {
			fmt.Fprintf(&sb, " — %s", reg.Message)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatProfile форматирует профиль пользователя
func FormatProfile(u *model.User) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 Ваш профиль\n\n")
	fmt.Fprintf(&sb, "Имя: %s\n", u.FirstName)
	fmt.Fprintf(&sb, "Фамилия: %s\n", u.LastName)
	if u.Phone != "" {
		fmt.Fprintf(&sb, "Телефон: %s\n", u.Phone)
	}
	switch u.Role {
	case model.RoleStudent:
		sb.WriteString("Роль: студент")
	case model.RoleTeacher:
		sb.WriteString("Роль: преподаватель")
		if u.ReminderMinutes != nil {
			fmt.Fprintf(&sb, "\nНапоминания о задачах: за %d мин.", *u.ReminderMinutes)
		}
	case model.RoleDeanery:
		sb.WriteString("Роль: сотрудник деканата")
	}
	return sb.String()
}
