package handlers

import (
	"consultation-bot/internal/model"
	"github.com/go-telegram/bot/models"
)

// Максимум нумерованных кнопок в списке
const maxListButtons = 10

func row(buttons ...string) []models.KeyboardButton {
	r := make([]models.KeyboardButton, 0, len(buttons))
	for _, text := range buttons {
		r = append(r, models.KeyboardButton{Text: text})
	}
	return r
}

func keyboard(rows ...[]models.KeyboardButton) *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
	}
}

// RoleKeyboard - выбор роли при регистрации
func RoleKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnRoleStudent, BtnRoleTeacher),
		row(BtnRoleDeanery),
	)
}

// StudentMenuKeyboard - главное меню студента
func StudentMenuKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnTeachersMenu),
		row(BtnSubscriptions, BtnMyRegistrations),
		row(BtnRequestConsultation, BtnViewRequests),
		row(BtnProfile, BtnHelp),
	)
}

// TeacherMenuKeyboard - главное меню преподавателя
func TeacherMenuKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnCreateConsultation, BtnMyConsultations),
		row(BtnViewRequests, BtnMyTasks),
		row(BtnProfile, BtnHelp),
	)
}

// DeaneryMenuKeyboard - главное меню сотрудника деканата
func DeaneryMenuKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnTeachersMenu, BtnAllTasks),
		row(BtnProfile, BtnHelp),
	)
}

// TeachersMenuKeyboard - меню раздела преподавателей
func TeachersMenuKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnAllTeachers, BtnSearchTeacher),
		row(BtnBack),
	)
}

// TeacherListKeyboard - список преподавателей кнопками
func TeacherListKeyboard(teachers []*model.User) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(teachers)+2)
	for i, teacher := range teachers {
		if i >= maxListButtons {
			break
		}
		rows = append(rows, row(TeacherPrefix+teacher.FullName()))
	}
	rows = append(rows, row(BtnSearchTeacher))
	rows = append(rows, row(BtnBack))
	return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

// consultationListKeyboard строит список консультаций кнопками
// со строкой фильтров сверху
func consultationListKeyboard(consultations []*model.Consultation, extra ...[]models.KeyboardButton) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(consultations)+3)
	rows = append(rows, row(BtnFilterPast, BtnFilterAll, BtnFilterFuture))
	for i, c := range consultations {
		if i >= maxListButtons {
			break
		}
		rows = append(rows, row(ConsultationButton(c)))
	}
	rows = append(rows, extra...)
	rows = append(rows, row(BtnBack))
	return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

// TeacherConsultationsKeyboard - консультации выбранного преподавателя (студент)
func TeacherConsultationsKeyboard(consultations []*model.Consultation, subscribed bool) *models.ReplyKeyboardMarkup {
	subscribeBtn := BtnSubscribe
	if subscribed {
		subscribeBtn = BtnUnsubscribe
	}
	return consultationListKeyboard(consultations, row(subscribeBtn))
}

// MyConsultationsKeyboard - список консультаций преподавателя
func MyConsultationsKeyboard(consultations []*model.Consultation) *models.ReplyKeyboardMarkup {
	return consultationListKeyboard(consultations)
}

// StudentConsultationKeyboard - действия студента с консультацией
func StudentConsultationKeyboard(registered bool) *models.ReplyKeyboardMarkup {
	actionBtn := BtnRegister
	if registered {
		actionBtn = BtnCancelRegistration
	}
	return keyboard(
		row(actionBtn),
		row(BtnBack),
	)
}

// TeacherConsultationKeyboard - действия преподавателя с консультацией
func TeacherConsultationKeyboard(c *model.Consultation) *models.ReplyKeyboardMarkup {
	toggleBtn := BtnCloseRegistration
	if c.Status == model.StatusClosed {
		toggleBtn = BtnOpenRegistration
	}
	return keyboard(
		row(BtnViewStudents),
		row(toggleBtn, BtnEditConsultation),
		row(BtnCancelConsultation),
		row(BtnBack),
	)
}

// EditConsultationKeyboard - выбор поля для редактирования
func EditConsultationKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnEditTitle, BtnEditDateTime),
		row(BtnEditCapacity, BtnEditAutoClose),
		row(BtnBack),
	)
}

// RequestListKeyboard - список запросов консультаций
func RequestListKeyboard(requests []*model.Consultation, counts map[int64]int64) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(requests)+1)
	for i, r := range requests {
		if i >= maxListButtons {
			break
		}
		rows = append(rows, row(RequestButton(r, counts[r.ID])))
	}
	rows = append(rows, row(BtnBack))
	return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

// StudentRequestKeyboard - действия студента с запросом
func StudentRequestKeyboard(registered bool) *models.ReplyKeyboardMarkup {
	actionBtn := BtnRegisterForRequest
	if registered {
		actionBtn = BtnUnregisterFromRequest
	}
	return keyboard(
		row(actionBtn),
		row(BtnBack),
	)
}

// TeacherRequestKeyboard - действия преподавателя с запросом
func TeacherRequestKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnAcceptRequest),
		row(BtnBack),
	)
}

// TaskListKeyboard - список задач со строкой фильтров
func TaskListKeyboard(tasks []*model.TodoTask, withCreate bool) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(tasks)+3)
	rows = append(rows, row(BtnFilterTaskIncomplete, BtnFilterTaskAll, BtnFilterTaskCompleted))
	for i, t := range tasks {
		if i >= maxListButtons {
			break
		}
		rows = append(rows, row(TaskButton(t)))
	}
	if withCreate {
		rows = append(rows, row(BtnCreateTask))
	}
	rows = append(rows, row(BtnBack))
	return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

// TeacherTaskKeyboard - действия преподавателя с задачей
func TeacherTaskKeyboard(t *model.TodoTask) *models.ReplyKeyboardMarkup {
	if t.IsCompleted {
		return keyboard(row(BtnBack))
	}
	return keyboard(
		row(BtnMarkCompleted),
		row(BtnBack),
	)
}

// DeaneryTaskKeyboard - действия деканата с задачей
func DeaneryTaskKeyboard(t *model.TodoTask) *models.ReplyKeyboardMarkup {
	rows := [][]models.KeyboardButton{}
	if t.IsCompleted {
		rows = append(rows, row(BtnMarkPending))
	} else {
		rows = append(rows, row(BtnMarkCompleted))
	}
	rows = append(rows, row(BtnEditTask, BtnDeleteTask))
	rows = append(rows, row(BtnBack))
	return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

// DeaneryEditTaskKeyboard - выбор изменяемого поля задачи
func DeaneryEditTaskKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnEditTaskTitle),
		row(BtnEditTaskDescription),
		row(BtnEditTaskDeadline),
		row(BtnBack),
	)
}

// DeaneryTeacherKeyboard - действия деканата с преподавателем
func DeaneryTeacherKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnTeacherTasks, BtnCreateTask),
		row(BtnBack),
	)
}

// ProfileKeyboard - редактирование профиля
func ProfileKeyboard(showReminder bool) *models.ReplyKeyboardMarkup {
	rows := [][]models.KeyboardButton{
		row(BtnEditFirstName, BtnEditLastName),
	}
	if showReminder {
		rows = append(rows, row(BtnEditReminderTime))
	}
	rows = append(rows, row(BtnBack))
	return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

// CancelKeyboard - единственная кнопка отмены во время диалога
func CancelKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(row(BtnCancel))
}

// ReminderKeyboard - выбор времени напоминаний о задачах
func ReminderKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row("⏱️ 15 минут", "⏱️ 30 минут"),
		row("⏱️ 1 час", "⏱️ 1 день"),
		row(BtnCancel),
	)
}

// keyboardSkipCancel - пропуск необязательного шага диалога
func keyboardSkipCancel() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnSkip),
		row(BtnCancel),
	)
}

// YesNoKeyboard - выбор Да/Нет с отменой
func YesNoKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard(
		row(BtnYes, BtnNo),
		row(BtnCancel),
	)
}
