package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"consultation-bot/internal/controller/state"
	"consultation-bot/internal/model"
	"consultation-bot/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

const deaneryHelpText = "📚 Справка для сотрудника деканата:\n\n" +
	"🔍 Преподаватели — список преподавателей и их задач\n" +
	"📝 Создать задачу — назначить задачу выбранному преподавателю\n" +
	"📋 Все задачи — все задачи с фильтрами по статусу\n\n" +
	"Выбирайте пункты списков кнопками №<номер> или вводите номер вручную."

// handleDeanery обрабатывает сообщение сотрудника деканата
func (h *Handlers) handleDeanery(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	st := h.deaneryStates

	// 1. Отмена всегда прерывает текущий диалог.
	// Отмена редактирования поля возвращает к карточке задачи.
	if text == BtnCancel || text == BtnMainMenu {
		if text == BtnCancel {
			switch st.State(chatID) {
			case state.DeaneryEditingTaskTitle,
				state.DeaneryEditingTaskDescription,
				state.DeaneryEditingTaskDeadline:
				h.deaneryShowTask(ctx, b, chatID)
				return
			}
		}
		st.ResetState(chatID)
		h.sendWithKeyboard(ctx, b, chatID, "🏠 Главное меню", DeaneryMenuKeyboard())
		return
	}

	// 2. Состояния, ожидающие текстовый ввод
	switch st.State(chatID) {
	case state.DeanerySearchingTeacher:
		st.SetState(chatID, state.DeaneryDefault)
		h.deaneryShowTeachers(ctx, b, chatID, text)
		return
	case state.DeaneryEnteringTaskTitle:
		h.deaneryTaskTitle(ctx, b, chatID, text)
		return
	case state.DeaneryEnteringTaskDescription:
		h.deaneryTaskDescription(ctx, b, chatID, text)
		return
	case state.DeaneryEnteringTaskDeadline:
		h.deaneryTaskDeadline(ctx, b, chatID, user, text)
		return
	case state.DeaneryEditingTaskTitle:
		h.deaneryEditTaskTitle(ctx, b, chatID, text)
		return
	case state.DeaneryEditingTaskDescription:
		h.deaneryEditTaskDescription(ctx, b, chatID, text)
		return
	case state.DeaneryEditingTaskDeadline:
		h.deaneryEditTaskDeadline(ctx, b, chatID, text)
		return
	case state.DeaneryEnteringFirstName:
		h.deaneryUpdateName(ctx, b, chatID, user, text, user.LastName)
		return
	case state.DeaneryEnteringLastName:
		h.deaneryUpdateName(ctx, b, chatID, user, user.FirstName, text)
		return
	}

	// 3. Структурированные селекторы
	if strings.HasPrefix(text, TeacherPrefix) {
		h.deanerySelectTeacher(ctx, b, chatID, strings.TrimPrefix(text, TeacherPrefix))
		return
	}
	if IsSelector(text) {
		h.deanerySelect(ctx, b, chatID, text)
		return
	}

	// 4. Команды меню и экранов
	switch text {
	case "/start":
		st.ResetState(chatID)
		h.sendWithKeyboard(ctx, b, chatID,
			fmt.Sprintf("👋 Здравствуйте, %s!", user.FirstName),
			DeaneryMenuKeyboard())

	case BtnBack:
		h.deaneryBack(ctx, b, chatID)

	case BtnHelp:
		h.sendMessage(ctx, b, chatID, deaneryHelpText)

	case BtnTeachersMenu:
		st.SetState(chatID, state.DeaneryDefault)
		h.sendWithKeyboard(ctx, b, chatID, "Выберите действие:", TeachersMenuKeyboard())

	case BtnAllTeachers:
		h.deaneryShowTeachers(ctx, b, chatID, "")

	case BtnSearchTeacher:
		st.SetState(chatID, state.DeanerySearchingTeacher)
		h.sendWithKeyboard(ctx, b, chatID,
			"🔍 Введите фамилию или имя преподавателя:", CancelKeyboard())

	case BtnTeacherTasks:
		h.deaneryShowTeacherTasks(ctx, b, chatID)

	case BtnAllTasks:
		h.deaneryShowAllTasks(ctx, b, chatID)

	case BtnFilterTaskIncomplete, BtnFilterTaskAll, BtnFilterTaskCompleted:
		h.deaneryApplyTaskFilter(ctx, b, chatID, text)

	case BtnCreateTask:
		h.deaneryStartTask(ctx, b, chatID)

	case BtnMarkCompleted:
		h.deaneryCompleteTask(ctx, b, chatID)

	case BtnMarkPending:
		h.deaneryReopenTask(ctx, b, chatID)

	case BtnEditTask:
		h.deaneryStartEditTask(ctx, b, chatID)

	case BtnEditTaskTitle, BtnEditTaskDescription, BtnEditTaskDeadline:
		h.deaneryStartEditTaskField(ctx, b, chatID, text)

	case BtnDeleteTask:
		h.deaneryDeleteTask(ctx, b, chatID)

	case BtnProfile:
		st.SetState(chatID, state.DeaneryEditingProfile)
		h.sendWithKeyboard(ctx, b, chatID, FormatProfile(user), ProfileKeyboard(false))

	case BtnEditFirstName:
		st.SetState(chatID, state.DeaneryEnteringFirstName)
		h.sendWithKeyboard(ctx, b, chatID, "✏️ Введите новое имя:", CancelKeyboard())

	case BtnEditLastName:
		st.SetState(chatID, state.DeaneryEnteringLastName)
		h.sendWithKeyboard(ctx, b, chatID, "✏️ Введите новую фамилию:", CancelKeyboard())

	default:
		h.sendMessage(ctx, b, chatID,
			"🤷 Команда не распознана. Используйте кнопки меню или Помощь.")
	}
}

func (h *Handlers) deaneryBack(ctx context.Context, b *bot.Bot, chatID int64) {
	st := h.deaneryStates

	switch st.State(chatID) {
	case state.DeaneryViewingTeacher:
		st.SetState(chatID, state.DeaneryDefault)
		h.sendWithKeyboard(ctx, b, chatID, "Выберите действие:", TeachersMenuKeyboard())
		return
	case state.DeaneryViewingTask:
		if st.CounterpartID(chatID) != 0 {
			h.deaneryShowTeacherTasks(ctx, b, chatID)
			return
		}
		h.deaneryShowAllTasks(ctx, b, chatID)
		return
	}

	st.ResetState(chatID)
	h.sendWithKeyboard(ctx, b, chatID, "🏠 Главное меню", DeaneryMenuKeyboard())
}

// deaneryShowTeachers показывает преподавателей, query="" - всех
func (h *Handlers) deaneryShowTeachers(ctx context.Context, b *bot.Bot, chatID int64, query string) {
	teachers, err := h.userService.SearchTeachers(ctx, query)
	if err != nil {
		h.logger.Error("Failed to search teachers", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}
	if len(teachers) == 0 {
		h.sendWithKeyboard(ctx, b, chatID,
			"😔 Преподаватели не найдены.", TeachersMenuKeyboard())
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		"👥 Выберите преподавателя:", TeacherListKeyboard(teachers))
}

func (h *Handlers) deanerySelectTeacher(ctx context.Context, b *bot.Bot, chatID int64, name string) {
	teachers, err := h.userService.SearchTeachers(ctx, "")
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}

	for _, teacher := range teachers {
		if teacher.FullName() == name {
			st := h.deaneryStates
			st.SetCounterpart(chatID, teacher.ID)
			st.SetState(chatID, state.DeaneryViewingTeacher)
			h.sendWithKeyboard(ctx, b, chatID,
				fmt.Sprintf("👨‍🏫 %s\n\nВыберите действие:", teacher.FullName()),
				DeaneryTeacherKeyboard())
			return
		}
	}

	h.sendMessage(ctx, b, chatID, "😔 Преподаватель не найден. Выберите из списка.")
}

// --- Просмотр задач ---

func (h *Handlers) deaneryTaskList(tasks []*model.TodoTask, filter string) []*model.TodoTask {
	switch filter {
	case TaskFilterCompleted:
		return service.FilterCompleted(tasks)
	case TaskFilterIncomplete:
		return service.FilterPending(tasks)
	default:
		return tasks
	}
}

func (h *Handlers) deaneryTaskFilter(chatID int64) string {
	filter := h.deaneryStates.Draft(chatID).TaskFilter
	if filter == "" {
		return TaskFilterIncomplete
	}
	return filter
}

func (h *Handlers) deaneryShowTeacherTasks(ctx context.Context, b *bot.Bot, chatID int64) {
	teacherID := h.deaneryStates.CounterpartID(chatID)
	if teacherID == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите преподавателя.")
		return
	}

	tasks, err := h.todoService.GetByTeacher(ctx, teacherID)
	if err != nil {
		h.logger.Error("Failed to load tasks", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}
	filtered := h.deaneryTaskList(tasks, h.deaneryTaskFilter(chatID))

	h.deaneryStates.SetState(chatID, state.DeaneryViewingTasks)

	text := fmt.Sprintf("📋 Задачи преподавателя: %d", len(filtered))
	if len(filtered) == 0 {
		text = "📋 Задач по выбранному фильтру нет."
	}
	h.sendWithKeyboard(ctx, b, chatID, text, TaskListKeyboard(filtered, true))
}

func (h *Handlers) deaneryShowAllTasks(ctx context.Context, b *bot.Bot, chatID int64) {
	st := h.deaneryStates
	st.SetCounterpart(chatID, 0)

	tasks, err := h.todoService.GetAll(ctx)
	if err != nil {
		h.logger.Error("Failed to load tasks", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}
	filtered := h.deaneryTaskList(tasks, h.deaneryTaskFilter(chatID))

	st.SetState(chatID, state.DeaneryViewingTasks)

	text := fmt.Sprintf("📋 Все задачи: %d", len(filtered))
	if len(filtered) == 0 {
		text = "📋 Задач по выбранному фильтру нет."
	}
	h.sendWithKeyboard(ctx, b, chatID, text, TaskListKeyboard(filtered, false))
}

func (h *Handlers) deaneryApplyTaskFilter(ctx context.Context, b *bot.Bot, chatID int64, button string) {
	filter := TaskFilterAll
	switch button {
	case BtnFilterTaskIncomplete:
		filter = TaskFilterIncomplete
	case BtnFilterTaskCompleted:
		filter = TaskFilterCompleted
	}

	h.deaneryStates.UpdateDraft(chatID, func(d *state.DeaneryDraft) {
		d.TaskFilter = filter
	})

	if h.deaneryStates.CounterpartID(chatID) != 0 {
		h.deaneryShowTeacherTasks(ctx, b, chatID)
		return
	}
	h.deaneryShowAllTasks(ctx, b, chatID)
}

func (h *Handlers) deanerySelect(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	id, _, err := ParseSelector(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID,
			"⚠️ Неверный формат номера. Используйте №<число>, например №12.")
		return
	}

	task, err := h.todoService.GetByID(ctx, id)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}
	if task == nil {
		h.sendMessage(ctx, b, chatID, "😔 Задача не найдена.")
		return
	}

	st := h.deaneryStates
	st.SetState(chatID, state.DeaneryViewingTask)
	st.SetConsultation(chatID, task.ID)

	h.sendWithKeyboard(ctx, b, chatID, FormatTask(task), DeaneryTaskKeyboard(task))
}

// --- Создание задачи: название → описание → срок ---

func (h *Handlers) deaneryStartTask(ctx context.Context, b *bot.Bot, chatID int64) {
	st := h.deaneryStates
	if st.CounterpartID(chatID) == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите преподавателя.")
		return
	}

	st.UpdateDraft(chatID, func(d *state.DeaneryDraft) {
		d.Todo = state.TodoDraft{}
	})
	st.SetState(chatID, state.DeaneryEnteringTaskTitle)
	h.sendWithKeyboard(ctx, b, chatID,
		"📝 Создание задачи.\n\n📋 Введите название:", CancelKeyboard())
}

func (h *Handlers) deaneryTaskTitle(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	title := strings.TrimSpace(text)
	if title == "" {
		h.sendMessage(ctx, b, chatID, "⚠️ Название не может быть пустым. Введите название:")
		return
	}

	st := h.deaneryStates
	st.UpdateDraft(chatID, func(d *state.DeaneryDraft) {
		d.Todo.Title = title
	})
	st.SetState(chatID, state.DeaneryEnteringTaskDescription)
	h.sendWithKeyboard(ctx, b, chatID,
		"📝 Введите описание задачи или пропустите шаг:", keyboardSkipCancel())
}

func (h *Handlers) deaneryTaskDescription(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	description := strings.TrimSpace(text)
	if description == BtnSkip {
		description = ""
	}

	st := h.deaneryStates
	st.UpdateDraft(chatID, func(d *state.DeaneryDraft) {
		d.Todo.Description = description
	})
	st.SetState(chatID, state.DeaneryEnteringTaskDeadline)
	h.sendWithKeyboard(ctx, b, chatID,
		"⏰ Введите срок в формате ДД.ММ.ГГГГ ЧЧ:ММ или пропустите шаг:\n\nНапример: 20.09.2026 18:00",
		keyboardSkipCancel())
}

func (h *Handlers) deaneryTaskDeadline(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	var deadline *time.Time
	if strings.TrimSpace(text) != BtnSkip {
		parsed, err := time.ParseInLocation(deadlineLayout, strings.TrimSpace(text), time.Local)
		if err != nil {
			h.sendMessage(ctx, b, chatID,
				"⚠️ Не удалось разобрать срок. Формат: ДД.ММ.ГГГГ ЧЧ:ММ, например 20.09.2026 18:00.")
			return
		}
		deadline = &parsed
	}

	st := h.deaneryStates
	draft := st.Draft(chatID)
	teacherID := st.CounterpartID(chatID)
	st.ResetState(chatID)

	if draft.Todo.Title == "" || teacherID == 0 {
		h.sendWithKeyboard(ctx, b, chatID,
			"⚠️ Данные задачи потеряны, начните создание заново.", DeaneryMenuKeyboard())
		return
	}

	task, err := h.todoService.Create(ctx, draft.Todo.Title, draft.Todo.Description, deadline, teacherID, user.ID)
	if err != nil {
		h.logger.Error("Failed to create task", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		"✅ Задача создана, преподаватель получил уведомление.\n\n"+FormatTask(task),
		DeaneryMenuKeyboard())
}

// --- Действия с задачей ---

// deaneryCurrentTask загружает выбранную задачу, nil если она недоступна
func (h *Handlers) deaneryCurrentTask(ctx context.Context, b *bot.Bot, chatID int64) *model.TodoTask {
	id := h.deaneryStates.ConsultationID(chatID)
	if id == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите задачу.")
		return nil
	}

	task, err := h.todoService.GetByID(ctx, id)
	if err != nil || task == nil {
		h.sendMessage(ctx, b, chatID, "😔 Задача не найдена.")
		return nil
	}
	return task
}

// deaneryShowTask повторно показывает карточку выбранной задачи
func (h *Handlers) deaneryShowTask(ctx context.Context, b *bot.Bot, chatID int64) {
	st := h.deaneryStates
	task, err := h.todoService.GetByID(ctx, st.ConsultationID(chatID))
	if err != nil || task == nil {
		st.ResetState(chatID)
		h.sendWithKeyboard(ctx, b, chatID, "😔 Задача не найдена.", DeaneryMenuKeyboard())
		return
	}

	st.SetState(chatID, state.DeaneryViewingTask)
	h.sendWithKeyboard(ctx, b, chatID, FormatTask(task), DeaneryTaskKeyboard(task))
}

func (h *Handlers) deaneryCompleteTask(ctx context.Context, b *bot.Bot, chatID int64) {
	task := h.deaneryCurrentTask(ctx, b, chatID)
	if task == nil {
		return
	}

	if err := h.todoService.Complete(ctx, task); err != nil {
		h.logger.Error("Failed to complete task", zap.Int64("task_id", task.ID), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Задача отмечена выполненной.")
	h.deaneryShowTask(ctx, b, chatID)
}

func (h *Handlers) deaneryReopenTask(ctx context.Context, b *bot.Bot, chatID int64) {
	task := h.deaneryCurrentTask(ctx, b, chatID)
	if task == nil {
		return
	}

	if err := h.todoService.Reopen(ctx, task); err != nil {
		h.logger.Error("Failed to reopen task", zap.Int64("task_id", task.ID), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendMessage(ctx, b, chatID, "⏳ Задача возвращена в работу.")
	h.deaneryShowTask(ctx, b, chatID)
}

// --- Редактирование задачи: меню поля → ввод нового значения ---

func (h *Handlers) deaneryStartEditTask(ctx context.Context, b *bot.Bot, chatID int64) {
	task := h.deaneryCurrentTask(ctx, b, chatID)
	if task == nil {
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		fmt.Sprintf("✏️ Редактирование задачи №%d\n\nВыберите, что хотите изменить:", task.ID),
		DeaneryEditTaskKeyboard())
}

func (h *Handlers) deaneryStartEditTaskField(ctx context.Context, b *bot.Bot, chatID int64, button string) {
	task := h.deaneryCurrentTask(ctx, b, chatID)
	if task == nil {
		return
	}
	st := h.deaneryStates

	switch button {
	case BtnEditTaskTitle:
		st.SetState(chatID, state.DeaneryEditingTaskTitle)
		h.sendWithKeyboard(ctx, b, chatID,
			fmt.Sprintf("📋 Текущее название: %s\n\nВведите новое название:", task.Title),
			CancelKeyboard())

	case BtnEditTaskDescription:
		current := task.Description
		if current == "" {
			current = "нет"
		}
		st.SetState(chatID, state.DeaneryEditingTaskDescription)
		h.sendWithKeyboard(ctx, b, chatID,
			fmt.Sprintf("📝 Текущее описание: %s\n\nВведите новое описание или пропустите шаг, чтобы убрать его:", current),
			keyboardSkipCancel())

	case BtnEditTaskDeadline:
		current := "нет"
		if task.Deadline != nil {
			current = task.Deadline.Format(deadlineLayout)
		}
		st.SetState(chatID, state.DeaneryEditingTaskDeadline)
		h.sendWithKeyboard(ctx, b, chatID,
			fmt.Sprintf("⏰ Текущий дедлайн: %s\n\nВведите новый в формате ДД.ММ.ГГГГ ЧЧ:ММ или пропустите шаг, чтобы убрать его:", current),
			keyboardSkipCancel())
	}
}

func (h *Handlers) deaneryEditTaskTitle(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	title := strings.TrimSpace(text)
	if title == "" {
		h.sendMessage(ctx, b, chatID, "⚠️ Название не может быть пустым. Введите название:")
		return
	}

	task := h.deaneryCurrentTask(ctx, b, chatID)
	if task == nil {
		return
	}

	if err := h.todoService.UpdateTitle(ctx, task, title); err != nil {
		h.logger.Error("Failed to update task title", zap.Int64("task_id", task.ID), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Название задачи обновлено!")
	h.deaneryShowTask(ctx, b, chatID)
}

func (h *Handlers) deaneryEditTaskDescription(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	description := strings.TrimSpace(text)
	if description == BtnSkip {
		description = ""
	}

	task := h.deaneryCurrentTask(ctx, b, chatID)
	if task == nil {
		return
	}

	if err := h.todoService.UpdateDescription(ctx, task, description); err != nil {
		h.logger.Error("Failed to update task description", zap.Int64("task_id", task.ID), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Описание задачи обновлено!")
	h.deaneryShowTask(ctx, b, chatID)
}

func (h *Handlers) deaneryEditTaskDeadline(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	var deadline *time.Time
	if strings.TrimSpace(text) != BtnSkip {
		parsed, err := time.ParseInLocation(deadlineLayout, strings.TrimSpace(text), time.Local)
		if err != nil {
			h.sendMessage(ctx, b, chatID,
				"⚠️ Не удалось разобрать срок. Формат: ДД.ММ.ГГГГ ЧЧ:ММ, например 20.09.2026 18:00.")
			return
		}
		if parsed.Before(time.Now()) {
			h.sendMessage(ctx, b, chatID, "❌ Дедлайн не может быть в прошлом. Введите другую дату:")
			return
		}
		deadline = &parsed
	}

	task := h.deaneryCurrentTask(ctx, b, chatID)
	if task == nil {
		return
	}

	if err := h.todoService.UpdateDeadline(ctx, task, deadline); err != nil {
		h.logger.Error("Failed to update task deadline", zap.Int64("task_id", task.ID), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Дедлайн задачи обновлён!")
	h.deaneryShowTask(ctx, b, chatID)
}

func (h *Handlers) deaneryDeleteTask(ctx context.Context, b *bot.Bot, chatID int64) {
	st := h.deaneryStates
	id := st.ConsultationID(chatID)
	if id == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите задачу.")
		return
	}

	if err := h.todoService.Delete(ctx, id); err != nil {
		h.logger.Error("Failed to delete task", zap.Int64("task_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	st.SetConsultation(chatID, 0)
	h.sendWithKeyboard(ctx, b, chatID, "🗑️ Задача удалена.", DeaneryMenuKeyboard())
}

// --- Профиль ---

func (h *Handlers) deaneryUpdateName(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, firstName, lastName string) {
	h.deaneryStates.SetState(chatID, state.DeaneryEditingProfile)

	if err := h.userService.UpdateName(ctx, user, firstName, lastName); err != nil {
		h.logger.Error("Failed to update profile", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		"✅ Профиль обновлён.\n\n"+FormatProfile(user), ProfileKeyboard(false))
}
