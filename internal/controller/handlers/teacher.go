package handlers

import (
	"context"
	"fmt"
	"strings"

	"consultation-bot/internal/controller/state"
	"consultation-bot/internal/model"
	"consultation-bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const teacherHelpText = "📚 Справка для преподавателя:\n\n" +
	"➕ Создать консультацию — название, дата и время, вместимость, автозакрытие\n" +
	"📅 Мои консультации — управление вашими консультациями\n" +
	"📋 Просмотреть запросы — запросы студентов, которые можно принять\n" +
	"📋 Мои задачи — задачи, назначенные деканатом\n\n" +
	"Выбирайте пункты списков кнопками №<номер> или вводите номер вручную."

// handleTeacher обрабатывает сообщение преподавателя
func (h *Handlers) handleTeacher(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	st := h.teacherStates

	// 1. Отмена всегда прерывает текущий диалог
	if text == BtnCancel || text == BtnMainMenu {
		st.ResetState(chatID)
		h.sendWithKeyboard(ctx, b, chatID, "🏠 Главное меню", TeacherMenuKeyboard())
		return
	}

	// 2. Состояния, ожидающие текстовый ввод
	switch st.State(chatID) {
	case state.TeacherCreatingTitle:
		h.teacherCreationTitle(ctx, b, chatID, text)
		return
	case state.TeacherCreatingSchedule:
		h.teacherCreationSchedule(ctx, b, chatID, text)
		return
	case state.TeacherCreatingCapacity:
		h.teacherCreationCapacity(ctx, b, chatID, text)
		return
	case state.TeacherCreatingAutoClose:
		h.teacherCreationAutoClose(ctx, b, chatID, user, text)
		return
	case state.TeacherAcceptingSchedule:
		h.teacherAcceptSchedule(ctx, b, chatID, text)
		return
	case state.TeacherAcceptingCapacity:
		h.teacherAcceptCapacity(ctx, b, chatID, text)
		return
	case state.TeacherAcceptingAutoClose:
		h.teacherAcceptAutoClose(ctx, b, chatID, user, text)
		return
	case state.TeacherEditingTitle:
		h.teacherEditTitle(ctx, b, chatID, user, text)
		return
	case state.TeacherEditingSchedule:
		h.teacherEditSchedule(ctx, b, chatID, user, text)
		return
	case state.TeacherEditingCapacity:
		h.teacherEditCapacity(ctx, b, chatID, user, text)
		return
	case state.TeacherEditingAutoClose:
		h.teacherEditAutoClose(ctx, b, chatID, user, text)
		return
	case state.TeacherEnteringReason:
		h.teacherCancelConsultation(ctx, b, chatID, user, text)
		return
	case state.TeacherEnteringFirstName:
		h.teacherUpdateName(ctx, b, chatID, user, text, user.LastName)
		return
	case state.TeacherEnteringLastName:
		h.teacherUpdateName(ctx, b, chatID, user, user.FirstName, text)
		return
	case state.TeacherEnteringReminder:
		h.teacherUpdateReminder(ctx, b, chatID, user, text)
		return
	}

	// 3. Нумерованный выбор
	if IsSelector(text) {
		h.teacherSelect(ctx, b, chatID, user, text)
		return
	}

	// 4. Команды меню и экранов
	switch text {
	case "/start":
		st.ResetState(chatID)
		h.sendWithKeyboard(ctx, b, chatID,
			fmt.Sprintf("👋 Здравствуйте, %s!", user.FirstName),
			TeacherMenuKeyboard())

	case BtnBack:
		h.teacherBack(ctx, b, chatID, user)

	case BtnHelp:
		h.sendMessage(ctx, b, chatID, teacherHelpText)

	case BtnCreateConsultation:
		st.UpdateDraft(chatID, func(d *state.TeacherDraft) {
			d.Consultation = state.ConsultationDraft{}
		})
		st.SetState(chatID, state.TeacherCreatingTitle)
		h.sendWithKeyboard(ctx, b, chatID,
			"➕ Создание консультации.\n\n📋 Введите название:", CancelKeyboard())

	case BtnMyConsultations:
		h.teacherShowConsultations(ctx, b, chatID, user)

	case BtnFilterPast, BtnFilterAll, BtnFilterFuture:
		h.teacherApplyFilter(ctx, b, chatID, user, text)

	case BtnViewRequests:
		h.teacherShowRequests(ctx, b, chatID)

	case BtnAcceptRequest:
		h.teacherStartAccept(ctx, b, chatID)

	case BtnViewStudents:
		h.teacherShowStudents(ctx, b, chatID, user)

	case BtnCloseRegistration:
		h.teacherCloseRegistration(ctx, b, chatID, user)

	case BtnOpenRegistration:
		h.teacherOpenRegistration(ctx, b, chatID, user)

	case BtnEditConsultation:
		if st.ConsultationID(chatID) == 0 {
			h.sendMessage(ctx, b, chatID, "Сначала выберите консультацию.")
			return
		}
		st.SetState(chatID, state.TeacherEditingConsultation)
		h.sendWithKeyboard(ctx, b, chatID,
			"✏️ Что изменить?", EditConsultationKeyboard())

	case BtnEditTitle:
		h.teacherStartEdit(ctx, b, chatID, state.TeacherEditingTitle,
			"📋 Введите новое название:", CancelKeyboard())

	case BtnEditDateTime:
		h.teacherStartEdit(ctx, b, chatID, state.TeacherEditingSchedule,
			scheduleInputHint, CancelKeyboard())

	case BtnEditCapacity:
		h.teacherStartEdit(ctx, b, chatID, state.TeacherEditingCapacity,
			"👥 Введите вместимость (число) или пропустите для консультации без ограничения:",
			keyboardSkipCancel())

	case BtnEditAutoClose:
		h.teacherStartEdit(ctx, b, chatID, state.TeacherEditingAutoClose,
			"🔒 Закрывать запись автоматически при заполнении всех мест?", YesNoKeyboard())

	case BtnCancelConsultation:
		if st.ConsultationID(chatID) == 0 {
			h.sendMessage(ctx, b, chatID, "Сначала выберите консультацию.")
			return
		}
		st.SetState(chatID, state.TeacherEnteringReason)
		h.sendWithKeyboard(ctx, b, chatID,
			"❌ Укажите причину отмены (студенты получат её в уведомлении):",
			keyboardSkipCancel())

	case BtnMyTasks:
		h.teacherShowTasks(ctx, b, chatID, user)

	case BtnFilterTaskIncomplete, BtnFilterTaskAll, BtnFilterTaskCompleted:
		h.teacherApplyTaskFilter(ctx, b, chatID, user, text)

	case BtnMarkCompleted:
		h.teacherCompleteTask(ctx, b, chatID, user)

	case BtnProfile:
		st.SetState(chatID, state.TeacherEditingProfile)
		h.sendWithKeyboard(ctx, b, chatID, FormatProfile(user), ProfileKeyboard(true))

	case BtnEditFirstName:
		st.SetState(chatID, state.TeacherEnteringFirstName)
		h.sendWithKeyboard(ctx, b, chatID, "✏️ Введите новое имя:", CancelKeyboard())

	case BtnEditLastName:
		st.SetState(chatID, state.TeacherEnteringLastName)
		h.sendWithKeyboard(ctx, b, chatID, "✏️ Введите новую фамилию:", CancelKeyboard())

	case BtnEditReminderTime:
		st.SetState(chatID, state.TeacherEnteringReminder)
		h.sendWithKeyboard(ctx, b, chatID,
			"⏰ За сколько минут до дедлайна напоминать о задачах?\nВыберите вариант или введите число минут:",
			ReminderKeyboard())

	default:
		h.sendMessage(ctx, b, chatID,
			"🤷 Команда не распознана. Используйте кнопки меню или Помощь.")
	}
}

// teacherBack возвращает на предыдущий экран
func (h *Handlers) teacherBack(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	st := h.teacherStates

	switch st.State(chatID) {
	case state.TeacherViewingConsultation:
		h.teacherShowConsultations(ctx, b, chatID, user)
		return
	case state.TeacherEditingConsultation:
		if id := st.ConsultationID(chatID); id != 0 {
			h.teacherShowConsultation(ctx, b, chatID, user, id)
			return
		}
	case state.TeacherViewingRequest:
		h.teacherShowRequests(ctx, b, chatID)
		return
	case state.TeacherViewingTask:
		h.teacherShowTasks(ctx, b, chatID, user)
		return
	}

	st.ResetState(chatID)
	h.sendWithKeyboard(ctx, b, chatID, "🏠 Главное меню", TeacherMenuKeyboard())
}

// --- Создание консультации: название → дата и время → вместимость → автозакрытие ---

func (h *Handlers) teacherCreationTitle(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	title := strings.TrimSpace(text)
	if title == "" {
		h.sendMessage(ctx, b, chatID, "⚠️ Название не может быть пустым. Введите название:")
		return
	}

	st := h.teacherStates
	st.UpdateDraft(chatID, func(d *state.TeacherDraft) {
		d.Consultation.Title = title
	})
	st.SetState(chatID, state.TeacherCreatingSchedule)
	h.sendWithKeyboard(ctx, b, chatID, scheduleInputHint, CancelKeyboard())
}

func (h *Handlers) teacherCreationSchedule(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	date, start, end, err := parseSchedule(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "⚠️ Не удалось разобрать дату и время.\n\n"+scheduleInputHint)
		return
	}

	st := h.teacherStates
	st.UpdateDraft(chatID, func(d *state.TeacherDraft) {
		d.Consultation.Date = &date
		d.Consultation.StartTime = &start
		d.Consultation.EndTime = &end
	})
	st.SetState(chatID, state.TeacherCreatingCapacity)
	h.sendWithKeyboard(ctx, b, chatID,
		"👥 Введите вместимость (число мест) или пропустите для консультации без ограничения:",
		keyboardSkipCancel())
}

func (h *Handlers) teacherCreationCapacity(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	capacity, err := parseCapacity(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "⚠️ Введите положительное число или пропустите шаг.")
		return
	}

	st := h.teacherStates
	st.UpdateDraft(chatID, func(d *state.TeacherDraft) {
		d.Consultation.Capacity = capacity
	})
	st.SetState(chatID, state.TeacherCreatingAutoClose)
	h.sendWithKeyboard(ctx, b, chatID,
		"🔒 Закрывать запись автоматически при заполнении всех мест?", YesNoKeyboard())
}

func (h *Handlers) teacherCreationAutoClose(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	if text != BtnYes && text != BtnNo {
		h.sendMessage(ctx, b, chatID, "⚠️ Ответьте кнопкой Да или Нет.")
		return
	}

	st := h.teacherStates
	draft := st.Draft(chatID).Consultation
	st.ResetState(chatID)

	if draft.Title == "" || draft.Date == nil {
		h.sendWithKeyboard(ctx, b, chatID,
			"⚠️ Данные консультации потеряны, начните создание заново.", TeacherMenuKeyboard())
		return
	}

	c, err := h.consultationService.Create(ctx, user.ID, draft.Title,
		*draft.Date, *draft.StartTime, *draft.EndTime, draft.Capacity, text == BtnYes)
	if err != nil {
		h.logger.Error("Failed to create consultation", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}
	c.Teacher = user

	h.sendWithKeyboard(ctx, b, chatID,
		"✅ Консультация создана!\n\n"+FormatConsultation(c, 0), TeacherMenuKeyboard())

	h.notificationService.NotifyNewConsultation(ctx, c)
}

// --- Списки и карточка консультации ---

func (h *Handlers) teacherShowConsultations(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	st := h.teacherStates
	filter := service.TimeFilter(st.Filter(chatID))

	consultations, err := h.consultationService.GetTeacherConsultations(ctx, user.ID, filter)
	if err != nil {
		h.logger.Error("Failed to load consultations", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	st.SetState(chatID, state.TeacherViewingConsultations)

	text := fmt.Sprintf("📅 Ваши консультации: %d", len(consultations))
	if len(consultations) == 0 {
		text = "📅 Консультаций по выбранному фильтру нет."
	}
	h.sendWithKeyboard(ctx, b, chatID, text, MyConsultationsKeyboard(consultations))
}

func (h *Handlers) teacherApplyFilter(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, button string) {
	st := h.teacherStates
	switch button {
	case BtnFilterPast:
		st.SetFilter(chatID, string(service.FilterPast))
	case BtnFilterAll:
		st.SetFilter(chatID, string(service.FilterAll))
	case BtnFilterFuture:
		st.SetFilter(chatID, string(service.FilterFuture))
	}
	h.teacherShowConsultations(ctx, b, chatID, user)
}

func (h *Handlers) teacherSelect(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	id, _, err := ParseSelector(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID,
			"⚠️ Неверный формат номера. Используйте №<число>, например №12.")
		return
	}

	switch h.teacherStates.State(chatID) {
	case state.TeacherViewingRequests, state.TeacherViewingRequest:
		h.teacherShowRequest(ctx, b, chatID, id)
	case state.TeacherViewingTasks, state.TeacherViewingTask:
		h.teacherShowTask(ctx, b, chatID, user, id)
	default:
		h.teacherShowConsultation(ctx, b, chatID, user, id)
	}
}

func (h *Handlers) teacherShowConsultation(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, id int64) {
	c, err := h.consultationService.FindByID(ctx, id)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}
	if c == nil || c.IsRequest() || c.TeacherID != user.ID {
		h.sendMessage(ctx, b, chatID, "😔 Консультация не найдена.")
		return
	}

	count, err := h.consultationService.RegisteredCount(ctx, c.ID)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}
	c.Teacher = user

	st := h.teacherStates
	st.SetConsultation(chatID, c.ID)
	st.SetState(chatID, state.TeacherViewingConsultation)

	h.sendWithKeyboard(ctx, b, chatID,
		FormatConsultation(c, count), TeacherConsultationKeyboard(c))
}

func (h *Handlers) teacherShowStudents(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	id := h.teacherStates.ConsultationID(chatID)
	if id == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите консультацию.")
		return
	}

	regs, err := h.registrationService.GetConsultationRegistrations(ctx, id)
	if err != nil {
		h.logger.Error("Failed to load registrations", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendMessage(ctx, b, chatID, FormatRegistrations(regs))
}

// --- Закрытие, открытие, отмена ---

func (h *Handlers) teacherCloseRegistration(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	id := h.teacherStates.ConsultationID(chatID)
	if id == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите консультацию.")
		return
	}

	if err := h.consultationService.Close(ctx, id, ""); err != nil {
		h.logger.Error("Failed to close consultation", zap.Int64("consultation_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.teacherShowConsultation(ctx, b, chatID, user, id)
}

func (h *Handlers) teacherOpenRegistration(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	id := h.teacherStates.ConsultationID(chatID)
	if id == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите консультацию.")
		return
	}

	res, err := h.consultationService.Open(ctx, id)
	if err != nil {
		h.logger.Error("Failed to open consultation", zap.Int64("consultation_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	if res.NeedsDisableAutoClose {
		h.sendMessage(ctx, b, chatID,
			"⚠️ Все места заняты, и включено автозакрытие — запись сразу закроется снова.\n"+
				"Отключите автозакрытие: ✏️ Редактировать → 🔒 Автозакрытие.")
		return
	}

	h.teacherShowConsultation(ctx, b, chatID, user, id)
}

func (h *Handlers) teacherCancelConsultation(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, reason string) {
	st := h.teacherStates
	id := st.ConsultationID(chatID)
	st.ResetState(chatID)

	if id == 0 {
		h.sendWithKeyboard(ctx, b, chatID, "Сначала выберите консультацию.", TeacherMenuKeyboard())
		return
	}
	if reason == BtnSkip {
		reason = ""
	}

	if err := h.consultationService.Cancel(ctx, id, reason); err != nil {
		h.logger.Error("Failed to cancel consultation", zap.Int64("consultation_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		"✅ Консультация отменена. Записанные студенты получат уведомление.",
		TeacherMenuKeyboard())

	c, err := h.consultationService.FindByID(ctx, id)
	if err == nil && c != nil {
		c.Teacher = user
		h.notificationService.NotifyConsultationCancelled(ctx, c)
	}
}

// --- Редактирование полей ---

func (h *Handlers) teacherStartEdit(ctx context.Context, b *bot.Bot, chatID int64, target state.TeacherState, prompt string, kb *models.ReplyKeyboardMarkup) {
	st := h.teacherStates
	if st.ConsultationID(chatID) == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите консультацию.")
		return
	}
	st.SetState(chatID, target)
	h.sendWithKeyboard(ctx, b, chatID, prompt, kb)
}

// teacherFinishEdit завершает редактирование: уведомляет записанных
// студентов и показывает обновлённую карточку
func (h *Handlers) teacherFinishEdit(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, id int64, change string) {
	c, err := h.consultationService.FindByID(ctx, id)
	if err == nil && c != nil {
		c.Teacher = user
		h.notificationService.NotifyConsultationUpdated(ctx, c, change)
	}
	h.teacherShowConsultation(ctx, b, chatID, user, id)
}

func (h *Handlers) teacherEditTitle(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	title := strings.TrimSpace(text)
	if title == "" {
		h.sendMessage(ctx, b, chatID, "⚠️ Название не может быть пустым. Введите название:")
		return
	}

	id := h.teacherStates.ConsultationID(chatID)
	if err := h.consultationService.UpdateTitle(ctx, id, title); err != nil {
		h.logger.Error("Failed to update title", zap.Int64("consultation_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.teacherFinishEdit(ctx, b, chatID, user, id, "Изменено название: "+title)
}

func (h *Handlers) teacherEditSchedule(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	date, start, end, err := parseSchedule(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "⚠️ Не удалось разобрать дату и время.\n\n"+scheduleInputHint)
		return
	}

	id := h.teacherStates.ConsultationID(chatID)
	if err := h.consultationService.UpdateSchedule(ctx, id, date, start, end); err != nil {
		h.logger.Error("Failed to update schedule", zap.Int64("consultation_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.teacherFinishEdit(ctx, b, chatID, user, id, "Изменены дата и время.")
}

func (h *Handlers) teacherEditCapacity(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	capacity, err := parseCapacity(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "⚠️ Введите положительное число или пропустите шаг.")
		return
	}

	id := h.teacherStates.ConsultationID(chatID)
	if err := h.consultationService.UpdateCapacity(ctx, id, capacity); err != nil {
		h.logger.Error("Failed to update capacity", zap.Int64("consultation_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	change := "Ограничение мест снято."
	if capacity != nil {
		change = fmt.Sprintf("Новая вместимость: %d мест.", *capacity)
	}
	h.teacherFinishEdit(ctx, b, chatID, user, id, change)
}

func (h *Handlers) teacherEditAutoClose(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	if text != BtnYes && text != BtnNo {
		h.sendMessage(ctx, b, chatID, "⚠️ Ответьте кнопкой Да или Нет.")
		return
	}

	id := h.teacherStates.ConsultationID(chatID)
	var err error
	if text == BtnYes {
		err = h.consultationService.UpdateAutoClose(ctx, id, true)
	} else {
		err = h.consultationService.DisableAutoClose(ctx, id)
	}
	if err != nil {
		h.logger.Error("Failed to update auto-close", zap.Int64("consultation_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.teacherShowConsultation(ctx, b, chatID, user, id)
}

// --- Запросы консультаций ---

func (h *Handlers) teacherShowRequests(ctx context.Context, b *bot.Bot, chatID int64) {
	requests, err := h.consultationService.GetAllRequests(ctx)
	if err != nil {
		h.logger.Error("Failed to load requests", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}
	if len(requests) == 0 {
		h.sendMessage(ctx, b, chatID, "Открытых запросов пока нет.")
		return
	}

	counts := make(map[int64]int64, len(requests))
	for _, r := range requests {
		count, err := h.consultationService.RegisteredCount(ctx, r.ID)
		if err == nil {
			counts[r.ID] = count
		}
	}

	h.teacherStates.SetState(chatID, state.TeacherViewingRequests)
	h.sendWithKeyboard(ctx, b, chatID,
		"📋 Запросы студентов (в скобках — число заинтересованных):",
		RequestListKeyboard(requests, counts))
}

func (h *Handlers) teacherShowRequest(ctx context.Context, b *bot.Bot, chatID int64, id int64) {
	request, err := h.consultationService.FindRequestByID(ctx, id)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}
	if request == nil {
		h.sendMessage(ctx, b, chatID, "😔 Запрос не найден.")
		return
	}

	count, err := h.consultationService.RegisteredCount(ctx, request.ID)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}

	st := h.teacherStates
	st.UpdateDraft(chatID, func(d *state.TeacherDraft) {
		d.RequestID = request.ID
	})
	st.SetState(chatID, state.TeacherViewingRequest)

	h.sendWithKeyboard(ctx, b, chatID,
		fmt.Sprintf("❓ №%d %s\n\n👥 Заинтересованы: %d\n\nПриняв запрос, вы назначите дату, время и вместимость.",
			request.ID, request.Title, count),
		TeacherRequestKeyboard())
}

// --- Принятие запроса: дата и время → вместимость → автозакрытие ---

func (h *Handlers) teacherStartAccept(ctx context.Context, b *bot.Bot, chatID int64) {
	st := h.teacherStates
	if st.Draft(chatID).RequestID == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите запрос.")
		return
	}

	st.UpdateDraft(chatID, func(d *state.TeacherDraft) {
		d.Consultation = state.ConsultationDraft{}
	})
	st.SetState(chatID, state.TeacherAcceptingSchedule)
	h.sendWithKeyboard(ctx, b, chatID,
		"✅ Принятие запроса.\n\n"+scheduleInputHint, CancelKeyboard())
}

func (h *Handlers) teacherAcceptSchedule(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	date, start, end, err := parseSchedule(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "⚠️ Не удалось разобрать дату и время.\n\n"+scheduleInputHint)
		return
	}

	st := h.teacherStates
	st.UpdateDraft(chatID, func(d *state.TeacherDraft) {
		d.Consultation.Date = &date
		d.Consultation.StartTime = &start
		d.Consultation.EndTime = &end
	})
	st.SetState(chatID, state.TeacherAcceptingCapacity)
	h.sendWithKeyboard(ctx, b, chatID,
		"👥 Введите вместимость (число мест) или пропустите для консультации без ограничения:",
		keyboardSkipCancel())
}

func (h *Handlers) teacherAcceptCapacity(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	capacity, err := parseCapacity(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "⚠️ Введите положительное число или пропустите шаг.")
		return
	}

	st := h.teacherStates
	st.UpdateDraft(chatID, func(d *state.TeacherDraft) {
		d.Consultation.Capacity = capacity
	})
	st.SetState(chatID, state.TeacherAcceptingAutoClose)
	h.sendWithKeyboard(ctx, b, chatID,
		"🔒 Закрывать запись автоматически при заполнении всех мест?", YesNoKeyboard())
}

func (h *Handlers) teacherAcceptAutoClose(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	if text != BtnYes && text != BtnNo {
		h.sendMessage(ctx, b, chatID, "⚠️ Ответьте кнопкой Да или Нет.")
		return
	}

	st := h.teacherStates
	draft := st.Draft(chatID)
	st.ResetState(chatID)

	if draft.RequestID == 0 || draft.Consultation.Date == nil {
		h.sendWithKeyboard(ctx, b, chatID,
			"⚠️ Данные запроса потеряны, начните заново.", TeacherMenuKeyboard())
		return
	}

	c, err := h.consultationService.AcceptRequest(ctx, draft.RequestID, user.ID,
		*draft.Consultation.Date, *draft.Consultation.StartTime, *draft.Consultation.EndTime,
		draft.Consultation.Capacity, text == BtnYes)
	if err != nil {
		h.logger.Error("Failed to accept request",
			zap.Int64("request_id", draft.RequestID), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}
	c.Teacher = user

	count, _ := h.consultationService.RegisteredCount(ctx, c.ID)
	h.sendWithKeyboard(ctx, b, chatID,
		"✅ Запрос принят!\n\n"+FormatConsultation(c, count), TeacherMenuKeyboard())

	h.notificationService.NotifyRequestAccepted(ctx, c)
}

// --- Задачи от деканата ---

// teacherTaskList применяет текущий фильтр задач
func (h *Handlers) teacherTaskList(tasks []*model.TodoTask, filter string) []*model.TodoTask {
	switch filter {
	case TaskFilterCompleted:
		return service.FilterCompleted(tasks)
	case TaskFilterIncomplete:
		return service.FilterPending(tasks)
	default:
		return tasks
	}
}

func (h *Handlers) teacherShowTasks(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	tasks, err := h.todoService.GetByTeacher(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to load tasks", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	st := h.teacherStates
	filter := st.Draft(chatID).TaskFilter
	if filter == "" {
		filter = TaskFilterIncomplete
	}
	filtered := h.teacherTaskList(tasks, filter)

	st.SetState(chatID, state.TeacherViewingTasks)

	text := fmt.Sprintf("📋 Ваши задачи: %d", len(filtered))
	if len(filtered) == 0 {
		text = "📋 Задач по выбранному фильтру нет."
	}
	h.sendWithKeyboard(ctx, b, chatID, text, TaskListKeyboard(filtered, false))
}

func (h *Handlers) teacherApplyTaskFilter(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, button string) {
	filter := TaskFilterAll
	switch button {
	case BtnFilterTaskIncomplete:
		filter = TaskFilterIncomplete
	case BtnFilterTaskCompleted:
		filter = TaskFilterCompleted
	}

	h.teacherStates.UpdateDraft(chatID, func(d *state.TeacherDraft) {
		d.TaskFilter = filter
	})
	h.teacherShowTasks(ctx, b, chatID, user)
}

func (h *Handlers) teacherShowTask(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, id int64) {
	task, err := h.todoService.GetByID(ctx, id)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}
	if task == nil || task.TeacherID != user.ID {
		h.sendMessage(ctx, b, chatID, "😔 Задача не найдена.")
		return
	}

	st := h.teacherStates
	st.UpdateDraft(chatID, func(d *state.TeacherDraft) {
		d.TaskID = task.ID
	})
	st.SetState(chatID, state.TeacherViewingTask)

	h.sendWithKeyboard(ctx, b, chatID, FormatTask(task), TeacherTaskKeyboard(task))
}

func (h *Handlers) teacherCompleteTask(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	id := h.teacherStates.Draft(chatID).TaskID
	if id == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите задачу.")
		return
	}

	task, err := h.todoService.GetByID(ctx, id)
	if err != nil || task == nil || task.TeacherID != user.ID {
		h.sendMessage(ctx, b, chatID, "😔 Задача не найдена.")
		return
	}

	if err := h.todoService.Complete(ctx, task); err != nil {
		h.logger.Error("Failed to complete task", zap.Int64("task_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Задача отмечена выполненной.")
	h.teacherShowTasks(ctx, b, chatID, user)
}

// --- Профиль ---

func (h *Handlers) teacherUpdateName(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, firstName, lastName string) {
	h.teacherStates.SetState(chatID, state.TeacherEditingProfile)

	if err := h.userService.UpdateName(ctx, user, firstName, lastName); err != nil {
		h.logger.Error("Failed to update profile", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		"✅ Профиль обновлён.\n\n"+FormatProfile(user), ProfileKeyboard(true))
}

func (h *Handlers) teacherUpdateReminder(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	minutes, err := parseReminderMinutes(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "⚠️ Введите положительное число минут или выберите вариант.")
		return
	}

	h.teacherStates.SetState(chatID, state.TeacherEditingProfile)

	if err := h.userService.UpdateReminderMinutes(ctx, user, &minutes); err != nil {
		h.logger.Error("Failed to update reminder minutes", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		fmt.Sprintf("✅ Напоминания будут приходить за %d мин. до дедлайна.", minutes),
		ProfileKeyboard(true))
}
