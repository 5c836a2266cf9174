package handlers

import (
	"context"
	"fmt"
	"strings"

	"consultation-bot/internal/controller/state"
	"consultation-bot/internal/model"
	"consultation-bot/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

const studentHelpText = "📚 Справка для студента:\n\n" +
	"🔍 Преподаватели — список преподавателей и их консультаций\n" +
	"🔔 Подписки на обновления — уведомления о новых консультациях\n" +
	"📝 Мои записи — консультации, на которые вы записаны\n" +
	"❓ Запросить консультацию — создать запрос для преподавателей\n" +
	"📋 Просмотреть запросы — присоединиться к чужому запросу\n\n" +
	"Выбирайте пункты списков кнопками №<номер> или вводите номер вручную."

// handleStudent обрабатывает сообщение студента
func (h *Handlers) handleStudent(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	st := h.studentStates

	// 1. Отмена всегда прерывает текущий диалог
	if text == BtnCancel || text == BtnMainMenu {
		st.ResetState(chatID)
		h.sendWithKeyboard(ctx, b, chatID, "🏠 Главное меню", StudentMenuKeyboard())
		return
	}

	// 2. Состояния, ожидающие текстовый ввод
	switch st.State(chatID) {
	case state.StudentSearchingTeacher:
		st.SetState(chatID, state.StudentDefault)
		h.studentShowTeachers(ctx, b, chatID, text)
		return
	case state.StudentEnteringRegMessage:
		message := text
		if message == BtnSkip {
			message = ""
		}
		h.studentCompleteRegistration(ctx, b, chatID, user, message)
		return
	case state.StudentEnteringReqTitle:
		h.studentCreateRequest(ctx, b, chatID, user, text)
		return
	case state.StudentEnteringReqMessage:
		message := text
		if message == BtnSkip {
			message = ""
		}
		h.studentCompleteRequestRegistration(ctx, b, chatID, user, message)
		return
	case state.StudentEnteringFirstName:
		h.studentUpdateName(ctx, b, chatID, user, text, user.LastName)
		return
	case state.StudentEnteringLastName:
		h.studentUpdateName(ctx, b, chatID, user, user.FirstName, text)
		return
	}

	// 3. Структурированные селекторы
	if strings.HasPrefix(text, TeacherPrefix) {
		h.studentSelectTeacher(ctx, b, chatID, user, strings.TrimPrefix(text, TeacherPrefix))
		return
	}
	if IsSelector(text) {
		h.studentSelect(ctx, b, chatID, user, text)
		return
	}

	// 4. Команды главного меню и экранов
	switch text {
	case "/start":
		st.ResetState(chatID)
		h.sendWithKeyboard(ctx, b, chatID,
			fmt.Sprintf("👋 Здравствуйте, %s!", user.FirstName),
			StudentMenuKeyboard())

	case BtnBack:
		h.studentBack(ctx, b, chatID, user)

	case BtnHelp:
		h.sendMessage(ctx, b, chatID, studentHelpText)

	case BtnTeachersMenu:
		st.SetState(chatID, state.StudentDefault)
		h.sendWithKeyboard(ctx, b, chatID, "Выберите действие:", TeachersMenuKeyboard())

	case BtnAllTeachers:
		h.studentShowTeachers(ctx, b, chatID, "")

	case BtnSearchTeacher:
		st.SetState(chatID, state.StudentSearchingTeacher)
		h.sendWithKeyboard(ctx, b, chatID,
			"🔍 Введите фамилию или имя преподавателя:", CancelKeyboard())

	case BtnFilterPast, BtnFilterAll, BtnFilterFuture:
		h.studentApplyFilter(ctx, b, chatID, user, text)

	case BtnSubscribe, BtnUnsubscribe:
		h.studentToggleSubscription(ctx, b, chatID, user, text == BtnSubscribe)

	case BtnSubscriptions:
		h.studentShowSubscriptions(ctx, b, chatID, user)

	case BtnMyRegistrations:
		h.studentShowRegistrations(ctx, b, chatID, user)

	case BtnRegister:
		h.studentStartRegistration(ctx, b, chatID, user)

	case BtnCancelRegistration:
		h.studentCancelRegistration(ctx, b, chatID, user)

	case BtnRequestConsultation:
		st.SetState(chatID, state.StudentEnteringReqTitle)
		h.sendWithKeyboard(ctx, b, chatID,
			"❓ Введите тему консультации, которую хотите запросить:", CancelKeyboard())

	case BtnViewRequests:
		h.studentShowRequests(ctx, b, chatID, user)

	case BtnRegisterForRequest:
		h.studentRegisterForRequest(ctx, b, chatID, user)

	case BtnUnregisterFromRequest:
		h.studentUnregisterFromRequest(ctx, b, chatID, user)

	case BtnProfile:
		st.SetState(chatID, state.StudentEditingProfile)
		h.sendWithKeyboard(ctx, b, chatID, FormatProfile(user), ProfileKeyboard(false))

	case BtnEditFirstName:
		st.SetState(chatID, state.StudentEnteringFirstName)
		h.sendWithKeyboard(ctx, b, chatID, "✏️ Введите новое имя:", CancelKeyboard())

	case BtnEditLastName:
		st.SetState(chatID, state.StudentEnteringLastName)
		h.sendWithKeyboard(ctx, b, chatID, "✏️ Введите новую фамилию:", CancelKeyboard())

	default:
		h.sendMessage(ctx, b, chatID,
			"🤷 Команда не распознана. Используйте кнопки меню или Помощь.")
	}
}

// studentBack возвращает на предыдущий экран в зависимости от контекста
func (h *Handlers) studentBack(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	st := h.studentStates

	switch st.State(chatID) {
	case state.StudentViewingConsultation:
		// Назад к консультациям выбранного преподавателя
		if teacherID := st.CounterpartID(chatID); teacherID != 0 {
			h.studentShowTeacherConsultations(ctx, b, chatID, user, teacherID)
			return
		}
	case state.StudentViewingTeacher:
		st.SetState(chatID, state.StudentDefault)
		h.sendWithKeyboard(ctx, b, chatID, "Выберите действие:", TeachersMenuKeyboard())
		return
	case state.StudentViewingRequest:
		h.studentShowRequests(ctx, b, chatID, user)
		return
	}

	st.ResetState(chatID)
	h.sendWithKeyboard(ctx, b, chatID, "🏠 Главное меню", StudentMenuKeyboard())
}

// studentShowTeachers показывает список преподавателей, query="" - всех
func (h *Handlers) studentShowTeachers(ctx context.Context, b *bot.Bot, chatID int64, query string) {
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

// studentSelectTeacher находит преподавателя по тексту кнопки с его именем
func (h *Handlers) studentSelectTeacher(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, name string) {
	teachers, err := h.userService.SearchTeachers(ctx, "")
	if err != nil {
		h.logger.Error("Failed to load teachers", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	for _, teacher := range teachers {
		if teacher.FullName() == name {
			h.studentShowTeacherConsultations(ctx, b, chatID, user, teacher.ID)
			return
		}
	}

	h.sendMessage(ctx, b, chatID, "😔 Преподаватель не найден. Выберите из списка.")
}

// studentShowTeacherConsultations показывает консультации преподавателя
// с учётом активного фильтра
func (h *Handlers) studentShowTeacherConsultations(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, teacherID int64) {
	st := h.studentStates
	st.SetCounterpart(chatID, teacherID)
	st.SetState(chatID, state.StudentViewingTeacher)

	filter := service.TimeFilter(st.Filter(chatID))
	consultations, err := h.consultationService.GetTeacherConsultations(ctx, teacherID, filter)
	if err != nil {
		h.logger.Error("Failed to load consultations", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	subscribed, err := h.registrationService.IsSubscribed(ctx, user.ID, teacherID)
	if err != nil {
		h.logger.Error("Failed to check subscription", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	teacher, err := h.userService.GetByID(ctx, teacherID)
	if err != nil || teacher == nil {
		h.sendError(ctx, b, chatID)
		return
	}

	text := fmt.Sprintf("👨‍🏫 %s\n\nКонсультаций: %d", teacher.FullName(), len(consultations))
	if len(consultations) == 0 {
		text = fmt.Sprintf("👨‍🏫 %s\n\nКонсультаций по выбранному фильтру нет.", teacher.FullName())
	}

	h.sendWithKeyboard(ctx, b, chatID, text,
		TeacherConsultationsKeyboard(consultations, subscribed))
}

// studentApplyFilter меняет фильтр и перерисовывает список консультаций
func (h *Handlers) studentApplyFilter(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, button string) {
	st := h.studentStates

	switch button {
	case BtnFilterPast:
		st.SetFilter(chatID, string(service.FilterPast))
	case BtnFilterAll:
		st.SetFilter(chatID, string(service.FilterAll))
	case BtnFilterFuture:
		st.SetFilter(chatID, string(service.FilterFuture))
	}

	if teacherID := st.CounterpartID(chatID); teacherID != 0 {
		h.studentShowTeacherConsultations(ctx, b, chatID, user, teacherID)
		return
	}
	h.sendMessage(ctx, b, chatID, "Сначала выберите преподавателя.")
}

// studentSelect обрабатывает выбор нумерованного пункта списка
func (h *Handlers) studentSelect(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	id, _, err := ParseSelector(text)
	if err != nil {
		h.sendMessage(ctx, b, chatID,
			"⚠️ Неверный формат номера. Используйте №<число>, например №12.")
		return
	}

	st := h.studentStates
	switch st.State(chatID) {
	case state.StudentViewingRequests, state.StudentViewingRequest:
		h.studentShowRequest(ctx, b, chatID, user, id)
	default:
		h.studentShowConsultation(ctx, b, chatID, user, id)
	}
}

// studentShowConsultation показывает карточку консультации
func (h *Handlers) studentShowConsultation(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, id int64) {
	c, err := h.consultationService.FindByID(ctx, id)
	if err != nil {
		h.logger.Error("Failed to load consultation", zap.Int64("consultation_id", id), zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}
	if c == nil || c.IsRequest() {
		h.sendMessage(ctx, b, chatID, "😔 Консультация не найдена.")
		return
	}

	count, err := h.consultationService.RegisteredCount(ctx, c.ID)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}

	registered, err := h.registrationService.IsRegistered(ctx, user.ID, c.ID)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}

	st := h.studentStates
	st.SetConsultation(chatID, c.ID)
	st.SetState(chatID, state.StudentViewingConsultation)

	h.sendWithKeyboard(ctx, b, chatID,
		FormatConsultation(c, count), StudentConsultationKeyboard(registered))
}

// studentStartRegistration запрашивает сообщение для преподавателя
func (h *Handlers) studentStartRegistration(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	st := h.studentStates
	if st.ConsultationID(chatID) == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите консультацию.")
		return
	}

	st.SetState(chatID, state.StudentEnteringRegMessage)
	h.sendWithKeyboard(ctx, b, chatID,
		"💬 Напишите сообщение преподавателю (вопрос или тему) или пропустите этот шаг:",
		keyboardSkipCancel())
}

// studentCompleteRegistration записывает студента на выбранную консультацию
func (h *Handlers) studentCompleteRegistration(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, message string) {
	st := h.studentStates
	consultationID := st.ConsultationID(chatID)
	st.SetState(chatID, state.StudentDefault)

	if consultationID == 0 {
		h.sendWithKeyboard(ctx, b, chatID, "Сначала выберите консультацию.", StudentMenuKeyboard())
		return
	}

	res, err := h.registrationService.Register(ctx, user.ID, consultationID, message)
	if err != nil {
		h.logger.Error("Failed to register student",
			zap.Int64("consultation_id", consultationID),
			zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	switch res.Outcome {
	case service.RegisterOK:
		text := "✅ Вы записаны на консультацию!"
		if res.AutoClosed {
			text += "\n🔒 Все места заняты, запись закрыта."
		}
		h.sendWithKeyboard(ctx, b, chatID, text, StudentMenuKeyboard())
	case service.RegisterAlreadyRegistered:
		h.sendWithKeyboard(ctx, b, chatID,
			"ℹ️ Вы уже записаны на эту консультацию.", StudentMenuKeyboard())
	case service.RegisterConsultationNotFound:
		h.sendWithKeyboard(ctx, b, chatID,
			"😔 Консультация не найдена.", StudentMenuKeyboard())
	case service.RegisterCancelled:
		h.sendWithKeyboard(ctx, b, chatID,
			"❌ Консультация отменена, запись невозможна.", StudentMenuKeyboard())
	case service.RegisterClosed:
		h.sendWithKeyboard(ctx, b, chatID,
			"🔒 Запись на консультацию закрыта.", StudentMenuKeyboard())
	case service.RegisterFull:
		h.sendWithKeyboard(ctx, b, chatID,
			fmt.Sprintf("😔 Все места заняты (%d из %d).", res.Count, res.Capacity),
			StudentMenuKeyboard())
	}
}

// studentCancelRegistration отменяет запись на выбранную консультацию
func (h *Handlers) studentCancelRegistration(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	st := h.studentStates
	consultationID := st.ConsultationID(chatID)
	if consultationID == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите консультацию.")
		return
	}

	res, err := h.registrationService.CancelRegistration(ctx, user.ID, consultationID)
	if err != nil {
		h.logger.Error("Failed to cancel registration",
			zap.Int64("consultation_id", consultationID),
			zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	if res.NotRegistered {
		h.sendMessage(ctx, b, chatID, "ℹ️ Вы не записаны на эту консультацию.")
		return
	}

	st.ResetState(chatID)
	h.sendWithKeyboard(ctx, b, chatID, "✅ Запись отменена.", StudentMenuKeyboard())

	// Свободное место анонсируется только если запись осталась открытой
	if res.Status == model.StatusOpen {
		c, err := h.consultationService.FindByID(ctx, consultationID)
		if err == nil && c != nil {
			h.notificationService.NotifySpotAvailable(ctx, c, user.ID)
		}
	}
}

// studentToggleSubscription подписывает или отписывает от преподавателя
func (h *Handlers) studentToggleSubscription(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, subscribe bool) {
	teacherID := h.studentStates.CounterpartID(chatID)
	if teacherID == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите преподавателя.")
		return
	}

	if subscribe {
		outcome, err := h.registrationService.Subscribe(ctx, user.ID, teacherID)
		if err != nil {
			h.sendError(ctx, b, chatID)
			return
		}
		if outcome == service.SubscribeAlready {
			h.sendMessage(ctx, b, chatID, "ℹ️ Вы уже подписаны на этого преподавателя.")
			return
		}
		h.sendMessage(ctx, b, chatID,
			"🔔 Вы подписались! Будем сообщать о новых консультациях преподавателя.")
		return
	}

	outcome, err := h.registrationService.Unsubscribe(ctx, user.ID, teacherID)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}
	if outcome == service.SubscribeNotSubscribed {
		h.sendMessage(ctx, b, chatID, "ℹ️ Вы не подписаны на этого преподавателя.")
		return
	}
	h.sendMessage(ctx, b, chatID, "🔕 Подписка отменена.")
}

// studentShowSubscriptions показывает подписки студента
func (h *Handlers) studentShowSubscriptions(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	subs, err := h.registrationService.GetStudentSubscriptions(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to load subscriptions", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}
	if len(subs) == 0 {
		h.sendMessage(ctx, b, chatID,
			"У вас пока нет подписок. Подпишитесь на преподавателя в разделе 🔍 Преподаватели.")
		return
	}

	teachers := make([]*model.User, 0, len(subs))
	for _, sub := range subs {
		if sub.Teacher != nil {
			teachers = append(teachers, sub.Teacher)
		}
	}

	h.sendWithKeyboard(ctx, b, chatID,
		fmt.Sprintf("🔔 Ваши подписки (%d):", len(teachers)),
		TeacherListKeyboard(teachers))
}

// studentShowRegistrations показывает записи студента
func (h *Handlers) studentShowRegistrations(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	regs, err := h.registrationService.GetStudentRegistrations(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to load registrations", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}
	if len(regs) == 0 {
		h.sendMessage(ctx, b, chatID, "Вы пока никуда не записаны.")
		return
	}

	consultations := make([]*model.Consultation, 0, len(regs))
	for _, reg := range regs {
		if reg.Consultation != nil {
			consultations = append(consultations, reg.Consultation)
		}
	}

	h.studentStates.SetState(chatID, state.StudentDefault)
	h.sendWithKeyboard(ctx, b, chatID,
		fmt.Sprintf("📝 Ваши записи (%d):", len(consultations)),
		MyConsultationsKeyboard(consultations))
}

// studentCreateRequest создаёт запрос консультации
func (h *Handlers) studentCreateRequest(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, title string) {
	h.studentStates.SetState(chatID, state.StudentDefault)

	title = strings.TrimSpace(title)
	if title == "" {
		h.sendWithKeyboard(ctx, b, chatID,
			"⚠️ Тема не может быть пустой.", StudentMenuKeyboard())
		return
	}

	if _, err := h.consultationService.CreateRequest(ctx, user, title); err != nil {
		h.logger.Error("Failed to create request", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		"✅ Запрос создан! Вы автоматически записаны на него.\n"+
			"Когда преподаватель примет запрос, вы получите уведомление.",
		StudentMenuKeyboard())
}

// studentShowRequests показывает все открытые запросы
func (h *Handlers) studentShowRequests(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
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

	h.studentStates.SetState(chatID, state.StudentViewingRequests)
	h.sendWithKeyboard(ctx, b, chatID,
		"📋 Запросы консультаций (в скобках — число заинтересованных):",
		RequestListKeyboard(requests, counts))
}

// studentShowRequest показывает карточку запроса
func (h *Handlers) studentShowRequest(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, id int64) {
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

	registered, err := h.registrationService.IsRegistered(ctx, user.ID, request.ID)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}

	st := h.studentStates
	st.SetConsultation(chatID, request.ID)
	st.SetState(chatID, state.StudentViewingRequest)

	h.sendWithKeyboard(ctx, b, chatID,
		fmt.Sprintf("❓ №%d %s\n\n👥 Заинтересованы: %d", request.ID, request.Title, count),
		StudentRequestKeyboard(registered))
}

// studentRegisterForRequest запрашивает тему или вопрос к запросу
func (h *Handlers) studentRegisterForRequest(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	st := h.studentStates
	requestID := st.ConsultationID(chatID)
	if requestID == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите запрос.")
		return
	}

	st.UpdateDraft(chatID, func(d *state.StudentDraft) { d.RequestID = requestID })
	st.SetState(chatID, state.StudentEnteringReqMessage)
	h.sendWithKeyboard(ctx, b, chatID,
		"💬 Укажите тему или вопрос, который хотите обсудить, или пропустите этот шаг:",
		keyboardSkipCancel())
}

// studentCompleteRequestRegistration присоединяет студента к запросу
func (h *Handlers) studentCompleteRequestRegistration(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, message string) {
	st := h.studentStates
	requestID := st.Draft(chatID).RequestID
	st.SetState(chatID, state.StudentDefault)

	if requestID == 0 {
		h.sendWithKeyboard(ctx, b, chatID, "Сначала выберите запрос.", StudentMenuKeyboard())
		return
	}

	res, err := h.registrationService.Register(ctx, user.ID, requestID, message)
	if err != nil {
		h.logger.Error("Failed to register for request",
			zap.Int64("request_id", requestID),
			zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	switch res.Outcome {
	case service.RegisterOK:
		h.sendWithKeyboard(ctx, b, chatID,
			"✅ Вы записались на запрос!\n\n"+
				"Когда преподаватель примет запрос и создаст консультацию, вы будете записаны на неё автоматически.",
			StudentMenuKeyboard())
	case service.RegisterAlreadyRegistered:
		h.sendWithKeyboard(ctx, b, chatID, "ℹ️ Вы уже записаны на этот запрос.", StudentMenuKeyboard())
	default:
		h.sendWithKeyboard(ctx, b, chatID, "😔 Запрос не найден.", StudentMenuKeyboard())
	}
}

// studentUnregisterFromRequest отписывает студента от запроса.
// Запрос без заинтересованных удаляется.
func (h *Handlers) studentUnregisterFromRequest(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	st := h.studentStates
	requestID := st.ConsultationID(chatID)
	if requestID == 0 {
		h.sendMessage(ctx, b, chatID, "Сначала выберите запрос.")
		return
	}

	res, err := h.consultationService.UnregisterFromRequest(ctx, user.ID, requestID)
	if err != nil {
		h.sendError(ctx, b, chatID)
		return
	}

	switch {
	case res.NotRegistered:
		h.sendMessage(ctx, b, chatID, "ℹ️ Вы не записаны на этот запрос.")
	case res.RequestDeleted:
		st.ResetState(chatID)
		h.sendWithKeyboard(ctx, b, chatID,
			"✅ Вы отписались. Запрос удалён, так как заинтересованных не осталось.",
			StudentMenuKeyboard())
	default:
		h.sendMessage(ctx, b, chatID, "✅ Вы отписались от запроса.")
	}
}

// studentUpdateName сохраняет новое имя или фамилию
func (h *Handlers) studentUpdateName(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, firstName, lastName string) {
	h.studentStates.SetState(chatID, state.StudentEditingProfile)

	if err := h.userService.UpdateName(ctx, user, firstName, lastName); err != nil {
		h.logger.Error("Failed to update profile", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		"✅ Профиль обновлён.\n\n"+FormatProfile(user), ProfileKeyboard(false))
}
