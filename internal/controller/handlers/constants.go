package handlers

// Тексты кнопок клавиатуры. Роутер сопоставляет входящие сообщения
// с этими константами, поэтому тексты должны совпадать байт в байт.
const (
	// Навигация
	BtnBack     = "◀️ Назад"
	BtnMainMenu = "🏠 Главное меню"
	BtnCancel   = "❌ Отмена"
	BtnSkip     = "➡️ Пропустить"
	BtnHelp     = "Помощь"

	// Выбор роли при регистрации
	BtnRoleStudent = "Я студент"
	BtnRoleTeacher = "Я преподаватель"
	BtnRoleDeanery = "Я сотрудник деканата"

	// Фильтры консультаций
	BtnFilterPast   = "⏮️ Прошедшие"
	BtnFilterAll    = "📅 Все"
	BtnFilterFuture = "⏭️ Будущие"

	// Преподаватели
	BtnTeachersMenu  = "🔍 Преподаватели"
	BtnAllTeachers   = "👥 Все преподаватели"
	BtnSearchTeacher = "🔍 Поиск преподавателя"

	// Действия студента
	BtnSubscribe          = "🔔 Подписаться"
	BtnUnsubscribe        = "🔕 Отписаться"
	BtnSubscriptions      = "🔔 Подписки на обновления"
	BtnMyRegistrations    = "📝 Мои записи"
	BtnRegister           = "✅ Записаться"
	BtnCancelRegistration = "❌ Отменить запись"

	// Запросы консультаций
	BtnRequestConsultation   = "❓ Запросить консультацию"
	BtnViewRequests          = "📋 Просмотреть запросы"
	BtnRegisterForRequest    = "✅ Записаться на запрос"
	BtnUnregisterFromRequest = "❌ Отписаться от запроса"

	// Действия преподавателя
	BtnCreateConsultation = "➕ Создать консультацию"
	BtnMyConsultations    = "📅 Мои консультации"
	BtnMyTasks            = "📋 Мои задачи"
	BtnAcceptRequest      = "✅ Принять запрос"
	BtnViewStudents       = "👥 Просмотреть студентов"
	BtnCloseRegistration  = "🔒 Закрыть запись"
	BtnOpenRegistration   = "🔓 Открыть запись"
	BtnEditConsultation   = "✏️ Редактировать"
	BtnCancelConsultation = "❌ Отменить консультацию"
	BtnEditTitle          = "📋 Название"
	BtnEditDateTime       = "📅 Дата и время"
	BtnEditCapacity       = "👥 Вместимость"
	BtnEditAutoClose      = "🔒 Автозакрытие"
	BtnYes                = "Да"
	BtnNo                 = "Нет"

	// Действия деканата
	BtnCreateTask          = "📝 Создать задачу"
	BtnTeacherTasks        = "📋 Задачи преподавателя"
	BtnAllTasks            = "📋 Все задачи"
	BtnMarkCompleted       = "✅ Отметить выполненной"
	BtnMarkPending         = "⏳ Отметить невыполненной"
	BtnEditTask            = "✏️ Редактировать"
	BtnEditTaskTitle       = "📋 Изменить название"
	BtnEditTaskDescription = "📝 Изменить описание"
	BtnEditTaskDeadline    = "⏰ Изменить дедлайн"
	BtnDeleteTask          = "🗑️ Удалить"

	// Фильтры задач
	BtnFilterTaskIncomplete = "❌ Невыполненные"
	BtnFilterTaskAll        = "📋 Все"
	BtnFilterTaskCompleted  = "✅ Выполненные"

	// Профиль
	BtnProfile          = "👤 Профиль"
	BtnEditFirstName    = "✏️ Изменить имя"
	BtnEditLastName     = "✏️ Изменить фамилию"
	BtnEditReminderTime = "⏰ Время напоминаний"

	// Префиксы нумерованных кнопок
	TeacherPrefix = "👨‍🏫 "
	NumberPrefix  = "№"
)

// Фильтры задач в сессии
const (
	TaskFilterAll        = "all"
	TaskFilterCompleted  = "completed"
	TaskFilterIncomplete = "incomplete"
)
