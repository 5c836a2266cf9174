package state

import "time"

// StudentState - состояния диалога студента
type StudentState string

const (
	StudentDefault StudentState = "" // Главное меню

	StudentSearchingTeacher    StudentState = "searching_teacher"
	StudentEnteringRegMessage  StudentState = "entering_registration_message"
	StudentEnteringReqTitle    StudentState = "entering_request_title"
	StudentEnteringReqMessage  StudentState = "entering_request_message"
	StudentEnteringFirstName   StudentState = "entering_first_name"
	StudentEnteringLastName    StudentState = "entering_last_name"
	StudentViewingTeacher      StudentState = "viewing_teacher"
	StudentViewingConsultation StudentState = "viewing_consultation"
	StudentViewingRequests     StudentState = "viewing_requests"
	StudentViewingRequest      StudentState = "viewing_request"
	StudentEditingProfile      StudentState = "editing_profile"
)

// TeacherState - состояния диалога преподавателя
type TeacherState string

const (
	TeacherDefault TeacherState = "" // Главное меню

	// Создание консультации: название → дата и время → вместимость → автозакрытие
	TeacherCreatingTitle     TeacherState = "creating_title"
	TeacherCreatingSchedule  TeacherState = "creating_schedule"
	TeacherCreatingCapacity  TeacherState = "creating_capacity"
	TeacherCreatingAutoClose TeacherState = "creating_auto_close"

	// Принятие запроса: дата и время → вместимость → автозакрытие
	TeacherAcceptingSchedule  TeacherState = "accepting_schedule"
	TeacherAcceptingCapacity  TeacherState = "accepting_capacity"
	TeacherAcceptingAutoClose TeacherState = "accepting_auto_close"

	// Редактирование выбранной консультации
	TeacherEditingTitle     TeacherState = "editing_title"
	TeacherEditingSchedule  TeacherState = "editing_schedule"
	TeacherEditingCapacity  TeacherState = "editing_capacity"
	TeacherEditingAutoClose TeacherState = "editing_auto_close"
	TeacherEnteringReason   TeacherState = "entering_cancel_reason"

	TeacherEnteringFirstName TeacherState = "entering_first_name"
	TeacherEnteringLastName  TeacherState = "entering_last_name"
	TeacherEnteringReminder  TeacherState = "entering_reminder_minutes"

	TeacherViewingConsultations TeacherState = "viewing_consultations"
	TeacherViewingConsultation  TeacherState = "viewing_consultation"
	TeacherEditingConsultation  TeacherState = "editing_consultation"
	TeacherViewingRequests      TeacherState = "viewing_requests"
	TeacherViewingRequest       TeacherState = "viewing_request"
	TeacherViewingTasks         TeacherState = "viewing_tasks"
	TeacherViewingTask          TeacherState = "viewing_task"
	TeacherEditingProfile       TeacherState = "editing_profile"
)

// DeaneryState - состояния диалога сотрудника деканата
type DeaneryState string

const (
	DeaneryDefault DeaneryState = "" // Главное меню

	DeanerySearchingTeacher DeaneryState = "searching_teacher"

	// Создание задачи: название → описание → срок
	DeaneryEnteringTaskTitle       DeaneryState = "entering_task_title"
	DeaneryEnteringTaskDescription DeaneryState = "entering_task_description"
	DeaneryEnteringTaskDeadline    DeaneryState = "entering_task_deadline"

	// Редактирование выбранной задачи по одному полю
	DeaneryEditingTaskTitle       DeaneryState = "editing_task_title"
	DeaneryEditingTaskDescription DeaneryState = "editing_task_description"
	DeaneryEditingTaskDeadline    DeaneryState = "editing_task_deadline"

	DeaneryEnteringFirstName DeaneryState = "entering_first_name"
	DeaneryEnteringLastName  DeaneryState = "entering_last_name"

	DeaneryViewingTeacher DeaneryState = "viewing_teacher"
	DeaneryViewingTasks   DeaneryState = "viewing_tasks"
	DeaneryViewingTask    DeaneryState = "viewing_task"
	DeaneryEditingProfile DeaneryState = "editing_profile"
)

// ConsultationDraft накапливает данные многошагового создания
// или принятия консультации
type ConsultationDraft struct {
	Title     string
	Date      *time.Time
	StartTime *time.Time
	EndTime   *time.Time
	Capacity  *int
	AutoClose bool
}

// TodoDraft накапливает данные многошагового создания задачи
type TodoDraft struct {
	Title       string
	Description string
	Deadline    *time.Time
}

// StudentDraft - расширение сессии студента
type StudentDraft struct {
	RequestID int64
}

// TeacherDraft - расширение сессии преподавателя
type TeacherDraft struct {
	Consultation ConsultationDraft
	RequestID    int64
	TaskID       int64
	TaskFilter   string
}

// DeaneryDraft - расширение сессии сотрудника деканата
type DeaneryDraft struct {
	Todo       TodoDraft
	TaskFilter string
}

// Типизированные менеджеры для каждой роли
type (
	StudentManager = Manager[StudentState, StudentDraft]
	TeacherManager = Manager[TeacherState, TeacherDraft]
	DeaneryManager = Manager[DeaneryState, DeaneryDraft]
)

func NewStudentManager() *StudentManager {
	return NewManager[StudentState, StudentDraft](StudentDefault)
}

func NewTeacherManager() *TeacherManager {
	return NewManager[TeacherState, TeacherDraft](TeacherDefault)
}

func NewDeaneryManager() *DeaneryManager {
	return NewManager[DeaneryState, DeaneryDraft](DeaneryDefault)
}
