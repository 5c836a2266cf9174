package model

import "time"

// TodoTask задача, которую деканат ставит преподавателю
type TodoTask struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Deadline     *time.Time `json:"deadline"`
	TeacherID    int64      `json:"teacher_id"`
	CreatedByID  int64      `json:"created_by_id"`
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at"`
	ReminderSent bool       `json:"reminder_sent"`
	CreatedAt    time.Time  `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Teacher *User `json:"teacher,omitempty"`
}
