package model

import "time"

// Subscription подписка студента на обновления преподавателя.
// Пара (student_id, teacher_id) уникальна.
type Subscription struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	TeacherID int64     `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Student *User `json:"student,omitempty"`
	Teacher *User `json:"teacher,omitempty"`
}
