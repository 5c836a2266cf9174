package model

import "time"

// Registration запись студента на консультацию.
// Пара (student_id, consultation_id) уникальна.
type Registration struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id"`
	ConsultationID int64     `json:"consultation_id"`
	Message        string    `json:"message"` // Тема или вопрос студента
	CreatedAt      time.Time `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Student      *User         `json:"student,omitempty"`
	Consultation *Consultation `json:"consultation,omitempty"`
}
