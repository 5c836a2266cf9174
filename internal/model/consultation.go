package model

import "time"

// ConsultationStatus статус консультации
type ConsultationStatus string

const (
	StatusOpen      ConsultationStatus = "open"      // Открыта для записи
	StatusClosed    ConsultationStatus = "closed"    // Запись временно закрыта (можно вновь открыть)
	StatusCancelled ConsultationStatus = "cancelled" // Отменена (окончательно)
	StatusRequest   ConsultationStatus = "request"   // Запрос от студентов, без даты и времени
)

type Consultation struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`

	// TeacherID для обычной консультации - преподаватель.
	// Для запроса (status = request) здесь хранится ID студента-автора запроса,
	// при принятии запроса поле перезаписывается настоящим преподавателем.
	TeacherID int64 `json:"teacher_id"`

	Date      *time.Time `json:"date"`       // nil только пока статус request
	StartTime *time.Time `json:"start_time"` // nil только пока статус request
	EndTime   *time.Time `json:"end_time"`   // nil только пока статус request

	Capacity     *int               `json:"capacity"` // nil = без ограничений
	AutoClose    bool               `json:"auto_close"`
	Status       ConsultationStatus `json:"status"`
	ClosedReason string             `json:"closed_reason"`
	CreatedAt    time.Time          `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Teacher *User `json:"teacher,omitempty"`
}

// IsRequest проверяет, является ли запись запросом консультации
func (c *Consultation) IsRequest() bool {
	return c.Status == StatusRequest
}

// HasCapacityLimit проверяет, ограничено ли число мест
func (c *Consultation) HasCapacityLimit() bool {
	return c.Capacity != nil && *c.Capacity > 0
}
