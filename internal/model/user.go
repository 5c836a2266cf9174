package model

import "time"

// Role роль пользователя в боте
type Role string

const (
	RoleStudent Role = "student" // Студент
	RoleTeacher Role = "teacher" // Преподаватель
	RoleDeanery Role = "deanery" // Сотрудник деканата
)

type User struct {
	ID              int64     `json:"id"`
	TelegramID      int64     `json:"telegram_id"`
	Username        string    `json:"username"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           string    `json:"phone"`
	Role            Role      `json:"role"`
	HasConfirmed    bool      `json:"has_confirmed"`    // Подтверждён администратором (для преподавателей и деканата)
	ReminderMinutes *int      `json:"reminder_minutes"` // За сколько минут до дедлайна напоминать (nil = напоминания выключены)
	CreatedAt       time.Time `json:"created_at"`
}

// FullName возвращает имя и фамилию для отображения
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
