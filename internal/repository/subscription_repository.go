package repository

import (
	"context"
	"fmt"

	"consultation-bot/internal/model"
	"consultation-bot/internal/repository/base"
	"consultation-bot/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	*base.Repository
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт подписку студента на преподавателя
func (r *SubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (student_id, teacher_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, sub.StudentID, sub.TeacherID).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create subscription: %w", service.ErrDuplicate)
		}
		return fmt.Errorf("create subscription: %w", err)
	}

	return nil
}

// Exists проверяет, подписан ли студент на преподавателя
func (r *SubscriptionRepository) Exists(ctx context.Context, studentID, teacherID int64) (bool, error) {
	var exists bool
	err := r.QueryRow(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE student_id = $1 AND teacher_id = $2)`,
		studentID, teacherID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return exists, nil
}

// GetByTeacher получает все подписки на преподавателя вместе со студентами
func (r *SubscriptionRepository) GetByTeacher(ctx context.Context, teacherID int64) ([]*model.Subscription, error) {
	query := `
		SELECT s.id, s.student_id, s.teacher_id, s.created_at,
		       u.id, u.telegram_id, u.username, u.first_name, u.last_name, u.phone, u.role, u.has_confirmed, u.reminder_minutes, u.created_at
		FROM subscriptions s
		JOIN users u ON u.id = s.student_id
		WHERE s.teacher_id = $1
	`

	rows, err := r.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get subscriptions by teacher: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscription
	for rows.Next() {
		var sub model.Subscription
		var student model.User
		err := rows.Scan(
			&sub.ID,
			&sub.StudentID,
			&sub.TeacherID,
			&sub.CreatedAt,
			&student.ID,
			&student.TelegramID,
			&student.Username,
			&student.FirstName,
			&student.LastName,
			&student.Phone,
			&student.Role,
			&student.HasConfirmed,
			&student.ReminderMinutes,
			&student.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sub.Student = &student
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

// GetByStudent получает все подписки студента вместе с преподавателями
func (r *SubscriptionRepository) GetByStudent(ctx context.Context, studentID int64) ([]*model.Subscription, error) {
	query := `
		SELECT s.id, s.student_id, s.teacher_id, s.created_at,
		       u.id, u.telegram_id, u.username, u.first_name, u.last_name, u.phone, u.role, u.has_confirmed, u.reminder_minutes, u.created_at
		FROM subscriptions s
		JOIN users u ON u.id = s.teacher_id
		WHERE s.student_id = $1
		ORDER BY u.last_name, u.first_name
	`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get subscriptions by student: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscription
	for rows.Next() {
		var sub model.Subscription
		var teacher model.User
		err := rows.Scan(
			&sub.ID,
			&sub.StudentID,
			&sub.TeacherID,
			&sub.CreatedAt,
			&teacher.ID,
			&teacher.TelegramID,
			&teacher.Username,
			&teacher.FirstName,
			&teacher.LastName,
			&teacher.Phone,
			&teacher.Role,
			&teacher.HasConfirmed,
			&teacher.ReminderMinutes,
			&teacher.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sub.Teacher = &teacher
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

// Delete удаляет подписку по паре студент-преподаватель
func (r *SubscriptionRepository) Delete(ctx context.Context, studentID, teacherID int64) error {
	affected, err := r.ExecAffected(
		ctx,
		`DELETE FROM subscriptions WHERE student_id = $1 AND teacher_id = $2`,
		studentID, teacherID,
	)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("subscription not found")
	}

	return nil
}
