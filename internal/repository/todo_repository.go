package repository

import (
	"context"
	"fmt"
	"time"

	"consultation-bot/internal/model"
	"consultation-bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const todoColumns = `id, title, description, deadline, teacher_id, created_by_id, is_completed, completed_at, reminder_sent, created_at`

type TodoRepository struct {
	*base.Repository
}

func NewTodoRepository(pool *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{Repository: base.NewRepository(pool)}
}

func scanTask(row pgx.Row) (*model.TodoTask, error) {
	var t model.TodoTask
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Deadline,
		&t.TeacherID,
		&t.CreatedByID,
		&t.IsCompleted,
		&t.CompletedAt,
		&t.ReminderSent,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]*model.TodoTask, error) {
	defer rows.Close()

	var tasks []*model.TodoTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create создаёт задачу
func (r *TodoRepository) Create(ctx context.Context, t *model.TodoTask) error {
	query := `
		INSERT INTO todo_tasks (title, description, deadline, teacher_id, created_by_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		t.Title,
		t.Description,
		t.Deadline,
		t.TeacherID,
		t.CreatedByID,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

// GetByID получает задачу по ID
func (r *TodoRepository) GetByID(ctx context.Context, id int64) (*model.TodoTask, error) {
	query := `SELECT ` + todoColumns + ` FROM todo_tasks WHERE id = $1`

	t, err := scanTask(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return t, nil
}

// GetAll получает все задачи
func (r *TodoRepository) GetAll(ctx context.Context) ([]*model.TodoTask, error) {
	query := `SELECT ` + todoColumns + ` FROM todo_tasks ORDER BY deadline NULLS LAST, id DESC`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all tasks: %w", err)
	}

	return collectTasks(rows)
}

// GetByTeacher получает все задачи преподавателя
func (r *TodoRepository) GetByTeacher(ctx context.Context, teacherID int64) ([]*model.TodoTask, error) {
	query := `SELECT ` + todoColumns + ` FROM todo_tasks WHERE teacher_id = $1 ORDER BY deadline NULLS LAST, id DESC`

	rows, err := r.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get tasks by teacher: %w", err)
	}

	return collectTasks(rows)
}

// GetPendingWithDeadlineAfter получает невыполненные задачи без отправленного
// напоминания с дедлайном после указанного времени вместе с преподавателями
func (r *TodoRepository) GetPendingWithDeadlineAfter(ctx context.Context, after time.Time) ([]*model.TodoTask, error) {
	query := `
		SELECT t.id, t.title, t.description, t.deadline, t.teacher_id, t.created_by_id, t.is_completed, t.completed_at, t.reminder_sent, t.created_at,
		       u.id, u.telegram_id, u.username, u.first_name, u.last_name, u.phone, u.role, u.has_confirmed, u.reminder_minutes, u.created_at
		FROM todo_tasks t
		JOIN users u ON u.id = t.teacher_id
		WHERE t.is_completed = false AND t.reminder_sent = false
		  AND t.deadline IS NOT NULL AND t.deadline > $1
	`

	rows, err := r.Query(ctx, query, after)
	if err != nil {
		return nil, fmt.Errorf("get pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.TodoTask
	for rows.Next() {
		var t model.TodoTask
		var teacher model.User
		err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Deadline,
			&t.TeacherID,
			&t.CreatedByID,
			&t.IsCompleted,
			&t.CompletedAt,
			&t.ReminderSent,
			&t.CreatedAt,
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
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Teacher = &teacher
		tasks = append(tasks, &t)
	}

	return tasks, rows.Err()
}

// Update сохраняет изменённую задачу
func (r *TodoRepository) Update(ctx context.Context, t *model.TodoTask) error {
	query := `
		UPDATE todo_tasks
		SET title = $1, description = $2, deadline = $3, is_completed = $4,
		    completed_at = $5, reminder_sent = $6
		WHERE id = $7
	`

	affected, err := r.ExecAffected(
		ctx, query,
		t.Title,
		t.Description,
		t.Deadline,
		t.IsCompleted,
		t.CompletedAt,
		t.ReminderSent,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("task not found")
	}

	return nil
}

// Delete удаляет задачу
func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM todo_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("task not found")
	}

	return nil
}
