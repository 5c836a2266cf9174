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

const consultationColumns = `id, title, teacher_id, date, start_time, end_time, capacity, auto_close, status, closed_reason, created_at`

type ConsultationRepository struct {
	*base.Repository
}

func NewConsultationRepository(pool *pgxpool.Pool) *ConsultationRepository {
	return &ConsultationRepository{Repository: base.NewRepository(pool)}
}

func scanConsultation(row pgx.Row) (*model.Consultation, error) {
	var c model.Consultation
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.TeacherID,
		&c.Date,
		&c.StartTime,
		&c.EndTime,
		&c.Capacity,
		&c.AutoClose,
		&c.Status,
		&c.ClosedReason,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectConsultations(rows pgx.Rows) ([]*model.Consultation, error) {
	defer rows.Close()

	var consultations []*model.Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consultation: %w", err)
		}
		consultations = append(consultations, c)
	}
	return consultations, rows.Err()
}

// Create создаёт новую консультацию (или запрос)
func (r *ConsultationRepository) Create(ctx context.Context, c *model.Consultation) error {
	query := `
		INSERT INTO consultations (title, teacher_id, date, start_time, end_time, capacity, auto_close, status, closed_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		c.Title,
		c.TeacherID,
		c.Date,
		c.StartTime,
		c.EndTime,
		c.Capacity,
		c.AutoClose,
		c.Status,
		c.ClosedReason,
	).Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		return fmt.Errorf("create consultation: %w", err)
	}

	return nil
}

// GetByID получает консультацию по ID
func (r *ConsultationRepository) GetByID(ctx context.Context, id int64) (*model.Consultation, error) {
	query := `SELECT ` + consultationColumns + ` FROM consultations WHERE id = $1`

	c, err := scanConsultation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get consultation by id: %w", err)
	}

	return c, nil
}

// Update сохраняет изменённую консультацию
func (r *ConsultationRepository) Update(ctx context.Context, c *model.Consultation) error {
	query := `
		UPDATE consultations
		SET title = $1, teacher_id = $2, date = $3, start_time = $4, end_time = $5,
		    capacity = $6, auto_close = $7, status = $8, closed_reason = $9
		WHERE id = $10
	`

	affected, err := r.ExecAffected(
		ctx, query,
		c.Title,
		c.TeacherID,
		c.Date,
		c.StartTime,
		c.EndTime,
		c.Capacity,
		c.AutoClose,
		c.Status,
		c.ClosedReason,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update consultation: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("consultation not found")
	}

	return nil
}

// GetByTeacher получает все консультации преподавателя (включая запросы, где он автор)
func (r *ConsultationRepository) GetByTeacher(ctx context.Context, teacherID int64) ([]*model.Consultation, error) {
	query := `
		SELECT ` + consultationColumns + `
		FROM consultations
		WHERE teacher_id = $1
		ORDER BY date NULLS LAST, start_time
	`

	rows, err := r.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get consultations by teacher: %w", err)
	}

	return collectConsultations(rows)
}

// GetByTeacherAndStatus получает консультации преподавателя с определённым статусом
func (r *ConsultationRepository) GetByTeacherAndStatus(ctx context.Context, teacherID int64, status model.ConsultationStatus) ([]*model.Consultation, error) {
	query := `
		SELECT ` + consultationColumns + `
		FROM consultations
		WHERE teacher_id = $1 AND status = $2
		ORDER BY id DESC
	`

	rows, err := r.Query(ctx, query, teacherID, status)
	if err != nil {
		return nil, fmt.Errorf("get consultations by teacher and status: %w", err)
	}

	return collectConsultations(rows)
}

// GetByStatus получает все консультации с определённым статусом
func (r *ConsultationRepository) GetByStatus(ctx context.Context, status model.ConsultationStatus) ([]*model.Consultation, error) {
	query := `
		SELECT ` + consultationColumns + `
		FROM consultations
		WHERE status = $1
		ORDER BY id DESC
	`

	rows, err := r.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("get consultations by status: %w", err)
	}

	return collectConsultations(rows)
}

// CountRegistrations возвращает актуальное число записей на консультацию.
// Всегда читается из БД, а не из памяти, чтобы не работать с устаревшим счётчиком.
func (r *ConsultationRepository) CountRegistrations(ctx context.Context, consultationID int64) (int64, error) {
	var count int64
	err := r.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM registrations WHERE consultation_id = $1`,
		consultationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// GetExpiredOpen получает открытые консультации с датой раньше указанной
func (r *ConsultationRepository) GetExpiredOpen(ctx context.Context, before time.Time) ([]*model.Consultation, error) {
	query := `
		SELECT ` + consultationColumns + `
		FROM consultations
		WHERE status = $1 AND date IS NOT NULL AND date < $2
	`

	rows, err := r.Query(ctx, query, model.StatusOpen, before)
	if err != nil {
		return nil, fmt.Errorf("get expired consultations: %w", err)
	}

	return collectConsultations(rows)
}

// DeleteOlderThan удаляет консультации с датой раньше указанной.
// Записи студентов должны быть удалены до вызова.
func (r *ConsultationRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	affected, err := r.ExecAffected(
		ctx,
		`DELETE FROM consultations WHERE date IS NOT NULL AND date < $1`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old consultations: %w", err)
	}
	return affected, nil
}

// Delete удаляет консультацию (используется для пустых запросов)
func (r *ConsultationRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM consultations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete consultation: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("consultation not found")
	}

	return nil
}
