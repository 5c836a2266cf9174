package repository

import (
	"context"
	"fmt"
	"time"

	"consultation-bot/internal/model"
	"consultation-bot/internal/repository/base"
	"consultation-bot/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationRepository struct {
	*base.Repository
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт запись студента на консультацию
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	query := `
		INSERT INTO registrations (student_id, consultation_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		reg.StudentID,
		reg.ConsultationID,
		reg.Message,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create registration: %w", service.ErrDuplicate)
		}
		return fmt.Errorf("create registration: %w", err)
	}

	return nil
}

// GetByStudentAndConsultation получает запись студента на консультацию
func (r *RegistrationRepository) GetByStudentAndConsultation(ctx context.Context, studentID, consultationID int64) (*model.Registration, error) {
	query := `
		SELECT id, student_id, consultation_id, message, created_at
		FROM registrations
		WHERE student_id = $1 AND consultation_id = $2
	`

	var reg model.Registration
	err := r.QueryRow(ctx, query, studentID, consultationID).Scan(
		&reg.ID,
		&reg.StudentID,
		&reg.ConsultationID,
		&reg.Message,
		&reg.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}

	return &reg, nil
}

// GetByConsultation получает все записи на консультацию вместе со студентами
func (r *RegistrationRepository) GetByConsultation(ctx context.Context, consultationID int64) ([]*model.Registration, error) {
	query := `
		SELECT r.id, r.student_id, r.consultation_id, r.message, r.created_at,
		       u.id, u.telegram_id, u.username, u.first_name, u.last_name, u.phone, u.role, u.has_confirmed, u.reminder_minutes, u.created_at
		FROM registrations r
		JOIN users u ON u.id = r.student_id
		WHERE r.consultation_id = $1
		ORDER BY r.created_at
	`

	rows, err := r.Query(ctx, query, consultationID)
	if err != nil {
		return nil, fmt.Errorf("get registrations by consultation: %w", err)
	}
	defer rows.Close()

	var regs []*model.Registration
	for rows.Next() {
		var reg model.Registration
		var student model.User
		err := rows.Scan(
			&reg.ID,
			&reg.StudentID,
			&reg.ConsultationID,
			&reg.Message,
			&reg.CreatedAt,
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
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.Student = &student
		regs = append(regs, &reg)
	}

	return regs, rows.Err()
}

// GetByStudent получает все записи студента (без запросов консультаций)
func (r *RegistrationRepository) GetByStudent(ctx context.Context, studentID int64) ([]*model.Registration, error) {
	query := `
		SELECT r.id, r.student_id, r.consultation_id, r.message, r.created_at,
		       c.id, c.title, c.teacher_id, c.date, c.start_time, c.end_time, c.capacity, c.auto_close, c.status, c.closed_reason, c.created_at
		FROM registrations r
		JOIN consultations c ON c.id = r.consultation_id
		WHERE r.student_id = $1 AND c.status != $2
		ORDER BY c.date NULLS LAST, c.start_time
	`

	rows, err := r.Query(ctx, query, studentID, model.StatusRequest)
	if err != nil {
		return nil, fmt.Errorf("get registrations by student: %w", err)
	}
	defer rows.Close()

	var regs []*model.Registration
	for rows.Next() {
		var reg model.Registration
		var c model.Consultation
		err := rows.Scan(
			&reg.ID,
			&reg.StudentID,
			&reg.ConsultationID,
			&reg.Message,
			&reg.CreatedAt,
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
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.Consultation = &c
		regs = append(regs, &reg)
	}

	return regs, rows.Err()
}

// Delete удаляет запись
func (r *RegistrationRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("registration not found")
	}

	return nil
}

// DeleteByConsultation удаляет все записи на консультацию
func (r *RegistrationRepository) DeleteByConsultation(ctx context.Context, consultationID int64) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM registrations WHERE consultation_id = $1`, consultationID)
	if err != nil {
		return 0, fmt.Errorf("delete registrations by consultation: %w", err)
	}
	return affected, nil
}

// DeleteByConsultationDateBefore удаляет записи на консультации старше указанной даты
func (r *RegistrationRepository) DeleteByConsultationDateBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM registrations
		WHERE consultation_id IN (
			SELECT id FROM consultations WHERE date IS NOT NULL AND date < $1
		)
	`

	affected, err := r.ExecAffected(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("delete old registrations: %w", err)
	}
	return affected, nil
}
