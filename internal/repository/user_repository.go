package repository

import (
	"context"
	"fmt"

	"consultation-bot/internal/model"
	"consultation-bot/internal/repository/base"
	"consultation-bot/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, telegram_id, username, first_name, last_name, phone, role, has_confirmed, reminder_minutes, created_at`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&user.HasConfirmed,
		&user.ReminderMinutes,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func collectUsers(rows pgx.Rows) ([]*model.User, error) {
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, phone, role, has_confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.HasConfirmed,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", service.ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}

	return user, nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetTeachers получает всех подтверждённых преподавателей
func (r *UserRepository) GetTeachers(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1 AND has_confirmed = true
		ORDER BY last_name, first_name
	`

	rows, err := r.Query(ctx, query, model.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("get teachers: %w", err)
	}

	return collectUsers(rows)
}

// SearchTeachers ищет подтверждённых преподавателей по части имени или фамилии
func (r *UserRepository) SearchTeachers(ctx context.Context, query string) ([]*model.User, error) {
	sql := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1 AND has_confirmed = true
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR first_name || ' ' || last_name ILIKE $2)
		ORDER BY last_name, first_name
	`

	rows, err := r.Query(ctx, sql, model.RoleTeacher, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search teachers: %w", err)
	}

	return collectUsers(rows)
}

// GetByConfirmation получает пользователей по признаку подтверждения (кроме студентов)
func (r *UserRepository) GetByConfirmation(ctx context.Context, confirmed bool) ([]*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE has_confirmed = $1 AND role != $2
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, confirmed, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("get users by confirmation: %w", err)
	}

	return collectUsers(rows)
}

// Update обновляет профиль пользователя
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, phone = $4, role = $5,
		    has_confirmed = $6, reminder_minutes = $7
		WHERE id = $8
	`

	affected, err := r.ExecAffected(
		ctx, query,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Role,
		user.HasConfirmed,
		user.ReminderMinutes,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// Delete удаляет пользователя
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
