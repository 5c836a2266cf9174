package repository

import (
	"context"
	"fmt"

	"consultation-bot/internal/model"
	"consultation-bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminUserRepository struct {
	*base.Repository
}

func NewAdminUserRepository(pool *pgxpool.Pool) *AdminUserRepository {
	return &AdminUserRepository{Repository: base.NewRepository(pool)}
}

// GetByLogin получает администратора по логину
func (r *AdminUserRepository) GetByLogin(ctx context.Context, login string) (*model.AdminUser, error) {
	query := `
		SELECT id, login, password_hash, role, created_at
		FROM admin_users
		WHERE login = $1
	`

	var admin model.AdminUser
	err := r.QueryRow(ctx, query, login).Scan(
		&admin.ID,
		&admin.Login,
		&admin.PasswordHash,
		&admin.Role,
		&admin.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin by login: %w", err)
	}

	return &admin, nil
}
