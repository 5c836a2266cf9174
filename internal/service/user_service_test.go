package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"consultation-bot/internal/model"
)

func newUserService() (*memDB, *UserService) {
	db := newMemDB()
	return db, NewUserService(&memUsers{db}, zap.NewNop())
}

func Test_UserRegister_confirms_students_immediately(t *testing.T) {
	// Arrange
	_, users := newUserService()
	ctx := context.Background()

	// Act
	student, err := users.Register(ctx, 101, "anna", "Анна", "Иванова", model.RoleStudent)
	require.NoError(t, err)
	teacher, err := users.Register(ctx, 100, "ivan", "Иван", "Петров", model.RoleTeacher)
	require.NoError(t, err)
	deanery, err := users.Register(ctx, 200, "olga", "Ольга", "Смирнова", model.RoleDeanery)
	require.NoError(t, err)

	// Assert: студент активен сразу, остальные ждут модерации
	assert.True(t, student.HasConfirmed)
	assert.False(t, teacher.HasConfirmed)
	assert.False(t, deanery.HasConfirmed)
}

func Test_UserRegister_is_idempotent_per_telegram_id(t *testing.T) {
	// Arrange
	_, users := newUserService()
	ctx := context.Background()

	first, err := users.Register(ctx, 101, "anna", "Анна", "Иванова", model.RoleStudent)
	require.NoError(t, err)

	// Act: повторная регистрация с другой ролью
	second, err := users.Register(ctx, 101, "anna", "Анна", "Иванова", model.RoleTeacher)
	require.NoError(t, err)

	// Assert: возвращается существующая запись без изменений
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, model.RoleStudent, second.Role)
}

func Test_SearchTeachers_empty_query_returns_all_confirmed(t *testing.T) {
	// Arrange
	db, users := newUserService()
	db.addUser(&model.User{TelegramID: 100, FirstName: "Иван", LastName: "Петров", Role: model.RoleTeacher, HasConfirmed: true})
	db.addUser(&model.User{TelegramID: 102, FirstName: "Пётр", LastName: "Сидоров", Role: model.RoleTeacher, HasConfirmed: true})
	db.addUser(&model.User{TelegramID: 103, FirstName: "Новый", LastName: "Преподаватель", Role: model.RoleTeacher, HasConfirmed: false})
	ctx := context.Background()

	// Act
	all, err := users.SearchTeachers(ctx, "   ")
	require.NoError(t, err)
	found, err := users.SearchTeachers(ctx, "Сидоров")
	require.NoError(t, err)

	// Assert: неподтверждённые преподаватели не видны студентам
	assert.Len(t, all, 2)
	require.Len(t, found, 1)
	assert.Equal(t, "Пётр", found[0].FirstName)
}

func Test_UpdateName_trims_whitespace(t *testing.T) {
	// Arrange
	db, users := newUserService()
	user := db.addUser(&model.User{TelegramID: 101, FirstName: "Анна", Role: model.RoleStudent, HasConfirmed: true})

	// Act
	require.NoError(t, users.UpdateName(context.Background(), user, "  Мария ", " Кузнецова  "))

	// Assert
	assert.Equal(t, "Мария", user.FirstName)
	assert.Equal(t, "Кузнецова", user.LastName)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Мария Кузнецова", stored.FullName())
}

func Test_UpdateReminderMinutes_allows_disabling(t *testing.T) {
	// Arrange
	db, users := newUserService()
	user := db.addUser(&model.User{TelegramID: 100, FirstName: "Иван", Role: model.RoleTeacher, HasConfirmed: true})
	ctx := context.Background()

	// Act / Assert
	require.NoError(t, users.UpdateReminderMinutes(ctx, user, intPtr(30)))
	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReminderMinutes)
	assert.Equal(t, 30, *stored.ReminderMinutes)

	require.NoError(t, users.UpdateReminderMinutes(ctx, user, nil))
	stored, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ReminderMinutes)
}

// racingUsers отдаёт пустой результат на первую проверку telegram id,
// имитируя второй параллельный /start до фиксации первого
type racingUsers struct {
	*memUsers
	checked bool
}

func (r *racingUsers) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	if !r.checked {
		r.checked = true
		return nil, nil
	}
	return r.memUsers.GetByTelegramID(ctx, telegramID)
}

func Test_UserRegister_returns_winner_of_concurrent_registration(t *testing.T) {
	// Arrange: запись уже создана, но проверка перед вставкой её не видит
	db := newMemDB()
	users := NewUserService(&racingUsers{memUsers: &memUsers{db}}, zap.NewNop())
	existing := db.addUser(&model.User{TelegramID: 101, FirstName: "Анна", Role: model.RoleStudent, HasConfirmed: true})

	// Act: вставка упирается в уникальность telegram_id
	got, err := users.Register(context.Background(), 101, "anna", "Анна", "Иванова", model.RoleStudent)

	// Assert: возвращается запись победившей регистрации
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, existing.ID, got.ID)
}
