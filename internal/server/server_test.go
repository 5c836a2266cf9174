package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"consultation-bot/internal/model"
	"consultation-bot/internal/service"
)

// fakeAdmins отдаёт единственную учётную запись администратора
type fakeAdmins struct {
	admin *model.AdminUser
}

func (f *fakeAdmins) GetByLogin(_ context.Context, login string) (*model.AdminUser, error) {
	if f.admin != nil && f.admin.Login == login {
		cp := *f.admin
		return &cp, nil
	}
	return nil, nil
}

// fakeUsers - in-memory UserStore для тестов API
type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[int64]*model.User)}
}

func (f *fakeUsers) add(u *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	return u
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.add(user)
	return nil
}

func (f *fakeUsers) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetTeachers(_ context.Context) ([]*model.User, error) {
	return nil, nil
}

func (f *fakeUsers) SearchTeachers(_ context.Context, _ string) ([]*model.User, error) {
	return nil, nil
}

func (f *fakeUsers) GetByConfirmation(_ context.Context, confirmed bool) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.User
	for _, u := range f.users {
		if u.HasConfirmed == confirmed {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

// noopMessenger глотает уведомления об активации
type noopMessenger struct{}

func (noopMessenger) SendText(_ context.Context, _ int64, _ string) error { return nil }

type apiFixture struct {
	users  *fakeUsers
	admin  *service.AdminService
	server *httptest.Server
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := newFakeUsers()
	logger := zap.NewNop()
	notify := service.NewNotificationService(noopMessenger{}, nil, nil, users, logger)
	admin := service.NewAdminService(
		&fakeAdmins{admin: &model.AdminUser{ID: 1, Login: "root", PasswordHash: string(hash), Role: "admin"}},
		users, notify, "test-secret", logger,
	)

	srv := New(":0", admin, logger)
	ts := httptest.NewServer(srv.httpSrv.Handler)
	t.Cleanup(ts.Close)

	return &apiFixture{users: users, admin: admin, server: ts}
}

func (f *apiFixture) login(t *testing.T) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/admin/login", "",
		`{"login":"root","password":"correct horse"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func (f *apiFixture) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func Test_API_login_returns_valid_token(t *testing.T) {
	f := newAPIFixture(t)

	token := f.login(t)

	claims, err := f.admin.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Login)
}

func Test_API_login_rejects_bad_credentials_and_bad_json(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/api/admin/login", "", `{"login":"root","password":"wrong password"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/admin/login", "", `{"login":`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Слишком короткий пароль отсекает валидация до обращения к сервису
	resp = f.do(t, http.MethodPost, "/api/admin/login", "", `{"login":"root","password":"abc"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_API_requires_bearer_token(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/api/admin/users", "", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/admin/users", "garbage-token", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func Test_API_lists_users_with_confirmation_filter(t *testing.T) {
	// Arrange
	f := newAPIFixture(t)
	f.users.add(&model.User{TelegramID: 100, Role: model.RoleTeacher, HasConfirmed: false})
	f.users.add(&model.User{TelegramID: 101, Role: model.RoleStudent, HasConfirmed: true})
	token := f.login(t)

	// Act
	resp := f.do(t, http.MethodGet, "/api/admin/users?confirmed=false", token, "")
	defer resp.Body.Close()

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Users []*model.User `json:"users"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Users, 1)
	assert.Equal(t, int64(100), body.Users[0].TelegramID)

	resp = f.do(t, http.MethodGet, "/api/admin/users?confirmed=maybe", token, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_API_activates_user(t *testing.T) {
	// Arrange
	f := newAPIFixture(t)
	teacher := f.users.add(&model.User{TelegramID: 100, Role: model.RoleTeacher})
	token := f.login(t)

	// Act
	resp := f.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/activate", teacher.ID), token, "")
	defer resp.Body.Close()

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var activated model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&activated))
	assert.True(t, activated.HasConfirmed)

	// Неизвестный пользователь и некорректный id
	resp = f.do(t, http.MethodPost, "/api/admin/users/9999/activate", token, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/admin/users/abc/activate", token, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_API_deactivate_refuses_students(t *testing.T) {
	// Arrange
	f := newAPIFixture(t)
	student := f.users.add(&model.User{TelegramID: 101, Role: model.RoleStudent, HasConfirmed: true})
	token := f.login(t)

	// Act
	resp := f.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/deactivate", student.ID), token, "")
	defer resp.Body.Close()

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, strings.Contains(body["error"], "students"))
}

func Test_API_updates_and_deletes_user(t *testing.T) {
	// Arrange
	f := newAPIFixture(t)
	teacher := f.users.add(&model.User{TelegramID: 100, FirstName: "Иван", Role: model.RoleTeacher})
	token := f.login(t)

	// Act: частичное изменение профиля
	resp := f.do(t, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d", teacher.ID), token,
		`{"last_name":"Петров"}`)
	defer resp.Body.Close()

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated model.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, "Иван", updated.FirstName)
	assert.Equal(t, "Петров", updated.LastName)

	// Удаление
	resp = f.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", teacher.ID), token, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", teacher.ID), token, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
