package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"consultation-bot/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Server - HTTP API административной панели.
// Все маршруты кроме логина защищены bearer-токеном.
type Server struct {
	admin    *service.AdminService
	validate *validator.Validate
	logger   *zap.Logger
	httpSrv  *http.Server
}

func New(addr string, admin *service.AdminService, logger *zap.Logger) *Server {
	s := &Server{
		admin:    admin,
		validate: validator.New(),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/login", s.handleLogin)
	mux.Handle("GET /api/admin/users", s.withAuth(s.handleListUsers))
	mux.Handle("POST /api/admin/users/{id}/activate", s.withAuth(s.handleActivate))
	mux.Handle("POST /api/admin/users/{id}/deactivate", s.withAuth(s.handleDeactivate))
	mux.Handle("PATCH /api/admin/users/{id}", s.withAuth(s.handleUpdateUser))
	mux.Handle("DELETE /api/admin/users/{id}", s.withAuth(s.handleDeleteUser))

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe блокируется до остановки сервера
func (s *Server) ListenAndServe() error {
	s.logger.Info("Starting admin API", zap.String("addr", s.httpSrv.Addr))
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown корректно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// --- Middleware ---

// withAuth проверяет bearer-токен перед вызовом обработчика
func (s *Server) withAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		if _, err := s.admin.ValidateToken(token); err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r)
	})
}

// --- Обработчики ---

type loginRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, "login and password are required")
		return
	}

	token, err := s.admin.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			s.writeError(w, http.StatusUnauthorized, "invalid login or password")
			return
		}
		s.internalError(w, "login failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	var confirmed *bool
	if v := r.URL.Query().Get("confirmed"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "confirmed must be true or false")
			return
		}
		confirmed = &parsed
	}

	users, err := s.admin.ListUsers(r.Context(), confirmed)
	if err != nil {
		s.internalError(w, "list users failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	user, err := s.admin.Activate(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			s.writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.internalError(w, "activate failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	user, err := s.admin.Deactivate(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			s.writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrCannotDeactivateStudent):
			s.writeError(w, http.StatusBadRequest, "students cannot be deactivated")
		default:
			s.internalError(w, "deactivate failed", err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, user)
}

type updateUserRequest struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=32"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, "field too long")
		return
	}

	user, err := s.admin.UpdateUser(r.Context(), id, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			s.writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.internalError(w, "update user failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.admin.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			s.writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.internalError(w, "delete user failed", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Вспомогательные функции ---

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// internalError логирует подробности, клиент видит общий текст
func (s *Server) internalError(w http.ResponseWriter, message string, err error) {
	s.logger.Error(message, zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal error, try again later")
}
