package service

import (
	"context"
	"fmt"
	"time"

	"consultation-bot/internal/model"
	"go.uber.org/zap"
)

// reminderScanStep - период сканирования дедлайнов. Окно напоминания имеет
// ту же ширину, чтобы каждая задача попадала в него ровно один раз.
const reminderScanStep = 5 * time.Minute

// TodoService управляет задачами, которые деканат назначает преподавателям
type TodoService struct {
	todos     TodoStore
	users     UserStore
	messenger Messenger
	logger    *zap.Logger
	now       func() time.Time
}

func NewTodoService(todos TodoStore, users UserStore, messenger Messenger, logger *zap.Logger) *TodoService {
	return &TodoService{
		todos:     todos,
		users:     users,
		messenger: messenger,
		logger:    logger,
		now:       time.Now,
	}
}

// Create создаёт задачу для преподавателя и сразу уведомляет его
func (s *TodoService) Create(ctx context.Context, title, description string, deadline *time.Time, teacherID, createdByID int64) (*model.TodoTask, error) {
	task := &model.TodoTask{
		Title:       title,
		Description: description,
		Deadline:    deadline,
		TeacherID:   teacherID,
		CreatedByID: createdByID,
	}
	if err := s.todos.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create todo task: %w", err)
	}

	s.logger.Info("Todo task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("teacher_id", teacherID))

	teacher, err := s.users.GetByID(ctx, teacherID)
	if err == nil && teacher != nil {
		text := fmt.Sprintf("📋 Новая задача от деканата:\n\n%s", task.Title)
		if task.Description != "" {
			text += "\n" + task.Description
		}
		if task.Deadline != nil {
			text += fmt.Sprintf("\n\n⏰ Срок: %s", task.Deadline.Format("02.01.2006 15:04"))
		}
		if err := s.messenger.SendText(ctx, teacher.TelegramID, text); err != nil {
			s.logger.Error("Failed to notify teacher about new task",
				zap.Int64("task_id", task.ID),
				zap.Error(err))
		}
	}

	return task, nil
}

func (s *TodoService) GetByID(ctx context.Context, id int64) (*model.TodoTask, error) {
	return s.todos.GetByID(ctx, id)
}

// GetAll возвращает все задачи (для деканата)
func (s *TodoService) GetAll(ctx context.Context) ([]*model.TodoTask, error) {
	return s.todos.GetAll(ctx)
}

// GetByTeacher возвращает задачи преподавателя
func (s *TodoService) GetByTeacher(ctx context.Context, teacherID int64) ([]*model.TodoTask, error) {
	return s.todos.GetByTeacher(ctx, teacherID)
}

// FilterPending оставляет только незавершённые задачи
func FilterPending(tasks []*model.TodoTask) []*model.TodoTask {
	out := make([]*model.TodoTask, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsCompleted {
			out = append(out, t)
		}
	}
	return out
}

// FilterCompleted оставляет только завершённые задачи
func FilterCompleted(tasks []*model.TodoTask) []*model.TodoTask {
	out := make([]*model.TodoTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsCompleted {
			out = append(out, t)
		}
	}
	return out
}

// Complete отмечает задачу выполненной. Повторный вызов ничего не меняет.
func (s *TodoService) Complete(ctx context.Context, task *model.TodoTask) error {
	if task.IsCompleted {
		return nil
	}
	now := s.now()
	task.IsCompleted = true
	task.CompletedAt = &now
	if err := s.todos.Update(ctx, task); err != nil {
		return fmt.Errorf("complete todo task: %w", err)
	}

	s.logger.Info("Todo task completed", zap.Int64("task_id", task.ID))
	return nil
}

// Reopen возвращает выполненную задачу в работу
func (s *TodoService) Reopen(ctx context.Context, task *model.TodoTask) error {
	if !task.IsCompleted {
		return nil
	}
	task.IsCompleted = false
	task.CompletedAt = nil
	if err := s.todos.Update(ctx, task); err != nil {
		return fmt.Errorf("reopen todo task: %w", err)
	}

	s.logger.Info("Todo task reopened", zap.Int64("task_id", task.ID))
	return nil
}

// UpdateTitle меняет название задачи
func (s *TodoService) UpdateTitle(ctx context.Context, task *model.TodoTask, title string) error {
	task.Title = title
	if err := s.todos.Update(ctx, task); err != nil {
		return fmt.Errorf("update todo title: %w", err)
	}
	return nil
}

// UpdateDescription меняет описание задачи
func (s *TodoService) UpdateDescription(ctx context.Context, task *model.TodoTask, description string) error {
	task.Description = description
	if err := s.todos.Update(ctx, task); err != nil {
		return fmt.Errorf("update todo description: %w", err)
	}
	return nil
}

// UpdateDeadline меняет срок задачи и сбрасывает флаг отправленного
// напоминания, чтобы напоминание пришло и для нового срока
func (s *TodoService) UpdateDeadline(ctx context.Context, task *model.TodoTask, deadline *time.Time) error {
	task.Deadline = deadline
	task.ReminderSent = false
	if err := s.todos.Update(ctx, task); err != nil {
		return fmt.Errorf("update todo deadline: %w", err)
	}
	return nil
}

func (s *TodoService) Delete(ctx context.Context, id int64) error {
	if err := s.todos.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete todo task: %w", err)
	}
	return nil
}

// SendDueReminders находит задачи, до дедлайна которых осталось не больше
// времени напоминания преподавателя, и шлёт напоминание один раз.
// Вызывается планировщиком раз в reminderScanStep.
func (s *TodoService) SendDueReminders(ctx context.Context) error {
	now := s.now()

	tasks, err := s.todos.GetPendingWithDeadlineAfter(ctx, now)
	if err != nil {
		return fmt.Errorf("load pending tasks: %w", err)
	}

	for _, task := range tasks {
		if task.Deadline == nil || task.Teacher == nil || task.Teacher.ReminderMinutes == nil {
			continue
		}

		remindAt := task.Deadline.Add(-time.Duration(*task.Teacher.ReminderMinutes) * time.Minute)
		if now.Before(remindAt) {
			continue
		}

		text := fmt.Sprintf(
			"⏰ Напоминание: срок задачи «%s» — %s.",
			task.Title, task.Deadline.Format("02.01.2006 15:04"),
		)
		if err := s.messenger.SendText(ctx, task.Teacher.TelegramID, text); err != nil {
			s.logger.Error("Failed to send task reminder",
				zap.Int64("task_id", task.ID),
				zap.Error(err))
			continue
		}

		task.ReminderSent = true
		if err := s.todos.Update(ctx, task); err != nil {
			s.logger.Error("Failed to mark reminder as sent",
				zap.Int64("task_id", task.ID),
				zap.Error(err))
		}
	}

	return nil
}
