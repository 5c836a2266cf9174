package app

import (
	"context"
	"time"

	"consultation-bot/internal/service"
	"go.uber.org/zap"
)

const (
	sweepInterval    = 24 * time.Hour
	reminderInterval = 5 * time.Minute
)

// Scheduler управляет фоновыми задачами: ежедневное закрытие прошедших
// консультаций, ежедневная очистка старых записей и периодическая
// рассылка напоминаний о задачах
type Scheduler struct {
	consultations *service.ConsultationService
	todos         *service.TodoService
	logger        *zap.Logger
	stopChan      chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(consultations *service.ConsultationService, todos *service.TodoService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		consultations: consultations,
		todos:         todos,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runTask(ctx, "close expired consultations", sweepInterval, s.closeExpired)
	go s.runTask(ctx, "delete old consultations", sweepInterval, s.deleteOld)
	go s.runTask(ctx, "send task reminders", reminderInterval, s.sendReminders)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runTask выполняет задачу сразу и затем по таймеру
func (s *Scheduler) runTask(ctx context.Context, name string, interval time.Duration, task func(context.Context)) {
	task(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			task(ctx)
		case <-s.stopChan:
			s.logger.Info("Background task stopped", zap.String("task", name))
			return
		case <-ctx.Done():
			s.logger.Info("Background task cancelled", zap.String("task", name))
			return
		}
	}
}

// closeExpired закрывает запись на консультации, чьё время уже прошло
func (s *Scheduler) closeExpired(ctx context.Context) {
	closed, err := s.consultations.CloseExpired(ctx)
	if err != nil {
		s.logger.Error("Failed to close expired consultations", zap.Error(err))
		return
	}
	if closed > 0 {
		s.logger.Info("Closed expired consultations", zap.Int("count", closed))
	}
}

// deleteOld удаляет давно прошедшие консультации вместе с записями
func (s *Scheduler) deleteOld(ctx context.Context) {
	regs, consultations, err := s.consultations.DeleteOld(ctx)
	if err != nil {
		s.logger.Error("Failed to delete old consultations", zap.Error(err))
		return
	}
	if consultations > 0 {
		s.logger.Info("Deleted old consultations",
			zap.Int64("consultations", consultations),
			zap.Int64("registrations", regs))
	}
}

// sendReminders рассылает напоминания о приближающихся дедлайнах задач
func (s *Scheduler) sendReminders(ctx context.Context) {
	if err := s.todos.SendDueReminders(ctx); err != nil {
		s.logger.Error("Failed to send task reminders", zap.Error(err))
	}
}
