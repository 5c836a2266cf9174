package handlers

import (
	"context"

	"consultation-bot/internal/controller/state"
	"consultation-bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки сообщений бота
type Handlers struct {
	userService         *service.UserService
	consultationService *service.ConsultationService
	registrationService *service.RegistrationService
	notificationService *service.NotificationService
	todoService         *service.TodoService
	studentStates       *state.StudentManager
	teacherStates       *state.TeacherManager
	deaneryStates       *state.DeaneryManager
	logger              *zap.Logger
}

// NewHandlers создаёт обработчик сообщений
func NewHandlers(
	userService *service.UserService,
	consultationService *service.ConsultationService,
	registrationService *service.RegistrationService,
	notificationService *service.NotificationService,
	todoService *service.TodoService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:         userService,
		consultationService: consultationService,
		registrationService: registrationService,
		notificationService: notificationService,
		todoService:         todoService,
		studentStates:       state.NewStudentManager(),
		teacherStates:       state.NewTeacherManager(),
		deaneryStates:       state.NewDeaneryManager(),
		logger:              logger,
	}
}

// sendMessage отправляет текстовое сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// sendWithKeyboard отправляет сообщение с reply-клавиатурой
func (h *Handlers) sendWithKeyboard(ctx context.Context, b *bot.Bot, chatID int64, text string, keyboard *models.ReplyKeyboardMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		h.logger.Error("Failed to send message with keyboard",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// sendError отправляет стандартное сообщение о внутренней ошибке
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64) {
	h.sendMessage(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
}
