package handlers

import (
	"context"
	"strings"

	"consultation-bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleUpdate - единая точка входа для всех текстовых сообщений.
// Порядок обработки фиксирован: отмена, ввод ожидаемого текста,
// нумерованный выбор, команда меню, нераспознанное сообщение.
func (h *Handlers) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	user, err := h.userService.GetByTelegramID(ctx, update.Message.From.ID)
	if err != nil {
		h.logger.Error("Failed to look up user",
			zap.Int64("telegram_id", update.Message.From.ID),
			zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	if user == nil {
		h.handleUnregistered(ctx, b, update, text)
		return
	}

	if !user.HasConfirmed {
		h.sendMessage(ctx, b, chatID,
			"⏳ Ваша учётная запись ещё не подтверждена администратором. Пожалуйста, подождите.")
		return
	}

	switch user.Role {
	case model.RoleStudent:
		h.handleStudent(ctx, b, chatID, user, text)
	case model.RoleTeacher:
		h.handleTeacher(ctx, b, chatID, user, text)
	case model.RoleDeanery:
		h.handleDeanery(ctx, b, chatID, user, text)
	default:
		h.logger.Warn("User with unknown role",
			zap.Int64("user_id", user.ID),
			zap.String("role", string(user.Role)))
	}
}

// handleUnregistered ведёт диалог выбора роли для нового пользователя
func (h *Handlers) handleUnregistered(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	chatID := update.Message.Chat.ID
	from := update.Message.From

	var role model.Role
	switch text {
	case BtnRoleStudent:
		role = model.RoleStudent
	case BtnRoleTeacher:
		role = model.RoleTeacher
	case BtnRoleDeanery:
		role = model.RoleDeanery
	default:
		h.sendWithKeyboard(ctx, b, chatID,
			"👋 Добро пожаловать в бот записи на консультации!\n\nВыберите вашу роль:",
			RoleKeyboard())
		return
	}

	user, err := h.userService.Register(ctx, from.ID, from.Username, from.FirstName, from.LastName, role)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, chatID)
		return
	}

	switch user.Role {
	case model.RoleStudent:
		h.sendWithKeyboard(ctx, b, chatID,
			"✅ Вы успешно зарегистрированы как студент!",
			StudentMenuKeyboard())
	case model.RoleTeacher:
		h.sendMessage(ctx, b, chatID,
			"✅ Вы зарегистрированы как преподаватель. Ожидайте подтверждения администратором.")
	case model.RoleDeanery:
		h.sendMessage(ctx, b, chatID,
			"✅ Вы зарегистрированы как сотрудник деканата. Ожидайте подтверждения администратором.")
	}
}
