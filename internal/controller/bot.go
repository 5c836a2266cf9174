package controller

import (
	"context"

	"consultation-bot/internal/controller/handlers"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// BotController связывает Telegram-бота с обработчиками сообщений.
// Бот работает только с reply-клавиатурами, поэтому все сообщения
// проходят через единый текстовый роутер.
type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(botInstance *bot.Bot, h *handlers.Handlers, logger *zap.Logger) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: h,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует обработчики и меню команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleUpdate)

	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot handlers registered")
	return nil
}

// Start запускает получение обновлений, блокируется до отмены контекста
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}

// Messenger реализует service.Messenger поверх Telegram-бота
type Messenger struct {
	bot *bot.Bot
}

func NewMessenger(botInstance *bot.Bot) *Messenger {
	return &Messenger{bot: botInstance}
}

// SendText отправляет текстовое сообщение пользователю
func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}
