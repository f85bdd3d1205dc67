package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// StartHandler handles the /start command
type StartHandler struct {
	logger *logrus.Logger
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(logger *logrus.Logger) *StartHandler {
	return &StartHandler{logger: logger}
}

// Handle processes the /start command.
func (h *StartHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := `Привет! Я слежу за сроками годности продуктов вашей "семьи".

Добавьте продукт командой /new, напишите выданный код на упаковке — и я напомню, когда срок подойдет к концу.

Список команд: /help`

	sendText(bot, message.Chat.ID, text)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Start command")

	return nil
}
