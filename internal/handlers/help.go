package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

// Handle processes the /help command.
func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := `*Команды*

/new — добавить продукт
/list — активные продукты
/listexpired — просроченные продукты
/inventory — инвентаризация: пришлите коды найденных продуктов, я покажу недостающие
/invite — пригласить в "семью"
/acceptinvite — принять приглашение
/cancel — отменить текущее действие

Отправьте код продукта, чтобы посмотреть его и удалить.`

	sendText(bot, message.Chat.ID, text)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Help command")

	return nil
}
