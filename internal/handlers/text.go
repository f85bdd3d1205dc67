package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/service"
)

// TextHandler receives every non-command message and feeds it to the
// conversation state machine.
type TextHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewTextHandler creates a new TextHandler.
func NewTextHandler(svc *service.Service, logger *logrus.Logger) *TextHandler {
	return &TextHandler{svc: svc, logger: logger}
}

// Handle processes a free-text message.
func (h *TextHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message) error {
	reply, err := h.svc.HandleText(context.Background(), message.From.ID, message.Text)
	if err != nil {
		return fmt.Errorf("handle text: %w", err)
	}

	sendReply(bot, message.Chat.ID, reply)
	return nil
}
