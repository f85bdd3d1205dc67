package handlers

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/service"
)

// WithdrawHandler handles withdraw_<code> callbacks from the inline
// button attached to product detail replies.
type WithdrawHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewWithdrawHandler creates a new WithdrawHandler.
func NewWithdrawHandler(svc *service.Service, logger *logrus.Logger) *WithdrawHandler {
	return &WithdrawHandler{svc: svc, logger: logger}
}

// Handle processes a withdraw callback. data is the product code.
func (h *WithdrawHandler) Handle(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery, data string) error {
	code, err := strconv.Atoi(data)
	if err != nil {
		sendText(bot, query.Message.Chat.ID, "Продукт с указанным кодом не найден")
		return nil
	}

	reply, err := h.svc.WithdrawProduct(context.Background(), query.From.ID, code)
	if err != nil {
		return fmt.Errorf("withdraw product: %w", err)
	}

	sendReply(bot, query.Message.Chat.ID, reply)

	h.logger.WithFields(logrus.Fields{
		"user_id": query.From.ID,
		"code":    code,
	}).Info("Withdraw callback")

	return nil
}
