package handlers

import (
	"context"
	"crypto/subtle"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/service"
)

// checkSecret validates the per-process maintenance secret passed as
// the command argument.
func checkSecret(svc *service.Service, args []string) bool {
	if len(args) != 1 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(args[0]), []byte(svc.MaintenanceSecret())) == 1
}

// ---------------------------------------------------------------------------
// SweepHandler – /sweep <secret>
// ---------------------------------------------------------------------------

// SweepHandler triggers the expiry notification sweep manually. The
// daily scheduler runs the same operation; both are safe to re-run.
type SweepHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(svc *service.Service, logger *logrus.Logger) *SweepHandler {
	return &SweepHandler{svc: svc, logger: logger}
}

// Handle processes the /sweep command.
func (h *SweepHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if !checkSecret(h.svc, args) {
		h.logger.WithFields(logrus.Fields{
			"user_id": message.From.ID,
		}).Warn("Sweep command with bad secret")
		return nil
	}

	notify := func(userID int64, text string) error {
		msg := tgbotapi.NewMessage(userID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		_, err := bot.Send(msg)
		return err
	}

	if err := h.svc.ExpirySweep(context.Background(), notify); err != nil {
		return fmt.Errorf("expiry sweep: %w", err)
	}

	sendText(bot, message.Chat.ID, "Рассылка напоминаний выполнена")
	return nil
}

// ---------------------------------------------------------------------------
// PurgeHandler – /purge <secret>
// ---------------------------------------------------------------------------

// PurgeHandler triggers the retention purge manually.
type PurgeHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewPurgeHandler creates a new PurgeHandler.
func NewPurgeHandler(svc *service.Service, logger *logrus.Logger) *PurgeHandler {
	return &PurgeHandler{svc: svc, logger: logger}
}

// Handle processes the /purge command.
func (h *PurgeHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if !checkSecret(h.svc, args) {
		h.logger.WithFields(logrus.Fields{
			"user_id": message.From.ID,
		}).Warn("Purge command with bad secret")
		return nil
	}

	if err := h.svc.RetentionPurge(context.Background()); err != nil {
		return fmt.Errorf("retention purge: %w", err)
	}

	sendText(bot, message.Chat.ID, "Очистка старых записей выполнена")
	return nil
}
