package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/service"
)

// ---------------------------------------------------------------------------
// InviteHandler – /invite
// ---------------------------------------------------------------------------

// InviteHandler handles the /invite command issuing a one-hour invite
// code for the caller's family.
type InviteHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(svc *service.Service, logger *logrus.Logger) *InviteHandler {
	return &InviteHandler{svc: svc, logger: logger}
}

// Handle processes the /invite command.
func (h *InviteHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	reply, err := h.svc.CreateInvite(context.Background(), message.From.ID)
	if err != nil {
		return fmt.Errorf("create invite: %w", err)
	}

	sendReply(bot, message.Chat.ID, reply)
	return nil
}

// ---------------------------------------------------------------------------
// AcceptInviteHandler – /acceptinvite
// ---------------------------------------------------------------------------

// AcceptInviteHandler handles the /acceptinvite command.
type AcceptInviteHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewAcceptInviteHandler creates a new AcceptInviteHandler.
func NewAcceptInviteHandler(svc *service.Service, logger *logrus.Logger) *AcceptInviteHandler {
	return &AcceptInviteHandler{svc: svc, logger: logger}
}

// Handle processes the /acceptinvite command.
func (h *AcceptInviteHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	reply, err := h.svc.StartAcceptInvite(context.Background(), message.From.ID)
	if err != nil {
		return fmt.Errorf("start accept invite: %w", err)
	}

	sendReply(bot, message.Chat.ID, reply)
	return nil
}

// ---------------------------------------------------------------------------
// CancelHandler – /cancel
// ---------------------------------------------------------------------------

// CancelHandler handles the /cancel command clearing whatever action is
// pending.
type CancelHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewCancelHandler creates a new CancelHandler.
func NewCancelHandler(svc *service.Service, logger *logrus.Logger) *CancelHandler {
	return &CancelHandler{svc: svc, logger: logger}
}

// Handle processes the /cancel command.
func (h *CancelHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	reply, err := h.svc.Cancel(context.Background(), message.From.ID)
	if err != nil {
		return fmt.Errorf("cancel: %w", err)
	}

	sendReply(bot, message.Chat.ID, reply)
	return nil
}
