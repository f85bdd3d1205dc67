package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/service"
)

// ---------------------------------------------------------------------------
// NewHandler – /new
// ---------------------------------------------------------------------------

// NewHandler handles the /new command to start the product registration
// flow.
type NewHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewNewHandler creates a new NewHandler.
func NewNewHandler(svc *service.Service, logger *logrus.Logger) *NewHandler {
	return &NewHandler{svc: svc, logger: logger}
}

// Handle processes the /new command.
func (h *NewHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	reply, err := h.svc.StartNewProduct(context.Background(), message.From.ID)
	if err != nil {
		return fmt.Errorf("start new product: %w", err)
	}

	sendReply(bot, message.Chat.ID, reply)
	return nil
}

// ---------------------------------------------------------------------------
// ListHandler – /list
// ---------------------------------------------------------------------------

// ListHandler handles the /list command to display the family's active
// products, expired ones flagged.
type ListHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewListHandler creates a new ListHandler.
func NewListHandler(svc *service.Service, logger *logrus.Logger) *ListHandler {
	return &ListHandler{svc: svc, logger: logger}
}

// Handle processes the /list command.
func (h *ListHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	reply, err := h.svc.ListProducts(context.Background(), message.From.ID, false)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	sendReply(bot, message.Chat.ID, reply)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Listed products")

	return nil
}

// ---------------------------------------------------------------------------
// ListExpiredHandler – /listexpired
// ---------------------------------------------------------------------------

// ListExpiredHandler handles the /listexpired command.
type ListExpiredHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewListExpiredHandler creates a new ListExpiredHandler.
func NewListExpiredHandler(svc *service.Service, logger *logrus.Logger) *ListExpiredHandler {
	return &ListExpiredHandler{svc: svc, logger: logger}
}

// Handle processes the /listexpired command.
func (h *ListExpiredHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	reply, err := h.svc.ListProducts(context.Background(), message.From.ID, true)
	if err != nil {
		return fmt.Errorf("list expired products: %w", err)
	}

	sendReply(bot, message.Chat.ID, reply)
	return nil
}

// ---------------------------------------------------------------------------
// InventoryHandler – /inventory
// ---------------------------------------------------------------------------

// InventoryHandler handles the /inventory command starting a one-shot
// audit: the next message lists the codes physically found and the bot
// replies with the products missing from that list.
type InventoryHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(svc *service.Service, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, logger: logger}
}

// Handle processes the /inventory command.
func (h *InventoryHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	reply, err := h.svc.StartInventory(context.Background(), message.From.ID)
	if err != nil {
		return fmt.Errorf("start inventory: %w", err)
	}

	sendReply(bot, message.Chat.ID, reply)
	return nil
}
