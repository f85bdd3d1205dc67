package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/prodbot/internal/metrics"
)

// Router handles message routing and command parsing
type Router struct {
	logger    *logrus.Logger
	handlers  map[string]CommandHandler
	text      TextHandler
	callbacks map[string]CallbackHandler
}

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error
}

// TextHandler defines the interface for the free-text handler that
// receives every non-command message.
type TextHandler interface {
	Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message) error
}

// CallbackHandler defines the interface for inline-keyboard callback
// handlers. data is the callback payload with the registered prefix
// stripped.
type CallbackHandler interface {
	Handle(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery, data string) error
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:    logger,
		handlers:  make(map[string]CommandHandler),
		callbacks: make(map[string]CallbackHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// RegisterText registers the free-text handler
func (r *Router) RegisterText(handler TextHandler) {
	r.text = handler
}

// RegisterCallback registers a callback handler for a data prefix
func (r *Router) RegisterCallback(prefix string, handler CallbackHandler) {
	r.callbacks[prefix] = handler
	r.logger.Debugf("Registered callback prefix: %s", prefix)
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	// Log the incoming message
	r.logger.WithFields(logrus.Fields{
		"chat_id":    message.Chat.ID,
		"user_id":    message.From.ID,
		"username":   message.From.UserName,
		"message_id": message.MessageID,
	}).Info("Received message")

	// Only process text messages
	if message.Text == "" {
		return
	}

	if !message.IsCommand() {
		r.handleText(bot, message)
		return
	}

	metrics.UpdatesHandled.WithLabelValues("command").Inc()

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	// Find and execute handler
	if handler, exists := r.handlers[command]; exists {
		if err := handler.Handle(bot, message, args); err != nil {
			r.logger.WithFields(logrus.Fields{
				"command": command,
				"chat_id": message.Chat.ID,
				"user_id": message.From.ID,
				"error":   err,
			}).Error("Command handler failed")

			// Send error message to user
			errorMsg := tgbotapi.NewMessage(message.Chat.ID, "❌ Произошла ошибка. Попробуйте еще раз")
			bot.Send(errorMsg)
		}
	} else {
		r.logger.WithFields(logrus.Fields{
			"command": command,
			"chat_id": message.Chat.ID,
			"user_id": message.From.ID,
		}).Warn("Unknown command")

		unknownMsg := tgbotapi.NewMessage(message.Chat.ID, "❓ Неизвестная команда. Список команд: /help")
		bot.Send(unknownMsg)
	}
}

func (r *Router) handleText(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	if r.text == nil {
		return
	}

	metrics.UpdatesHandled.WithLabelValues("text").Inc()

	if err := r.text.Handle(bot, message); err != nil {
		r.logger.WithFields(logrus.Fields{
			"chat_id": message.Chat.ID,
			"user_id": message.From.ID,
			"error":   err,
		}).Error("Text handler failed")

		errorMsg := tgbotapi.NewMessage(message.Chat.ID, "❌ Произошла ошибка. Попробуйте еще раз")
		bot.Send(errorMsg)
	}
}

// HandleCallbackQuery handles callback queries from inline keyboards
func (r *Router) HandleCallbackQuery(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery) {
	r.logger.WithFields(logrus.Fields{
		"callback_id": query.ID,
		"user_id":     query.From.ID,
		"data":        query.Data,
	}).Info("Received callback query")

	// Answer the callback query to remove loading state
	callback := tgbotapi.NewCallback(query.ID, "")
	bot.Request(callback)

	metrics.UpdatesHandled.WithLabelValues("callback").Inc()

	for prefix, handler := range r.callbacks {
		if strings.HasPrefix(query.Data, prefix) {
			if err := handler.Handle(bot, query, strings.TrimPrefix(query.Data, prefix)); err != nil {
				r.logger.WithFields(logrus.Fields{
					"data":    query.Data,
					"user_id": query.From.ID,
					"error":   err,
				}).Error("Callback handler failed")
			}
			return
		}
	}

	r.logger.WithFields(logrus.Fields{
		"data":    query.Data,
		"user_id": query.From.ID,
	}).Warn("Unknown callback data")
}
