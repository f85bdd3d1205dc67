package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kerhoff/prodbot/internal/service"
)

// sendReply delivers a service reply: Markdown text, with an inline
// withdraw button attached when the service asked for one. An empty
// reply sends nothing.
func sendReply(bot *tgbotapi.BotAPI, chatID int64, reply service.Reply) {
	if reply.Text == "" {
		return
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if reply.WithdrawCode != 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Удалить", fmt.Sprintf("withdraw_%d", reply.WithdrawCode)),
			),
		)
	}
	bot.Send(msg)
}

func sendText(bot *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
}
