// Package notify forwards selected activity to an operator Telegram chat.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// MessageSender delivers a text message to a chat
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// telegramSender implements MessageSender using the telegram-bot-api library
type telegramSender struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegramSender validates the token against the Bot API and returns a sender
func NewTelegramSender(token string, logger *zap.Logger) (MessageSender, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	// NewBotAPI calls getMe, so a bad token fails here
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram notifier initialized", zap.String("username", bot.Self.UserName))

	return &telegramSender{bot: bot, logger: logger}, nil
}

// SendMessage sends an HTML formatted message to the specified chat
func (s *telegramSender) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := s.bot.Send(msg); err != nil {
		s.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.logger.Debug("Message sent successfully", zap.Int64("chat_id", chatID))
	return nil
}
