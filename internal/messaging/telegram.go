package messaging

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/salamatyar/salamatbot/internal/models"
)

// Long polling configuration.
const (
	updateTimeoutSeconds = 30
	eventBufferSize      = 64
)

// TelegramService implements Service over the Telegram Bot API using long
// polling. Telegram delivers updates for a given chat in order; the
// service preserves that order on its event channel.
type TelegramService struct {
	api    *tgbotapi.BotAPI
	events chan models.Event
	done   chan struct{}
}

// NewTelegramService creates a Telegram messaging service with the given
// bot token.
func NewTelegramService(token string) (*TelegramService, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	slog.Info("TelegramService authorized", "username", api.Self.UserName)
	return &TelegramService{
		api:    api,
		events: make(chan models.Event, eventBufferSize),
		done:   make(chan struct{}),
	}, nil
}

// Start begins long polling for updates and translating them into events.
func (s *TelegramService) Start(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeoutSeconds
	updates := s.api.GetUpdatesChan(cfg)

	go func() {
		defer close(s.events)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := s.eventFromUpdate(update)
				if !ok {
					continue
				}
				select {
				case s.events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	slog.Info("TelegramService started long polling")
	return nil
}

// Stop stops receiving updates.
func (s *TelegramService) Stop() error {
	s.api.StopReceivingUpdates()
	close(s.done)
	slog.Debug("TelegramService stopped")
	return nil
}

// Events returns the inbound event channel.
func (s *TelegramService) Events() <-chan models.Event {
	return s.events
}

// eventFromUpdate translates a Telegram update into a core event. Button
// presses arrive as callback queries and are acknowledged immediately so
// the client stops showing a spinner.
func (s *TelegramService) eventFromUpdate(update tgbotapi.Update) (models.Event, bool) {
	if cq := update.CallbackQuery; cq != nil && cq.Message != nil {
		if _, err := s.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			slog.Warn("TelegramService failed to answer callback query", "error", err)
		}
		return models.Event{
			UserID:    cq.From.ID,
			ChatID:    cq.Message.Chat.ID,
			Username:  cq.From.UserName,
			FirstName: cq.From.FirstName,
			Payload:   cq.Data,
		}, true
	}

	if msg := update.Message; msg != nil && msg.From != nil && msg.Text != "" {
		ev := models.Event{
			UserID:    msg.From.ID,
			ChatID:    msg.Chat.ID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
			Text:      msg.Text,
		}
		if msg.IsCommand() {
			ev.IsCommand = true
			ev.Command = msg.Command()
		}
		return ev, true
	}

	return models.Event{}, false
}

// SendMessage sends a text message with the given keyboard layout.
func (s *TelegramService) SendMessage(ctx context.Context, chatID int64, text string, keyboard KeyboardSpec) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup := markupFor(keyboard); markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := s.api.Send(msg); err != nil {
		slog.Error("TelegramService.SendMessage failed", "error", err, "chatID", chatID)
		return fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}
	slog.Debug("TelegramService.SendMessage succeeded", "chatID", chatID, "keyboard", keyboard)
	return nil
}

// SendPhoto sends a photo by URL with a caption.
func (s *TelegramService) SendPhoto(ctx context.Context, chatID int64, url, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	if _, err := s.api.Send(photo); err != nil {
		slog.Error("TelegramService.SendPhoto failed", "error", err, "chatID", chatID)
		return fmt.Errorf("failed to send photo to %d: %w", chatID, err)
	}
	return nil
}
