package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"data-chatter/internal/history"
	"data-chatter/internal/session"
)

const resetCmd = "reset_ctx"

type turnHandler interface {
	HandleUserTurn(ctx context.Context, s *session.Session, utterance, model string, temperature float64) (history.Turn, error)
}

type Bot struct {
	api             *tgbotapi.BotAPI
	s               sender
	files           downloader
	sessions        *session.Registry
	turns           turnHandler
	maxDatasetBytes int
}

func New(botToken string, sessions *session.Registry, turns turnHandler, maxDatasetBytes int) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	s := botAPISender{api: api}
	return &Bot{
		api:             api,
		s:               s,
		files:           s,
		sessions:        sessions,
		turns:           turns,
		maxDatasetBytes: maxDatasetBytes,
	}, nil
}

// Start polls for updates until ctx is done. Updates are handled one at a
// time, so a session never runs two turns at once.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Info().Str("bot", b.api.Self.UserName).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		switch {
		case msg.IsCommand():
			b.handleCommand(msg)
		case msg.Document != nil:
			b.handleDocument(ctx, msg)
		case msg.Text != "":
			b.handleIncomingMessage(ctx, msg.Chat.ID, msg.Text)
		}
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Data == resetCmd && cb.Message != nil {
		b.sessions.Get(cb.Message.Chat.ID).Reset()
		if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			log.Warn().Err(err).Msg("failed to answer callback")
		}
		b.sendMessage(cb.Message.Chat.ID, "Context reset.")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	for _, part := range splitText(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, part)
		if _, err := b.s.Send(msg); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
		}
	}
}
