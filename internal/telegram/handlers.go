package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"data-chatter/internal/apperr"
	"data-chatter/internal/dataset"
)

const helpText = `Upload a CSV file, then ask questions about it.

/model <name> - show or set the model
/temperature <0.0-1.0> - show or set the temperature
/history - show the conversation so far
/reset - clear the conversation
/recreate - start a new analysis container (use after it expired or to analyse a newly uploaded file)`

// handleCommand dispatches slash commands. Settings changes apply to the
// next turn.
func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	s := b.sessions.Get(chatID)
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		b.sendMessage(chatID, helpText)
	case "model":
		if args == "" {
			b.sendMessage(chatID, "Model: "+s.Settings().Model)
			return
		}
		s.SetModel(args)
		b.sendMessage(chatID, "Model set to "+args)
	case "temperature":
		if args == "" {
			b.sendMessage(chatID, fmt.Sprintf("Temperature: %.2f", s.Settings().Temperature))
			return
		}
		t, err := strconv.ParseFloat(args, 64)
		if err != nil || t < 0 || t > 1 {
			b.sendMessage(chatID, "Usage: /temperature <value between 0.0 and 1.0>")
			return
		}
		s.SetTemperature(t)
		b.sendMessage(chatID, fmt.Sprintf("Temperature set to %.2f", t))
	case "history":
		turns := s.Log.Turns()
		if len(turns) == 0 {
			b.sendMessage(chatID, "No messages yet.")
			return
		}
		for _, t := range turns {
			b.renderTurn(chatID, s, t)
		}
	case "reset":
		s.Reset()
		b.sendMessage(chatID, "Context reset.")
	case "recreate":
		s.DropContainer()
		if s.Dataset() == nil {
			b.sendMessage(chatID, "Container dropped. Upload a CSV file to continue.")
			return
		}
		b.sendMessage(chatID, "Container dropped. A new one will be created with "+s.Dataset().Name+" on your next question.")
	default:
		b.sendMessage(chatID, "Unknown command.\n\n"+helpText)
	}
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	doc := msg.Document
	log.Info().Int64("chat_id", chatID).Str("file", doc.FileName).Int("size", doc.FileSize).Msg("dataset received")

	if !dataset.IsCSV(doc.FileName, doc.MimeType) {
		b.sendMessage(chatID, "Uploaded file is not a CSV file.")
		return
	}
	if b.maxDatasetBytes > 0 && doc.FileSize > b.maxDatasetBytes {
		b.sendMessage(chatID, "Uploaded file is too large.")
		return
	}

	data, err := b.files.Download(ctx, doc.FileID)
	if err != nil {
		log.Error().Err(err).Str("file", doc.FileName).Msg("failed to download dataset")
		b.sendMessage(chatID, "Could not download the file, please send it again.")
		return
	}
	ds, err := dataset.Prepare(doc.FileName, doc.MimeType, data, b.maxDatasetBytes)
	if err != nil {
		log.Warn().Err(err).Str("file", doc.FileName).Msg("dataset rejected")
		b.sendMessage(chatID, datasetErrorText(err))
		return
	}

	s := b.sessions.Get(chatID)
	s.SetDataset(ds)
	reply := ds.Name + " uploaded successfully."
	if s.Container() != nil {
		reply += " The current analysis container still holds the first file; send /recreate to analyse this one."
	}
	b.sendMessage(chatID, reply)

	if caption := strings.TrimSpace(msg.Caption); caption != "" {
		b.handleIncomingMessage(ctx, chatID, caption)
	}
}

// handleIncomingMessage runs one conversation turn for a free-text message.
func (b *Bot) handleIncomingMessage(ctx context.Context, chatID int64, text string) {
	s, done := b.sessions.Begin(chatID)
	defer done()
	log.Info().Int64("chat_id", chatID).Str("session", s.ID).Msg("incoming message")

	if _, err := b.s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Debug().Err(err).Msg("failed to send typing action")
	}

	settings := s.Settings()
	turn, err := b.turns.HandleUserTurn(ctx, s, text, settings.Model, settings.Temperature)
	if err != nil {
		if errors.Is(err, apperr.ErrArtifactFetch) && len(turn.Elements) > 0 {
			b.renderTurn(chatID, s, turn)
		}
		b.sendMessage(chatID, turnErrorText(err))
		return
	}
	b.renderTurn(chatID, s, turn)
	b.sendResetKeyboard(chatID)
}

func (b *Bot) sendResetKeyboard(chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Reset context", resetCmd),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "Ask a follow-up question or reset the context.")
	msg.ReplyMarkup = kb
	if _, err := b.s.Send(msg); err != nil {
		log.Error().Err(err).Msg("failed to send keyboard")
	}
}

func turnErrorText(err error) string {
	switch apperr.Kind(err) {
	case apperr.ErrNoDataset:
		return "Please upload a CSV file first."
	case apperr.ErrContainerCreation:
		return "Could not start the analysis container. Please try again."
	case apperr.ErrContainerExpired:
		return "The analysis container has expired. Send /recreate, then ask again."
	case apperr.ErrArtifactFetch:
		return "Could not load an image produced by the analysis."
	default:
		return "Sorry, something went wrong."
	}
}

func datasetErrorText(err error) string {
	switch {
	case errors.Is(err, dataset.ErrTooLarge):
		return "Uploaded file is too large."
	case errors.Is(err, dataset.ErrEmpty):
		return "Uploaded file is empty."
	default:
		return "Uploaded file is not a valid CSV file."
	}
}
