package telegram

import (
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"data-chatter/internal/display"
	"data-chatter/internal/history"
	"data-chatter/internal/session"
)

const maxMessageLen = 4096

// renderTurn sends every element of t in order.
func (b *Bot) renderTurn(chatID int64, s *session.Session, t history.Turn) {
	for _, el := range t.Elements {
		log.Debug().Int64("chat_id", chatID).Str("kind", el.Kind()).Msg("rendering element")
		switch e := el.(type) {
		case display.Text:
			text := e.Content
			if t.Role == history.RoleUser {
				text = "You: " + text
			}
			b.sendMessage(chatID, text)
		case display.Code:
			b.sendCode(chatID, e)
		case display.Image:
			b.sendImage(chatID, s, e)
		}
	}
}

func (b *Bot) sendCode(chatID int64, c display.Code) {
	// room for the <pre><code class="language-..."> wrapper
	limit := maxMessageLen - 64 - len(c.Language)
	for _, part := range splitText(c.Content, limit) {
		msg := tgbotapi.NewMessage(chatID, `<pre><code class="language-`+html.EscapeString(c.Language)+`">`+html.EscapeString(part)+"</code></pre>")
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := b.s.Send(msg); err != nil {
			log.Error().Err(err).Msg("failed to send code")
		}
	}
}

func (b *Bot) sendImage(chatID int64, s *session.Session, img display.Image) {
	data, ok := s.Artifacts.Get(img.ArtifactID)
	if !ok {
		b.sendMessage(chatID, "Image not found.")
		return
	}
	name := img.Filename
	if name == "" {
		name = img.ArtifactID + ".png"
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.s.Send(photo); err != nil {
		log.Error().Err(err).Str("artifact", img.ArtifactID).Msg("failed to send image")
	}
}

// splitText cuts s into chunks of at most limit runes, preferring line
// breaks.
func splitText(s string, limit int) []string {
	r := []rune(s)
	if len(r) <= limit {
		return []string{s}
	}
	var out []string
	for len(r) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if r[i-1] == '\n' {
				cut = i
				break
			}
		}
		out = append(out, string(r[:cut]))
		r = r[cut:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}
