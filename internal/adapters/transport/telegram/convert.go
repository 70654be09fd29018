package telegram

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/tutorbot/internal/domain/model"
)

// Telegram omits mime_type on some clients.
const (
	voiceMIME = "audio/ogg"
	audioMIME = "audio/mpeg"
)

// ToEvent converts an update into a bot event. Updates the bot does not
// handle (edited messages, stickers, channel posts) report false.
func ToEvent(u Update) (model.Event, bool) {
	e := model.Event{
		ID:         "upd-" + strconv.FormatInt(u.UpdateID, 10),
		ReceivedAt: time.Now(),
	}

	if cq := u.CallbackQuery; cq != nil {
		e.Kind = model.KindButton
		e.UserID = model.UserID(cq.From.ID)
		e.CallbackID = cq.ID
		e.Payload = cq.Data
		if cq.Message != nil {
			e.ChatID = cq.Message.Chat.ID
			e.MessageID = cq.Message.MessageID
		} else {
			e.ChatID = cq.From.ID
		}
		return e, true
	}

	m := u.Message
	if m == nil || m.From == nil {
		return model.Event{}, false
	}
	e.UserID = model.UserID(m.From.ID)
	e.ChatID = m.Chat.ID
	e.MessageID = m.MessageID

	switch {
	case m.Voice != nil:
		e.Kind = model.KindMedia
		e.MediaFile = m.Voice.FileID
		e.MediaMIME = m.Voice.MimeType
		if e.MediaMIME == "" {
			e.MediaMIME = voiceMIME
		}
	case m.Audio != nil:
		e.Kind = model.KindMedia
		e.MediaFile = m.Audio.FileID
		e.MediaMIME = m.Audio.MimeType
		if e.MediaMIME == "" {
			e.MediaMIME = audioMIME
		}
	case m.Document != nil:
		e.Kind = model.KindMedia
		e.MediaFile = m.Document.FileID
		e.MediaMIME = m.Document.MimeType
	case strings.HasPrefix(m.Text, "/"):
		e.Kind = model.KindCommand
		e.Payload = commandName(m.Text)
	case strings.TrimSpace(m.Text) != "":
		e.Kind = model.KindText
		e.Payload = m.Text
	default:
		return model.Event{}, false
	}
	return e, true
}

// commandName reduces "/Start@tutor_bot arg" to "/start".
func commandName(text string) string {
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd)
}
