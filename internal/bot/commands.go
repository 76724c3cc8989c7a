package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/matzebond/CoP-Bot/internal/game"
)

// command extracts "/cmd args" from the message text or, for photo
// posts, the caption. Telegram only marks entities for text commands,
// so caption commands are parsed by hand. A "@botname" suffix on the
// command is stripped.
func command(msg *tgbotapi.Message) (cmd, args string) {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	cmd, args, _ = strings.Cut(text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd, strings.TrimSpace(args)
}

func toIncoming(msg *tgbotapi.Message) game.Message {
	in := game.Message{
		ChatID:   msg.Chat.ID,
		ChatKind: msg.Chat.Type,
		Text:     msg.Text,
		Caption:  msg.Caption,
	}
	if msg.From != nil {
		in.From = &game.User{
			ID:        msg.From.ID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
		}
	}
	if len(msg.Photo) > 0 {
		// sizes are ordered small to large, take the best one
		in.PhotoID = msg.Photo[len(msg.Photo)-1].FileID
	}
	return in
}
