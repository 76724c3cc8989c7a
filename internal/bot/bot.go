package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/matzebond/CoP-Bot/internal/game"
)

// Bot is the Telegram transport: it long-polls updates, maps them onto
// the game engine and delivers whatever the engine wants sent. The
// engine serializes internally, so updates are handled inline.
type Bot struct {
	api  *tgbotapi.BotAPI
	game *game.State
	log  *slog.Logger
}

func New(token string, g *game.State, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bot{api: api, game: g, log: log}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)
	b.log.Info("telegram polling started", "bot", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message == nil {
				continue
			}
			b.handle(ctx, upd.Message)
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	in := toIncoming(msg)
	cmd, args := command(msg)

	var outs []game.Outgoing
	switch cmd {
	case "new":
		in.Caption = args
		outs = b.game.NewChallenge(ctx, in)
	case "skip":
		outs = b.game.Skip(ctx, in)
	case "listen_to":
		if b.game.ToggleListen(ctx, in.ChatID) {
			outs = []game.Outgoing{{ChatID: in.ChatID, Text: "Listening to this chat now .."}}
		} else {
			outs = []game.Outgoing{{ChatID: in.ChatID, Text: "Not listening to this chat anymore .."}}
		}
	case "add_admin":
		b.game.AddAdmin(ctx, args)
		outs = []game.Outgoing{{ChatID: in.ChatID, Text: b.game.AdminState()}}
	case "del_admin":
		b.game.DelAdmin(ctx, args)
		outs = []game.Outgoing{{ChatID: in.ChatID, Text: b.game.AdminState()}}
	case "admins":
		outs = []game.Outgoing{{ChatID: in.ChatID, Text: b.game.AdminState()}}
	case "highscore":
		hs := b.game.Highscore()
		if hs == "" {
			hs = "No highscores yet .."
		}
		outs = []game.Outgoing{{ChatID: in.ChatID, Text: hs}}
	case "status":
		outs = []game.Outgoing{{ChatID: in.ChatID, Text: b.game.Status()}}
	case "":
		// plain text, maybe an answer
		outs = b.game.CheckAnswer(ctx, in)
	default:
		// unknown commands are not answers, ignore them
	}

	b.deliver(outs)
}

func (b *Bot) deliver(outs []game.Outgoing) {
	for _, out := range outs {
		var msg tgbotapi.Chattable
		if out.Photo != "" {
			photo := tgbotapi.NewPhoto(out.ChatID, tgbotapi.FileID(out.Photo))
			photo.Caption = out.Caption
			msg = photo
		} else {
			msg = tgbotapi.NewMessage(out.ChatID, out.Text)
		}
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("telegram send failed", "chat", out.ChatID, "err", err)
		}
	}
}
