package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textMsg(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 1, Type: "private"},
		Text: text,
	}
}

func TestCommand(t *testing.T) {
	cases := []struct {
		text string
		cmd  string
		args string
	}{
		{"/new red, car; blue", "new", "red, car; blue"},
		{"/skip", "skip", ""},
		{"/skip@CoPBot", "skip", ""},
		{"/add_admin @bob", "add_admin", "@bob"},
		{"/highscore  ", "highscore", ""},
		{"just some text", "", ""},
		{"", "", ""},
	}

	for _, tc := range cases {
		cmd, args := command(textMsg(tc.text))
		assert.Equal(t, tc.cmd, cmd, "text=%q", tc.text)
		assert.Equal(t, tc.args, args, "text=%q", tc.text)
	}
}

func TestCommand_FromCaption(t *testing.T) {
	msg := &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: 1, Type: "private"},
		Caption: "/new red; blue",
		Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}},
	}

	cmd, args := command(msg)
	assert.Equal(t, "new", cmd)
	assert.Equal(t, "red; blue", args)
}

func TestToIncoming(t *testing.T) {
	msg := &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: -100123, Type: "supergroup"},
		From:    &tgbotapi.User{ID: 7, UserName: "greta", FirstName: "Greta"},
		Text:    "the red car",
		Caption: "",
		Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}},
	}

	in := toIncoming(msg)

	assert.Equal(t, int64(-100123), in.ChatID)
	assert.Equal(t, "supergroup", in.ChatKind)
	assert.Equal(t, "the red car", in.Text)
	require.NotNil(t, in.From)
	assert.Equal(t, int64(7), in.From.ID)
	assert.Equal(t, "greta", in.From.Username)
	assert.Equal(t, "Greta", in.From.FirstName)
	assert.Equal(t, "big", in.PhotoID, "largest photo size wins")
}

func TestToIncoming_AnonymousSender(t *testing.T) {
	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 5, Type: "channel"},
		Text: "hello",
	}

	in := toIncoming(msg)
	assert.Nil(t, in.From)
	assert.Equal(t, "", in.PhotoID)
}
