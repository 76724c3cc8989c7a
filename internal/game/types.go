package game

// Chat kinds as the transport reports them.
const (
	ChatPrivate    = "private"
	ChatGroup      = "group"
	ChatSupergroup = "supergroup"
	ChatChannel    = "channel"
)

// User identifies the sender of a message.
type User struct {
	ID        int64
	Username  string // without the "@"
	FirstName string
}

// Message is a normalized incoming message, already parsed by the transport.
type Message struct {
	ChatID   int64
	ChatKind string // private|group|supergroup|channel
	From     *User  // nil for anonymous channel posts
	Text     string
	Caption  string
	PhotoID  string // file id of the attached photo, "" if none
}

// Outgoing is a send request for the transport layer.
// Photo == "" means plain text, otherwise a photo with Caption.
type Outgoing struct {
	ChatID  int64
	Text    string
	Photo   string
	Caption string
}

func sendText(chatID int64, text string) Outgoing {
	return Outgoing{ChatID: chatID, Text: text}
}

func sendPhoto(chatID int64, photo, caption string) Outgoing {
	return Outgoing{ChatID: chatID, Photo: photo, Caption: caption}
}

// Solve describes one awarded solve, for the optional archive hook.
type Solve struct {
	UserID int64
	Name   string
	Answer string
	Score  int
}

// Event types emitted to observers (dashboard feed).
const (
	EventChallengePosted  = "challenge_posted"
	EventChallengeSolved  = "challenge_solved"
	EventChallengeSkipped = "challenge_skipped"
	EventListenerToggled  = "listener_toggled"
)

// Event envelope: {"type":"...","payload":{...}}
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type PostedPayload struct {
	From   string `json:"from"`
	Groups int    `json:"groups"`
}

type SolvedPayload struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Answer string `json:"answer"`
}

type SkippedPayload struct {
	Answer string `json:"answer,omitempty"`
	Reason string `json:"reason"` // skip|self_solve
}

type ListenerToggledPayload struct {
	ChatID    int64 `json:"chatId"`
	Listening bool  `json:"listening"`
}
