package game

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Score is one highscore ledger entry. The name is overwritten with the
// most recent display name on every solve.
type Score struct {
	Name  string
	Count int
}

// State owns all game state behind a single mutex: the active challenge
// and its owner, the admin allow-list, the listener chats and the
// highscore ledger. Every mutating operation writes a full snapshot
// before returning (write-through, no batching), so a crash never loses
// more than the operation in flight.
type State struct {
	mu sync.Mutex

	challenge Challenge // nil => no active challenge
	owner     *int64    // nil => anyone may post the next challenge
	listenTo  []int64
	admins    []string // "@username", empty => everyone is admin
	highscore map[int64]Score

	persist Persistence
	log     *slog.Logger

	// OnEvent and OnSolve are optional observer hooks, invoked while the
	// state lock is held. They must not call back into State.
	OnEvent func(Event)
	OnSolve func(context.Context, Solve)
}

func New(persist Persistence, log *slog.Logger) *State {
	if log == nil {
		log = slog.Default()
	}
	return &State{
		highscore: make(map[int64]Score),
		persist:   persist,
		log:       log,
	}
}

// Load restores the snapshot from storage. Missing or malformed storage
// is logged and leaves the empty defaults in place; the process must
// still start.
func (s *State) Load(ctx context.Context) {
	snap, ok, err := s.persist.Load(ctx)
	if err != nil {
		s.log.Error("state could not be loaded", "err", err)
		return
	}
	if !ok {
		return
	}

	s.mu.Lock()
	s.restoreLocked(snap)
	s.mu.Unlock()
}

func (s *State) persistLocked(ctx context.Context) {
	if err := s.persist.Save(ctx, s.snapshotLocked()); err != nil {
		s.log.Error("state could not be stored", "err", err)
	}
}

func (s *State) emitLocked(ev Event) {
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}

// isOwnerLocked implements the null-owner rule: a nil owner makes
// everyone the owner. The same rule answers two different questions —
// "may this user post?" (nil owner: yes, anyone) and "is this user
// answering their own challenge?" (nil owner: yes, reset). Both callers
// rely on it, do not replace nil with a sentinel id.
func (s *State) isOwnerLocked(u *User) bool {
	if s.owner == nil {
		return true
	}
	if u == nil {
		return false
	}
	return *s.owner == u.ID
}

// IsAdmin reports whether the user passes the allow-list. An empty list
// means everyone is admin.
func (s *State) IsAdmin(u *User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAdminLocked(u)
}

func (s *State) isAdminLocked(u *User) bool {
	if len(s.admins) == 0 {
		return true
	}
	if u == nil {
		return false
	}
	return slices.Contains(s.admins, "@"+u.Username)
}

// AddAdmin appends a username to the allow-list. Empty input and
// duplicates are no-ops. The name is stored "@"-prefixed either way.
func (s *State) AddAdmin(ctx context.Context, username string) {
	username = normalizeAdmin(username)
	if username == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.admins, username) {
		return
	}
	s.admins = append(s.admins, username)
	s.persistLocked(ctx)
}

// DelAdmin removes a username from the allow-list if present. Removing
// the last admin restores "everyone is admin".
func (s *State) DelAdmin(ctx context.Context, username string) {
	username = normalizeAdmin(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.admins, username)
	if i < 0 {
		return
	}
	s.admins = slices.Delete(s.admins, i, i+1)
	s.persistLocked(ctx)
}

// AdminState describes the allow-list for chat output.
func (s *State) AdminState() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.admins) == 0 {
		return "Everyone is admin"
	}
	return "Current admins: " + strings.Join(s.admins, ", ")
}

func normalizeAdmin(username string) string {
	username = strings.TrimSpace(username)
	if username == "" || username == "@" {
		return ""
	}
	if !strings.HasPrefix(username, "@") {
		username = "@" + username
	}
	return username
}

// ToggleListen flips chat membership in the broadcast set and reports
// the new state (true = now listening). Two consecutive toggles restore
// the original membership.
func (s *State) ToggleListen(ctx context.Context, chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.listenTo, chatID)
	listening := i < 0
	if listening {
		s.listenTo = append(s.listenTo, chatID)
	} else {
		s.listenTo = slices.Delete(s.listenTo, i, i+1)
	}

	s.persistLocked(ctx)
	s.emitLocked(Event{Type: EventListenerToggled, Payload: ListenerToggledPayload{
		ChatID:    chatID,
		Listening: listening,
	}})
	return listening
}

// recordSolveLocked increments the ledger (inserting at count 1) and
// stores the latest display name. Called at most once per solve.
func (s *State) recordSolveLocked(u *User) int {
	entry := s.highscore[u.ID]
	entry.Name = u.FirstName
	entry.Count++
	s.highscore[u.ID] = entry
	return entry.Count
}

// Highscore renders the ledger, highest count first, one "name: count"
// per line. Ties keep the order the map iteration produced.
func (s *State) Highscore() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Score, 0, len(s.highscore))
	for _, sc := range s.highscore {
		entries = append(entries, sc)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	lines := make([]string, len(entries))
	for i, sc := range entries {
		lines[i] = fmt.Sprintf("%s: %d", sc.Name, sc.Count)
	}
	return strings.Join(lines, "\n")
}

// Status is the one-line summary used by the /status command.
func (s *State) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge := "none"
	if s.challenge != nil {
		challenge = s.challenge.Answers()
	}
	owner := "anyone"
	if s.owner != nil {
		owner = fmt.Sprintf("%d", *s.owner)
	}
	return fmt.Sprintf("Current Challenge: %s from %s. Current Admins: [%s]",
		challenge, owner, strings.Join(s.admins, ", "))
}

// Summary is the dashboard view of the aggregate. Answer substrings are
// deliberately not exposed while a challenge is live.
type Summary struct {
	ChallengeActive bool     `json:"challengeActive"`
	Groups          int      `json:"groups"`
	OwnerSet        bool     `json:"ownerSet"`
	Admins          []string `json:"admins"`
	Listeners       int      `json:"listeners"`
	Players         int      `json:"players"`
}

func (s *State) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Summary{
		ChallengeActive: s.challenge != nil,
		Groups:          len(s.challenge),
		OwnerSet:        s.owner != nil,
		Admins:          append([]string{}, s.admins...),
		Listeners:       len(s.listenTo),
		Players:         len(s.highscore),
	}
}

// ScoreEntry is one ledger row for the dashboard.
type ScoreEntry struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// Scores returns the ledger sorted by count descending.
func (s *State) Scores() []ScoreEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]ScoreEntry, 0, len(s.highscore))
	for id, sc := range s.highscore {
		entries = append(entries, ScoreEntry{UserID: id, Name: sc.Name, Count: sc.Count})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
