package game

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Snapshot is the full persisted aggregate. All five pieces of state are
// stored and restored together as one unit, never independently.
type Snapshot struct {
	Challenge Challenge // nil when no challenge is active
	Owner     *int64
	ListenTo  []int64
	Admins    []string
	Highscore map[int64]Score
}

func (s *State) snapshotLocked() Snapshot {
	var ch Challenge
	if s.challenge != nil {
		ch = make(Challenge, len(s.challenge))
		for i, group := range s.challenge {
			ch[i] = append([]string(nil), group...)
		}
	}
	hs := make(map[int64]Score, len(s.highscore))
	for id, sc := range s.highscore {
		hs[id] = sc
	}
	return Snapshot{
		Challenge: ch,
		Owner:     s.owner,
		ListenTo:  append([]int64(nil), s.listenTo...),
		Admins:    append([]string(nil), s.admins...),
		Highscore: hs,
	}
}

func (s *State) restoreLocked(snap Snapshot) {
	s.challenge = snap.Challenge
	s.owner = snap.Owner
	s.listenTo = append([]int64(nil), snap.ListenTo...)
	s.admins = append([]string(nil), snap.Admins...)
	s.highscore = make(map[int64]Score, len(snap.Highscore))
	for id, sc := range snap.Highscore {
		s.highscore[id] = sc
	}
}

// Wire format of the snapshot. Challenge groups are flattened back to
// "sub1, sub2" strings and highscore entries to [name, count] pairs.
type wireSnapshot struct {
	Path      string               `json:"_path"`
	Challenge []string             `json:"_challenge"`
	Owner     *int64               `json:"_challenge_from"`
	ListenTo  []int64              `json:"_listen_to"`
	Admins    []string             `json:"_admins"`
	Highscore map[string]wireScore `json:"_highscore"`
}

var snapshotFields = []string{
	"_path", "_challenge", "_challenge_from", "_listen_to", "_admins", "_highscore",
}

type wireScore Score

func (w wireScore) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{w.Name, w.Count})
}

func (w *wireScore) UnmarshalJSON(b []byte) error {
	var arr []json.RawMessage
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	if len(arr) != 2 {
		return fmt.Errorf("highscore entry: want [name, count], got %d elements", len(arr))
	}
	if err := json.Unmarshal(arr[0], &w.Name); err != nil {
		return fmt.Errorf("highscore name: %w", err)
	}
	if err := json.Unmarshal(arr[1], &w.Count); err != nil {
		return fmt.Errorf("highscore count: %w", err)
	}
	return nil
}

func encodeSnapshot(snap Snapshot, path string) ([]byte, error) {
	w := wireSnapshot{
		Path:      path,
		Owner:     snap.Owner,
		ListenTo:  snap.ListenTo,
		Admins:    snap.Admins,
		Highscore: make(map[string]wireScore, len(snap.Highscore)),
	}
	if w.ListenTo == nil {
		w.ListenTo = []int64{}
	}
	if w.Admins == nil {
		w.Admins = []string{}
	}
	if snap.Challenge != nil {
		groups := make([]string, len(snap.Challenge))
		for i, group := range snap.Challenge {
			groups[i] = strings.Join(group, ", ")
		}
		w.Challenge = groups
	}
	for id, sc := range snap.Highscore {
		w.Highscore[strconv.FormatInt(id, 10)] = wireScore(sc)
	}
	return json.MarshalIndent(w, "", "    ")
}

// decodeSnapshot parses and validates a stored snapshot. Every field is
// mandatory; a missing field fails the whole load so the caller falls
// back to empty defaults instead of resurrecting half a state.
func decodeSnapshot(b []byte) (Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	for _, key := range snapshotFields {
		if _, ok := fields[key]; !ok {
			return Snapshot{}, fmt.Errorf("snapshot is missing %q", key)
		}
	}

	var w wireSnapshot
	if err := json.Unmarshal(b, &w); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}

	var ch Challenge
	if w.Challenge != nil {
		// group strings were comma-joined, re-parsing them is lossless
		ch = ParseChallenge(strings.Join(w.Challenge, ";"))
		if ch == nil {
			ch = Challenge{}
		}
	}

	hs := make(map[int64]Score, len(w.Highscore))
	for key, ws := range w.Highscore {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return Snapshot{}, fmt.Errorf("highscore key %q: %w", key, err)
		}
		hs[id] = Score(ws)
	}

	return Snapshot{
		Challenge: ch,
		Owner:     w.Owner,
		ListenTo:  w.ListenTo,
		Admins:    w.Admins,
		Highscore: hs,
	}, nil
}
