package game

import (
	"context"
	"fmt"
	"slices"
)

// NewChallenge handles a challenge post. The transport passes the photo
// caption with the command prefix already stripped. Preconditions, in
// order: the caller is the current owner (nil owner = anyone may post),
// the chat is private, at least one listener chat is registered, no
// challenge is active, a photo is attached. Any failure answers the
// caller with a single message and mutates nothing.
func (s *State) NewChallenge(ctx context.Context, msg Message) []Outgoing {
	if msg.From == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isOwnerLocked(msg.From) {
		return []Outgoing{sendText(msg.ChatID, "You are not the current user!")}
	}
	if msg.ChatKind != ChatPrivate {
		return []Outgoing{sendText(msg.ChatID, "The command has to be executed in a private channel!")}
	}
	if len(s.listenTo) == 0 {
		return []Outgoing{sendText(msg.ChatID, "Please set listen_to first.")}
	}
	if s.challenge != nil {
		return []Outgoing{sendText(msg.ChatID, "Challenge already active ..")}
	}
	if msg.PhotoID == "" {
		return []Outgoing{sendText(msg.ChatID, "The challenge needs a photo ..")}
	}

	parsed := ParseChallenge(msg.Caption)
	if parsed == nil {
		// an empty caption still arms the challenge; only /skip ends it
		parsed = Challenge{}
	}
	s.challenge = parsed
	owner := msg.From.ID
	s.owner = &owner

	caption := fmt.Sprintf("Your next challenge from %s ... good luck :)", msg.From.FirstName)
	outs := make([]Outgoing, 0, len(s.listenTo))
	for _, cid := range s.listenTo {
		outs = append(outs, sendPhoto(cid, msg.PhotoID, caption))
	}

	s.persistLocked(ctx)
	s.emitLocked(Event{Type: EventChallengePosted, Payload: PostedPayload{
		From:   msg.From.FirstName,
		Groups: len(s.challenge),
	}})
	return outs
}

// CheckAnswer tests a plain text message against the active challenge.
// Messages outside listener chats, messages without text and messages
// while no challenge is active are ignored silently. A correct answer by
// the owner resets the round without awarding a point; a correct answer
// by anyone else scores, announces and makes the solver the new owner.
func (s *State) CheckAnswer(ctx context.Context, msg Message) []Outgoing {
	if msg.From == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.listenTo, msg.ChatID) {
		return nil
	}
	if msg.Text == "" || s.challenge == nil {
		return nil
	}
	if !s.challenge.Match(msg.Text) {
		return nil
	}

	if s.isOwnerLocked(msg.From) {
		s.challenge = nil
		s.owner = nil
		s.persistLocked(ctx)
		s.emitLocked(Event{Type: EventChallengeSkipped, Payload: SkippedPayload{Reason: "self_solve"}})
		return []Outgoing{sendText(msg.ChatID, "You are the current user, this is not allowed! Reset.")}
	}

	answers := s.challenge.Answers()
	count := s.recordSolveLocked(msg.From)

	outs := make([]Outgoing, 0, len(s.listenTo))
	for _, cid := range s.listenTo {
		outs = append(outs, sendText(cid,
			fmt.Sprintf("%s (Highscore: %d) got it: %s", msg.From.FirstName, count, answers)))
	}

	s.challenge = nil
	owner := msg.From.ID
	s.owner = &owner

	s.persistLocked(ctx)
	s.emitLocked(Event{Type: EventChallengeSolved, Payload: SolvedPayload{
		UserID: msg.From.ID,
		Name:   msg.From.FirstName,
		Score:  count,
		Answer: answers,
	}})
	if s.OnSolve != nil {
		s.OnSolve(ctx, Solve{
			UserID: msg.From.ID,
			Name:   msg.From.FirstName,
			Answer: answers,
			Score:  count,
		})
	}
	return outs
}

// Skip ends the current round. Allowed for the current owner (nil owner
// = anyone) or an admin. With no active challenge it only clears the
// owner so that anyone may post; with an active challenge it reveals the
// unsolved answers and clears both.
func (s *State) Skip(ctx context.Context, msg Message) []Outgoing {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isOwnerLocked(msg.From) && !s.isAdminLocked(msg.From) {
		return []Outgoing{sendText(msg.ChatID, "You are not the current user!")}
	}

	var out Outgoing
	if s.challenge == nil {
		out = sendText(msg.ChatID, "Skipped. Everyone can create a new challenge now ..")
		s.owner = nil
		s.emitLocked(Event{Type: EventChallengeSkipped, Payload: SkippedPayload{Reason: "skip"}})
	} else {
		answers := s.challenge.Answers()
		out = sendText(msg.ChatID, fmt.Sprintf("No one got it: %s", answers))
		s.challenge = nil
		s.owner = nil
		s.emitLocked(Event{Type: EventChallengeSkipped, Payload: SkippedPayload{
			Answer: answers,
			Reason: "skip",
		}})
	}

	s.persistLocked(ctx)
	return []Outgoing{out}
}
