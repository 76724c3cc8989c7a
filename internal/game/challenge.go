package game

import "strings"

// Challenge is an ordered list of answer groups. A message solves the
// challenge if it contains every substring of at least one group
// (plain substring containment, not tokenized matching).
type Challenge [][]string

// ParseChallenge splits "a, b; c" into [["a","b"],["c"]]: groups are
// ';'-separated, substrings ','-separated, trimmed and lower-cased.
// Empty substrings and empty groups are dropped, so "a,,b;;" => [["a","b"]].
func ParseChallenge(text string) Challenge {
	var groups Challenge
	for _, seg := range strings.Split(text, ";") {
		var group []string
		for _, part := range strings.Split(seg, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				group = append(group, part)
			}
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

// Match reports whether text contains every substring of at least one
// group. The first matching group wins, later groups are not evaluated.
func (c Challenge) Match(text string) bool {
	text = strings.ToLower(text)
	for _, group := range c {
		if groupMatch(group, text) {
			return true
		}
	}
	return false
}

func groupMatch(group []string, text string) bool {
	for _, sub := range group {
		if !strings.Contains(text, sub) {
			return false
		}
	}
	return true
}

// Answers renders every group for announcements: substrings joined by
// ", ", groups joined by " or ".
func (c Challenge) Answers() string {
	parts := make([]string, len(c))
	for i, group := range c {
		parts[i] = strings.Join(group, ", ")
	}
	return strings.Join(parts, " or ")
}
