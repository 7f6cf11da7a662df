// Package model contains domain models passed between layers.
package model

import "sort"

// Event type names used by the classifier and the game state tracker.
const (
	EventPass     = "Pass"
	EventFreeKick = "Free kick"
	EventShot     = "Shot"
	EventOwnGoal  = "Own goal"
	EventFoul     = "Foul"
	EventDuel     = "Duel"
)

// Sub-event type names.
const (
	SubFoul                = "Foul"
	SubHandFoul            = "Hand foul"
	SubLateCardFoul        = "Late card foul"
	SubViolentFoul         = "Violent foul"
	SubGroundDefendingDuel = "Ground defending duel"
	SubFreeKickShot        = "Free kick shot"
)

// Tag labels.
const (
	TagInterception  = "Interception"
	TagWon           = "Won"
	TagSlidingTackle = "Sliding tackle"
	TagGoal          = "Goal"
)

// Event is one row of a match log.
type Event struct {
	MatchID      string  // match the event belongs to
	EventID      string  // optional source identifier
	TeamID       int     // team performing the event
	EventType    string  // e.g. "Pass", "Shot"
	SubEventType string  // finer category, meaningful for some event types
	StartX       float64 // position along the long axis of the pitch
	StartY       float64 // position along the short axis of the pitch
	Tags         TagSet
}

// HasTag reports whether the event carries tag.
func (e Event) HasTag(tag string) bool {
	return e.Tags.Has(tag)
}

// TagSet is an unordered set of event tags. The zero value is an empty set.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from tags. Duplicates collapse.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Len returns the number of distinct tags.
func (s TagSet) Len() int { return len(s) }

// Sorted returns the tags in lexical order, for stable output.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
