package model

import "fmt"

// Match is the chronologically ordered event log of one game.
type Match struct {
	ID     string
	Events []Event
}

// TeamPair holds the two teams of a match in first-seen order.
type TeamPair struct {
	First  int
	Second int
}

// Opponent returns the other team of the pair.
func (p TeamPair) Opponent(team int) (int, bool) {
	switch team {
	case p.First:
		return p.Second, true
	case p.Second:
		return p.First, true
	default:
		return 0, false
	}
}

// Contains reports whether team is one of the pair.
func (p TeamPair) Contains(team int) bool {
	return team == p.First || team == p.Second
}

// TeamsOf returns the distinct teams of events in first-seen order.
// Anything other than exactly two teams is a precondition violation.
func TeamsOf(events []Event) (TeamPair, error) {
	if len(events) == 0 {
		return TeamPair{}, fmt.Errorf("%w: %w", ErrPreconditionViolation, ErrEmptyMatch)
	}
	seen := make(map[int]struct{}, 2)
	var order []int
	for _, e := range events {
		if _, ok := seen[e.TeamID]; ok {
			continue
		}
		seen[e.TeamID] = struct{}{}
		order = append(order, e.TeamID)
	}
	if len(order) != 2 {
		return TeamPair{}, fmt.Errorf("%w: expected exactly 2 teams, found %d %v", ErrPreconditionViolation, len(order), order)
	}
	return TeamPair{First: order[0], Second: order[1]}, nil
}

// GroupByMatch splits a flat event log into matches. Matches appear in
// first-seen order and events keep their input order within each match.
func GroupByMatch(events []Event) []Match {
	index := make(map[string]int)
	var matches []Match
	for _, e := range events {
		i, ok := index[e.MatchID]
		if !ok {
			i = len(matches)
			index[e.MatchID] = i
			matches = append(matches, Match{ID: e.MatchID})
		}
		matches[i].Events = append(matches[i].Events, e)
	}
	return matches
}
