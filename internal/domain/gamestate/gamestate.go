// Package gamestate replays a match to label each event with the observing
// team's score state at the moment it happened.
package gamestate

import (
	"fmt"

	"github.com/okian/ppda/internal/domain/model"
)

// Label is a team's score-relative standing.
type Label string

// Game state labels.
const (
	Winning Label = "winning"
	Losing  Label = "losing"
	Drawing Label = "drawing"
)

// GoalKind names the way an event changed the score.
type GoalKind string

// Goal kinds.
const (
	GoalShot     GoalKind = "shot"
	GoalFreeKick GoalKind = "free_kick"
	GoalOwn      GoalKind = "own_goal"
)

// Score is the fold accumulator, seen from one team.
type Score struct {
	Mine     int `json:"mine"`
	Opponent int `json:"opponent"`
}

// Label derives the standing from the score.
func (s Score) Label() Label {
	switch {
	case s.Mine > s.Opponent:
		return Winning
	case s.Mine < s.Opponent:
		return Losing
	default:
		return Drawing
	}
}

// Add applies a delta.
func (s Score) Add(d Delta) Score {
	return Score{Mine: s.Mine + d.Mine, Opponent: s.Opponent + d.Opponent}
}

// Delta is the score effect of a single event.
type Delta struct {
	Mine     int
	Opponent int
}

// IsZero reports whether the event left the score unchanged.
func (d Delta) IsZero() bool { return d.Mine == 0 && d.Opponent == 0 }

// Sequence is one label per event plus the final score.
type Sequence struct {
	TeamID int     `json:"team_id"`
	Labels []Label `json:"labels"`
	Final  Score   `json:"final"`
}

// GoalKinds returns every scoring rule the event satisfies. The rules are
// checked independently so an overlapping taxonomy counts each match.
func GoalKinds(e model.Event) []GoalKind {
	var kinds []GoalKind
	if e.EventType == model.EventShot && e.HasTag(model.TagGoal) {
		kinds = append(kinds, GoalShot)
	}
	if e.EventType == model.EventOwnGoal {
		kinds = append(kinds, GoalOwn)
	}
	if e.EventType == model.EventFreeKick && e.SubEventType == model.SubFreeKickShot && e.HasTag(model.TagGoal) {
		kinds = append(kinds, GoalFreeKick)
	}
	return kinds
}

// DeltaOf computes an event's score effect from team's point of view.
// Own goals credit the side opposite the acting team.
func DeltaOf(e model.Event, team int) Delta {
	var d Delta
	mine := e.TeamID == team
	for _, k := range GoalKinds(e) {
		if (k == GoalOwn) == mine {
			d.Opponent++
		} else {
			d.Mine++
		}
	}
	return d
}

// Step labels e with the score before its own effect and returns the next score.
func Step(s Score, e model.Event, team int) (Label, Score) {
	return s.Label(), s.Add(DeltaOf(e, team))
}

// Track folds events left to right from team's point of view.
func Track(events []model.Event, team int) Sequence {
	seq := Sequence{TeamID: team, Labels: make([]Label, len(events))}
	var s Score
	for i, e := range events {
		seq.Labels[i], s = Step(s, e, team)
	}
	seq.Final = s
	return seq
}

// TrackMatch validates the match has two teams including team, then tracks it.
func TrackMatch(events []model.Event, team int) (Sequence, error) {
	teams, err := model.TeamsOf(events)
	if err != nil {
		return Sequence{}, err
	}
	if !teams.Contains(team) {
		return Sequence{}, fmt.Errorf("%w: %d not in %v", ErrUnknownTeam, team, teams)
	}
	return Track(events, team), nil
}

// Deltas computes each event's score effect independently of the others.
func Deltas(events []model.Event, team int) []Delta {
	out := make([]Delta, len(events))
	for i, e := range events {
		out[i] = DeltaOf(e, team)
	}
	return out
}

// Replay rebuilds the label sequence from per-event deltas with an exclusive
// prefix sum. It agrees with Track for the same events.
func Replay(team int, deltas []Delta) Sequence {
	seq := Sequence{TeamID: team, Labels: make([]Label, len(deltas))}
	var s Score
	for i, d := range deltas {
		seq.Labels[i] = s.Label()
		s = s.Add(d)
	}
	seq.Final = s
	return seq
}
