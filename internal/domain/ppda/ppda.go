// Package ppda computes Passes Per Defensive Action for both teams of a match.
package ppda

import (
	"github.com/okian/ppda/internal/domain/defensive"
	"github.com/okian/ppda/internal/domain/model"
	"github.com/okian/ppda/internal/domain/pitch"
)

// Breakdown is one team's PPDA together with the counts that produced it.
type Breakdown struct {
	TeamID     int `json:"team_id"`
	OpponentID int `json:"opponent_id"`
	// OpponentPasses counts opponent passes and free kicks before the build-up line.
	OpponentPasses int `json:"opponent_passes"`
	// DefensiveActions counts the team's defensive actions past the press line.
	DefensiveActions int   `json:"defensive_actions"`
	Ratio            Ratio `json:"ppda"`
}

// Result maps each team of a match to its breakdown.
type Result struct {
	Teams  model.TeamPair
	ByTeam map[int]Breakdown
}

// Ratio returns the PPDA of team, undefined when the team is not in the result.
func (r Result) Ratio(team int) Ratio {
	return r.ByTeam[team].Ratio
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithGeometry sets the pitch geometry used for zone gating.
func WithGeometry(g pitch.Geometry) Option {
	return func(c *Calculator) { c.geometry = g }
}

// WithClassifier sets the defensive action classifier.
func WithClassifier(cl defensive.Classifier) Option {
	return func(c *Calculator) {
		if cl != nil {
			c.classifier = cl
		}
	}
}

// Calculator aggregates passes and defensive actions into PPDA.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	geometry   pitch.Geometry
	classifier defensive.Classifier
}

// NewCalculator creates a Calculator with the default geometry and rules.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		geometry:   pitch.Default(),
		classifier: defensive.NewRuleClassifier(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate computes PPDA for both teams of a match. The log must contain
// exactly two teams.
func (c *Calculator) Calculate(events []model.Event) (Result, error) {
	teams, err := model.TeamsOf(events)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Teams: teams,
		ByTeam: map[int]Breakdown{
			teams.First:  c.For(events, teams.First, teams.Second),
			teams.Second: c.For(events, teams.Second, teams.First),
		},
	}, nil
}

// For computes the PPDA of myTeam against opponent without team validation.
func (c *Calculator) For(events []model.Event, myTeam, opponent int) Breakdown {
	b := Breakdown{TeamID: myTeam, OpponentID: opponent}
	for _, e := range events {
		switch e.TeamID {
		case opponent:
			if isBuildUpPass(e) && c.geometry.InBuildUpZone(e.StartX) {
				b.OpponentPasses++
			}
		case myTeam:
			if c.geometry.InPressingZone(e.StartX) && c.classifier.IsDefensiveAction(e) {
				b.DefensiveActions++
			}
		}
	}
	if b.DefensiveActions == 0 {
		b.Ratio = Undefined()
	} else {
		b.Ratio = Defined(float64(b.OpponentPasses) / float64(b.DefensiveActions))
	}
	return b
}

func isBuildUpPass(e model.Event) bool {
	return e.EventType == model.EventPass || e.EventType == model.EventFreeKick
}
