// Package synth generates plausible synthetic match event logs.
package synth

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/okian/ppda/internal/domain/model"
	"github.com/okian/ppda/internal/domain/pitch"
)

// Default generator settings.
const (
	defaultEvents = 1600
	defaultSeed   = 42
	defaultHome   = 1
	defaultAway   = 2
)

// Event mix, as cumulative probabilities over a uniform draw.
const (
	pPass         = 0.55
	pDuel         = 0.75
	pFoul         = 0.80
	pInterception = 0.85
	pSliding      = 0.88
	pShot         = 0.96
	pFreeKick     = 0.997
	// remainder: own goal
)

const (
	duelWonRate       = 0.5
	shotGoalRate      = 0.12
	freeKickShotRate  = 0.1
	freeKickGoalRate  = 0.1
	possessionRunMean = 6
)

var fouls = []string{model.SubFoul, model.SubHandFoul, model.SubLateCardFoul, model.SubViolentFoul}

// Option applies a configuration option to the generator.
type Option func(*generator)

// WithSeed makes output reproducible for a given seed.
func WithSeed(seed int64) Option {
	return func(g *generator) { g.seed = seed }
}

// WithEvents sets the number of events.
func WithEvents(n int) Option {
	return func(g *generator) {
		if n > 0 {
			g.events = n
		}
	}
}

// WithTeams sets the two team ids.
func WithTeams(home, away int) Option {
	return func(g *generator) {
		if home != away {
			g.home, g.away = home, away
		}
	}
}

// WithMatchID sets the match id; by default it is derived from the seed.
func WithMatchID(id string) Option {
	return func(g *generator) { g.matchID = id }
}

// WithGeometry sets the pitch the coordinates are drawn on.
func WithGeometry(p pitch.Geometry) Option {
	return func(g *generator) { g.geo = p }
}

type generator struct {
	seed    int64
	events  int
	home    int
	away    int
	matchID string
	geo     pitch.Geometry
	rng     *rand.Rand
}

// Generate builds one match. The first event belongs to the home team, so
// both teams are present whenever more than one possession occurs.
func Generate(opts ...Option) model.Match {
	g := &generator{
		seed:   defaultSeed,
		events: defaultEvents,
		home:   defaultHome,
		away:   defaultAway,
		geo:    pitch.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.matchID == "" {
		g.matchID = fmt.Sprintf("synth-%d", g.seed)
	}
	g.rng = rand.New(rand.NewSource(g.seed)) //nolint:gosec // reproducible fixtures

	m := model.Match{ID: g.matchID, Events: make([]model.Event, 0, g.events)}
	team := g.home
	for i := 0; i < g.events; i++ {
		// Alternate possession in short runs, and always hand over after event 0.
		if i == 1 || (i > 1 && g.rng.Intn(possessionRunMean) == 0) {
			team = g.other(team)
		}
		m.Events = append(m.Events, g.event(i, team))
	}
	return m
}

func (g *generator) other(team int) int {
	if team == g.home {
		return g.away
	}
	return g.home
}

func (g *generator) event(i, team int) model.Event {
	e := model.Event{
		MatchID: g.matchID,
		EventID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", g.matchID, i))).String(),
		TeamID:  team,
		StartX:  g.rng.Float64() * g.geo.FieldLength,
		StartY:  g.rng.Float64() * g.geo.FieldWidth,
		Tags:    model.NewTagSet(),
	}
	switch r := g.rng.Float64(); {
	case r < pPass:
		e.EventType, e.SubEventType = model.EventPass, "Simple pass"
	case r < pDuel:
		e.EventType, e.SubEventType = model.EventDuel, model.SubGroundDefendingDuel
		if g.rng.Float64() < duelWonRate {
			e.Tags = model.NewTagSet(model.TagWon)
		} else {
			e.Tags = model.NewTagSet("Lost")
		}
	case r < pFoul:
		e.EventType, e.SubEventType = model.EventFoul, fouls[g.rng.Intn(len(fouls))]
	case r < pInterception:
		e.EventType, e.SubEventType = model.EventPass, "Simple pass"
		e.Tags = model.NewTagSet(model.TagInterception)
	case r < pSliding:
		e.EventType, e.SubEventType = model.EventDuel, model.SubGroundDefendingDuel
		e.Tags = model.NewTagSet(model.TagSlidingTackle)
	case r < pShot:
		e.EventType, e.SubEventType = model.EventShot, model.EventShot
		if g.rng.Float64() < shotGoalRate {
			e.Tags = model.NewTagSet(model.TagGoal)
		}
	case r < pFreeKick:
		e.EventType, e.SubEventType = model.EventFreeKick, "Free Kick"
		if g.rng.Float64() < freeKickShotRate {
			e.SubEventType = model.SubFreeKickShot
			if g.rng.Float64() < freeKickGoalRate {
				e.Tags = model.NewTagSet(model.TagGoal)
			}
		}
	default:
		e.EventType = model.EventOwnGoal
	}
	return e
}
