package gamestate_test

import (
	"errors"
	"testing"

	"github.com/okian/ppda/internal/domain/gamestate"
	"github.com/okian/ppda/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	teamA = 1
	teamB = 2
)

func goal(team int) model.Event {
	return model.Event{TeamID: team, EventType: model.EventShot, Tags: model.NewTagSet(model.TagGoal)}
}

func ownGoal(team int) model.Event {
	return model.Event{TeamID: team, EventType: model.EventOwnGoal}
}

func freeKickGoal(team int) model.Event {
	return model.Event{
		TeamID:       team,
		EventType:    model.EventFreeKick,
		SubEventType: model.SubFreeKickShot,
		Tags:         model.NewTagSet(model.TagGoal),
	}
}

func touch(team int) model.Event {
	return model.Event{TeamID: team, EventType: model.EventPass}
}

func TestTrack(t *testing.T) {
	Convey("Given team A scores with the second event of three", t, func() {
		events := []model.Event{touch(teamB), goal(teamA), touch(teamB)}

		seq := gamestate.Track(events, teamA)

		Convey("Then labels reflect the score before each event's own effect", func() {
			So(seq.Labels, ShouldResemble, []gamestate.Label{gamestate.Drawing, gamestate.Drawing, gamestate.Winning})
			So(seq.Final, ShouldResemble, gamestate.Score{Mine: 1, Opponent: 0})
		})

		Convey("Then team B sees the mirror image", func() {
			other := gamestate.Track(events, teamB)
			So(other.Labels, ShouldResemble, []gamestate.Label{gamestate.Drawing, gamestate.Drawing, gamestate.Losing})
			So(other.Final, ShouldResemble, gamestate.Score{Mine: 0, Opponent: 1})
		})
	})

	Convey("Given team A scores an own goal first", t, func() {
		events := []model.Event{ownGoal(teamA), touch(teamA)}

		Convey("Then team B is credited", func() {
			So(gamestate.Track(events, teamA).Labels[1], ShouldEqual, gamestate.Losing)
			So(gamestate.Track(events, teamB).Labels[1], ShouldEqual, gamestate.Winning)
			So(gamestate.Track(events, teamB).Final, ShouldResemble, gamestate.Score{Mine: 1})
		})
	})

	Convey("Given a free-kick goal", t, func() {
		events := []model.Event{freeKickGoal(teamB), touch(teamA)}

		Convey("Then the scoring team is credited", func() {
			So(gamestate.Track(events, teamA).Labels, ShouldResemble, []gamestate.Label{gamestate.Drawing, gamestate.Losing})
		})
	})

	Convey("Given near-miss scoring events", t, func() {
		events := []model.Event{
			{TeamID: teamA, EventType: model.EventShot},
			{TeamID: teamA, EventType: model.EventFreeKick, Tags: model.NewTagSet(model.TagGoal)},
			{TeamID: teamA, EventType: model.EventPass, Tags: model.NewTagSet(model.TagGoal)},
			touch(teamB),
		}

		Convey("Then none of them change the score", func() {
			seq := gamestate.Track(events, teamA)
			So(seq.Final, ShouldResemble, gamestate.Score{})
			for _, l := range seq.Labels {
				So(l, ShouldEqual, gamestate.Drawing)
			}
		})
	})

	Convey("Given an empty event list", t, func() {
		Convey("Then the sequence is empty and drawn", func() {
			seq := gamestate.Track(nil, teamA)
			So(len(seq.Labels), ShouldEqual, 0)
			So(seq.Final.Label(), ShouldEqual, gamestate.Drawing)
		})
	})
}

func TestGoalKinds(t *testing.T) {
	Convey("Given an event matching more than one scoring rule", t, func() {
		// Not produced by current data, but each rule is checked on its own.
		e := model.Event{
			TeamID:       teamA,
			EventType:    model.EventFreeKick,
			SubEventType: model.SubFreeKickShot,
			Tags:         model.NewTagSet(model.TagGoal),
		}

		Convey("Then only the free-kick rule fires", func() {
			So(gamestate.GoalKinds(e), ShouldResemble, []gamestate.GoalKind{gamestate.GoalFreeKick})
			So(gamestate.DeltaOf(e, teamA), ShouldResemble, gamestate.Delta{Mine: 1})
		})
	})

	Convey("Given an own goal seen from the other team", t, func() {
		d := gamestate.DeltaOf(ownGoal(teamB), teamA)

		Convey("Then it counts for the observer", func() {
			So(d, ShouldResemble, gamestate.Delta{Mine: 1})
			So(d.IsZero(), ShouldBeFalse)
		})
	})
}

func TestReplay(t *testing.T) {
	Convey("Given a match with several goals", t, func() {
		events := []model.Event{
			touch(teamA), goal(teamA), touch(teamB), ownGoal(teamA),
			freeKickGoal(teamB), touch(teamA), goal(teamA), goal(teamA), touch(teamB),
		}

		Convey("Then the prefix replay of deltas agrees with the fold", func() {
			for _, team := range []int{teamA, teamB} {
				So(gamestate.Replay(team, gamestate.Deltas(events, team)), ShouldResemble, gamestate.Track(events, team))
			}
		})

		Convey("Then the final score is 3-2 for team A", func() {
			So(gamestate.Track(events, teamA).Final, ShouldResemble, gamestate.Score{Mine: 3, Opponent: 2})
		})
	})
}

func TestTrackMatch(t *testing.T) {
	Convey("Given a two-team match", t, func() {
		events := []model.Event{touch(teamA), touch(teamB)}

		Convey("When tracking a team that does not play", func() {
			_, err := gamestate.TrackMatch(events, 99)

			Convey("Then it returns ErrUnknownTeam", func() {
				So(errors.Is(err, gamestate.ErrUnknownTeam), ShouldBeTrue)
			})
		})

		Convey("When tracking a participant", func() {
			seq, err := gamestate.TrackMatch(events, teamB)

			Convey("Then it succeeds", func() {
				So(err, ShouldBeNil)
				So(seq.TeamID, ShouldEqual, teamB)
				So(len(seq.Labels), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a three-team log", t, func() {
		_, err := gamestate.TrackMatch([]model.Event{touch(1), touch(2), touch(3)}, 1)

		Convey("Then the precondition fails", func() {
			So(errors.Is(err, model.ErrPreconditionViolation), ShouldBeTrue)
		})
	})
}
