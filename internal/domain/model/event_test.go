package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/ppda/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTagSet(t *testing.T) {
	convey.Convey("Given a tag set", t, func() {
		tags := model.NewTagSet(model.TagWon, model.TagInterception, model.TagWon)

		convey.Convey("Then duplicates collapse", func() {
			convey.So(tags.Len(), convey.ShouldEqual, 2)
		})

		convey.Convey("Then membership is exact", func() {
			convey.So(tags.Has(model.TagWon), convey.ShouldBeTrue)
			convey.So(tags.Has("won"), convey.ShouldBeFalse)
			convey.So(tags.Has(model.TagGoal), convey.ShouldBeFalse)
		})

		convey.Convey("Then sorted output is stable", func() {
			convey.So(tags.Sorted(), convey.ShouldResemble, []string{model.TagInterception, model.TagWon})
		})
	})

	convey.Convey("Given an event without tags", t, func() {
		event := model.Event{TeamID: 1, EventType: model.EventPass}

		convey.Convey("Then tag lookups are false instead of panicking", func() {
			convey.So(event.HasTag(model.TagGoal), convey.ShouldBeFalse)
		})
	})
}

func TestTeamsOf(t *testing.T) {
	convey.Convey("Given event logs with different team counts", t, func() {
		convey.Convey("When the log has exactly two teams", func() {
			pair, err := model.TeamsOf([]model.Event{{TeamID: 7}, {TeamID: 3}, {TeamID: 7}})

			convey.Convey("Then teams come back in first-seen order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pair, convey.ShouldResemble, model.TeamPair{First: 7, Second: 3})
				opp, ok := pair.Opponent(3)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(opp, convey.ShouldEqual, 7)
				_, ok = pair.Opponent(9)
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(pair.Contains(7), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the log has three teams", func() {
			_, err := model.TeamsOf([]model.Event{{TeamID: 1}, {TeamID: 2}, {TeamID: 3}})

			convey.Convey("Then it fails with a precondition violation", func() {
				convey.So(errors.Is(err, model.ErrPreconditionViolation), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "found 3")
			})
		})

		convey.Convey("When the log has a single team", func() {
			_, err := model.TeamsOf([]model.Event{{TeamID: 1}, {TeamID: 1}})

			convey.Convey("Then it fails with a precondition violation", func() {
				convey.So(errors.Is(err, model.ErrPreconditionViolation), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the log is empty", func() {
			_, err := model.TeamsOf(nil)

			convey.Convey("Then both sentinels match", func() {
				convey.So(errors.Is(err, model.ErrPreconditionViolation), convey.ShouldBeTrue)
				convey.So(errors.Is(err, model.ErrEmptyMatch), convey.ShouldBeTrue)
			})
		})
	})
}

func TestGroupByMatch(t *testing.T) {
	convey.Convey("Given a flat log spanning two matches", t, func() {
		events := []model.Event{
			{MatchID: "b", EventID: "1"},
			{MatchID: "a", EventID: "2"},
			{MatchID: "b", EventID: "3"},
			{MatchID: "a", EventID: "4"},
		}

		matches := model.GroupByMatch(events)

		convey.Convey("Then matches keep first-seen order and events keep input order", func() {
			convey.So(len(matches), convey.ShouldEqual, 2)
			convey.So(matches[0].ID, convey.ShouldEqual, "b")
			convey.So(matches[0].Events[0].EventID, convey.ShouldEqual, "1")
			convey.So(matches[0].Events[1].EventID, convey.ShouldEqual, "3")
			convey.So(matches[1].ID, convey.ShouldEqual, "a")
			convey.So(matches[1].Events[1].EventID, convey.ShouldEqual, "4")
		})
	})
}
