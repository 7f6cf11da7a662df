package main

import (
	"bytes"
	"testing"

	"github.com/okian/ppda/internal/adapters/source"
	"github.com/okian/ppda/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestWrite(t *testing.T) {
	convey.Convey("Given generator options for three matches", t, func() {
		opts := options{events: 40, matches: 3, seed: 10, home: 5, away: 6, prefix: "demo"}

		convey.Convey("When the matches are written", func() {
			var buf bytes.Buffer
			n, err := write(&buf, opts)

			convey.Convey("Then the output reads back as three matches", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 120)

				events, err := source.ReadJSONLines(&buf)
				convey.So(err, convey.ShouldBeNil)
				matches := model.GroupByMatch(events)
				convey.So(matches, convey.ShouldHaveLength, 3)
				convey.So(matches[0].ID, convey.ShouldEqual, "demo-10")
				convey.So(matches[2].ID, convey.ShouldEqual, "demo-12")

				teams, err := model.TeamsOf(matches[1].Events)
				convey.So(err, convey.ShouldBeNil)
				convey.So(teams, convey.ShouldResemble, model.TeamPair{First: 5, Second: 6})
			})
		})

		convey.Convey("When the teams are the same", func() {
			opts.away = opts.home
			_, err := write(&bytes.Buffer{}, opts)

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When no events are requested", func() {
			opts.events = 0
			_, err := write(&bytes.Buffer{}, opts)

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
