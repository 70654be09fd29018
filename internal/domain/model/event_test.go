package model_test

import (
	"testing"

	model "github.com/okian/tutorbot/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestModes(t *testing.T) {
	convey.Convey("Given the session modes", t, func() {
		convey.Convey("When parsing known names", func() {
			for _, m := range model.Modes() {
				got, ok := model.ParseMode(string(m))
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got, convey.ShouldEqual, m)
			}
		})

		convey.Convey("When parsing unknown names", func() {
			_, ok := model.ParseMode("karaoke")
			convey.So(ok, convey.ShouldBeFalse)
			convey.So(model.Mode("").Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("When the caller mutates the returned slice", func() {
			ms := model.Modes()
			ms[0] = "broken"
			convey.So(model.Modes()[0], convey.ShouldEqual, model.ModeGeneral)
		})

		convey.Convey("The six modes are all present", func() {
			convey.So(model.Modes(), convey.ShouldHaveLength, 6)
		})
	})
}

func TestUserIDAndMenu(t *testing.T) {
	convey.Convey("Given a user id", t, func() {
		convey.So(model.UserID(12345).String(), convey.ShouldEqual, "12345")
	})

	convey.Convey("Given a menu builder", t, func() {
		m := &model.Menu{}
		m.Row(model.Button{Text: "A", Data: "a"}).Row(model.Button{Text: "B", Data: "b"}, model.Button{Text: "C", Data: "c"})

		convey.So(m.Rows, convey.ShouldHaveLength, 2)
		convey.So(m.Rows[1], convey.ShouldHaveLength, 2)
		convey.So(m.Rows[1][1].Data, convey.ShouldEqual, "c")
	})
}
