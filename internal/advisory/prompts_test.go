package advisory

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/delega/internal/domain/model"
)

func TestPlanRequest(t *testing.T) {
	Convey("Given a task and a worker pool", t, func() {
		task := &model.TaskDraft{Title: "Billing revamp", Description: "Rework invoices"}
		pool := []*model.Worker{
			{ID: "w1", Name: "Dana", Role: "Backend Developer", Skills: []string{"go"}, ActiveTasks: 1},
			{ID: "w2", Name: "Kim"},
		}

		Convey("When the request is built", func() {
			req, err := PlanRequest(task, pool)
			So(err, ShouldBeNil)

			var payload struct {
				Task struct {
					Priority   string  `json:"priority"`
					TotalHours float64 `json:"totalHours"`
				} `json:"task"`
				Employees []struct {
					ID     string   `json:"id"`
					Skills []string `json:"skills"`
				} `json:"employees"`
			}
			So(json.Unmarshal([]byte(req.User), &payload), ShouldBeNil)

			Convey("Then unset task fields get defaults", func() {
				So(payload.Task.Priority, ShouldEqual, "medium")
				So(payload.Task.TotalHours, ShouldEqual, 40)
			})

			Convey("Then every worker appears with a non-null skill list", func() {
				So(payload.Employees, ShouldHaveLength, 2)
				So(payload.Employees[1].Skills, ShouldNotBeNil)
			})

			Convey("Then the planning exchange runs cold", func() {
				So(req.System, ShouldNotBeEmpty)
				So(req.Temperature, ShouldEqual, float32(PlanTemperature))
			})
		})
	})
}

func TestExtractRequest(t *testing.T) {
	Convey("Given free-form task text", t, func() {
		req := ExtractRequest("set up the staging cluster by friday")

		Convey("Then the text is embedded in the user prompt", func() {
			So(req.User, ShouldContainSubstring, "staging cluster")
			So(req.System, ShouldBeEmpty)
			So(req.Temperature, ShouldEqual, float32(ExtractTemperature))
		})
	})
}
