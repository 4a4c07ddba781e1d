package advisory

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractJSON(t *testing.T) {
	Convey("Given raw completion text", t, func() {
		Convey("When the JSON is wrapped in a markdown fence", func() {
			raw := "Here is the plan:\n```json\n{\"a\": 1}\n```\nDone."

			doc, err := ExtractJSON(raw)

			Convey("Then the fenced object is extracted", func() {
				So(err, ShouldBeNil)
				So(string(doc), ShouldEqual, `{"a": 1}`)
			})
		})

		Convey("When prose surrounds a bare object", func() {
			doc, err := ExtractJSON(`Sure! {"x": [1, 2]} hope that helps`)

			So(err, ShouldBeNil)
			So(string(doc), ShouldEqual, `{"x": [1, 2]}`)
		})

		Convey("When no object is present", func() {
			_, err := ExtractJSON("I could not produce a plan.")

			Convey("Then a malformed error carries an excerpt", func() {
				var malformed *MalformedError
				So(errors.As(err, &malformed), ShouldBeTrue)
				So(malformed.Excerpt, ShouldEqual, "I could not produce a plan.")
			})
		})

		Convey("When the candidate braces hold invalid JSON", func() {
			_, err := ExtractJSON(`{"a": }`)

			So(err, ShouldNotBeNil)
		})

		Convey("When the completion is very long", func() {
			_, err := ExtractJSON(strings.Repeat("x", 1000))

			Convey("Then the excerpt is truncated", func() {
				var malformed *MalformedError
				So(errors.As(err, &malformed), ShouldBeTrue)
				So(malformed.Excerpt, ShouldHaveLength, 200)
			})
		})

		Convey("When a multi-byte character straddles the excerpt cutoff", func() {
			_, err := ExtractJSON(strings.Repeat("x", 199) + strings.Repeat("é", 200))

			Convey("Then the excerpt stays valid UTF-8", func() {
				var malformed *MalformedError
				So(errors.As(err, &malformed), ShouldBeTrue)
				So(utf8.ValidString(malformed.Excerpt), ShouldBeTrue)
				So(len(malformed.Excerpt), ShouldEqual, 199)
			})
		})
	})
}

func TestParsePlan(t *testing.T) {
	Convey("Given an assignment completion", t, func() {
		raw := "```json\n" + `{
			"taskComplexity": {"difficultyScore": 7, "reasoning": "multi-domain", "optimalSubtaskCount": 4},
			"inferredSkills": ["node", "react"],
			"assignments": [{
				"subtask": "Backend API Development",
				"primarySkill": "Node.js",
				"skillsUsed": ["node", "api"],
				"estimatedHours": 20,
				"assignedEmployees": [{"employeeId": "w1", "isLearningSkill": false, "updatedSkills": ["node"]}]
			}]
		}` + "\n```"

		Convey("When parsed", func() {
			plan, err := ParsePlan(raw)

			Convey("Then the full structure round-trips", func() {
				So(err, ShouldBeNil)
				So(plan.Valid(), ShouldBeTrue)
				So(plan.TaskComplexity.DifficultyScore, ShouldEqual, 7)
				So(plan.InferredSkills, ShouldResemble, []string{"node", "react"})
				So(plan.Assignments, ShouldHaveLength, 1)
				So(plan.Assignments[0].Assignees[0].WorkerID, ShouldEqual, "w1")
			})
		})

		Convey("When the difficulty score is missing", func() {
			plan, err := ParsePlan(`{"inferredSkills": [], "assignments": [{"subtask": "x"}]}`)

			Convey("Then the plan parses but is not valid", func() {
				So(err, ShouldBeNil)
				So(plan.Valid(), ShouldBeFalse)
			})
		})

		Convey("When inferred skills are absent", func() {
			plan, err := ParsePlan(`{"taskComplexity": {"difficultyScore": 5}, "assignments": [{"subtask": "x"}]}`)

			So(err, ShouldBeNil)
			So(plan.Valid(), ShouldBeFalse)
		})
	})
}

func TestParseExtraction(t *testing.T) {
	Convey("Given an extraction completion", t, func() {
		Convey("When every field is present", func() {
			out, err := ParseExtraction(`{
				"title": "Build payment API",
				"description": "REST API for card payments",
				"skills": ["node", "api"],
				"priority": "high",
				"totalHours": 32
			}`, "build me a payment api")

			So(err, ShouldBeNil)
			So(out.Title, ShouldEqual, "Build payment API")
			So(out.Priority, ShouldEqual, "high")
			So(out.TotalHours, ShouldEqual, 32)
		})

		Convey("When fields are missing or bogus", func() {
			out, err := ParseExtraction(`{"priority": "urgent"}`, "do the thing")

			Convey("Then defaults fill the gaps", func() {
				So(err, ShouldBeNil)
				So(out.Title, ShouldEqual, "New Task")
				So(out.Description, ShouldEqual, "do the thing")
				So(out.Priority, ShouldEqual, "medium")
				So(out.TotalHours, ShouldEqual, 40)
			})
		})

		Convey("When the completion is not JSON at all", func() {
			_, err := ParseExtraction("no json here", "source")

			So(err, ShouldNotBeNil)
		})
	})
}
