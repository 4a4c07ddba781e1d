package assign

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/delega/internal/advisory"
	"github.com/okian/delega/internal/domain/model"
)

type stubAdvisory struct {
	raw string
	err error
}

func (s *stubAdvisory) Complete(ctx context.Context, req advisory.Request) (string, error) {
	return s.raw, s.err
}

func pool(workers ...*model.Worker) []*model.Worker { return workers }

func poolWorker(id, name string, active int, skill ...string) *model.Worker {
	return &model.Worker{
		ID:          id,
		Name:        name,
		ActiveTasks: active,
		Skills:      skill,
		Performance: model.NewPerformanceState(),
	}
}

func TestAssignFallback(t *testing.T) {
	Convey("Given an engine whose advisory is unavailable", t, func() {
		ctx := context.Background()
		e := NewEngine(&stubAdvisory{err: errors.New("connection refused")})

		draft := &model.TaskDraft{
			Title:          "Billing revamp",
			RequiredSkills: []string{"go"},
			TotalHours:     40,
		}

		Convey("When the pool has several workers", func() {
			p := pool(
				poolWorker("w1", "Ari", 2),
				poolWorker("w2", "Kim", 0),
				poolWorker("w3", "Sol", 1),
			)

			plan, err := e.Assign(ctx, draft, p)
			So(err, ShouldBeNil)

			Convey("Then the draft splits 70/30 across the two least loaded", func() {
				So(plan.Advisory, ShouldBeFalse)
				So(plan.Subtasks, ShouldHaveLength, 2)

				main := plan.Subtasks[0]
				So(main.Title, ShouldEqual, "Billing revamp - Implementation")
				So(main.WorkerID, ShouldEqual, "w2")
				So(main.EstimatedHours, ShouldEqual, 28)
				So(main.DaysNeeded, ShouldEqual, 4)
				So(main.Skills, ShouldResemble, []string{"go"})

				testing := plan.Subtasks[1]
				So(testing.Title, ShouldEqual, "Billing revamp - Testing & Review")
				So(testing.WorkerID, ShouldEqual, "w3")
				So(testing.EstimatedHours, ShouldEqual, 12)
				So(testing.DaysNeeded, ShouldEqual, 2)
				So(testing.Skills, ShouldResemble, []string{"testing"})
			})
		})

		Convey("When only one worker exists", func() {
			plan, err := e.Assign(ctx, draft, pool(poolWorker("w1", "Ari", 0)))
			So(err, ShouldBeNil)

			Convey("Then both halves land on that worker", func() {
				So(plan.Subtasks, ShouldHaveLength, 2)
				So(plan.Subtasks[0].WorkerID, ShouldEqual, "w1")
				So(plan.Subtasks[1].WorkerID, ShouldEqual, "w1")
			})
		})

		Convey("When the testing share would exceed its cap", func() {
			big := &model.TaskDraft{Title: "Rebuild", TotalHours: 100}
			plan, err := e.Assign(ctx, big, pool(poolWorker("w1", "Ari", 0)))
			So(err, ShouldBeNil)

			Convey("Then hours clamp to the per-branch bounds", func() {
				So(plan.Subtasks[0].EstimatedHours, ShouldEqual, 70)
				So(plan.Subtasks[1].EstimatedHours, ShouldEqual, 20)
			})
		})

		Convey("When the pool is empty", func() {
			_, err := e.Assign(ctx, draft, nil)
			So(err, ShouldEqual, ErrNoWorkers)
		})
	})
}

func TestAssignAdvisoryPlan(t *testing.T) {
	Convey("Given an engine with a structurally valid advisory plan", t, func() {
		ctx := context.Background()
		raw := "```json\n" + `{
			"taskComplexity": {"difficultyScore": 6, "reasoning": "two domains", "optimalSubtaskCount": 2},
			"inferredSkills": ["node", "react"],
			"assignments": [
				{
					"subtask": "Backend API Development",
					"primarySkill": "Node.js",
					"skillsUsed": ["node", "api"],
					"estimatedHours": 10,
					"assignedEmployees": [{"employeeId": "w1", "isLearningSkill": false, "updatedSkills": ["node"]}]
				},
				{
					"subtask": "Frontend Screens",
					"primarySkill": "React",
					"skillsUsed": ["react"],
					"estimatedHours": 10,
					"assignedEmployees": [{"employeeId": "w2", "isLearningSkill": true, "updatedSkills": ["react"]}]
				}
			]
		}` + "\n```"
		e := NewEngine(&stubAdvisory{raw: raw})

		draft := &model.TaskDraft{Title: "Portal", Priority: model.PriorityMedium, TotalHours: 20}
		p := pool(
			poolWorker("w1", "Ari", 0, "node"),
			poolWorker("w2", "Kim", 0, "css"),
		)

		Convey("When the draft is planned", func() {
			plan, err := e.Assign(ctx, draft, p)
			So(err, ShouldBeNil)

			Convey("Then both placements materialize with qualified titles", func() {
				So(plan.Advisory, ShouldBeTrue)
				So(plan.Complexity, ShouldEqual, 6)
				So(plan.InferredSkills, ShouldResemble, []string{"node", "react"})
				So(plan.Subtasks, ShouldHaveLength, 2)
				So(plan.Subtasks[0].Title, ShouldEqual, "Portal - Backend API Development")
				So(plan.Subtasks[0].Reason, ShouldEqual, "Node.js - node, api")
			})

			Convey("Then learning placements get inflated hours", func() {
				learning := plan.Subtasks[1]
				So(learning.IsLearning, ShouldBeTrue)
				So(learning.EstimatedHours, ShouldEqual, 14)
				So(learning.DaysNeeded, ShouldEqual, 2)
				So(learning.Reason, ShouldEndWith, "(Learning)")
			})
		})

		Convey("When an assignment names an unknown worker", func() {
			raw := `{
				"taskComplexity": {"difficultyScore": 3, "optimalSubtaskCount": 1},
				"inferredSkills": [],
				"assignments": [{
					"subtask": "Implementation",
					"estimatedHours": 8,
					"assignedEmployees": [{"employeeId": "ghost"}]
				}]
			}`
			e := NewEngine(&stubAdvisory{raw: raw})

			plan, err := e.Assign(ctx, draft, p)
			So(err, ShouldBeNil)

			Convey("Then the plan degrades to the fallback split", func() {
				So(plan.Advisory, ShouldBeFalse)
				So(plan.Subtasks, ShouldHaveLength, 2)
			})
		})

		Convey("When an assignment has no placement at all", func() {
			raw := `{
				"taskComplexity": {"difficultyScore": 3, "optimalSubtaskCount": 1},
				"inferredSkills": ["node"],
				"assignments": [{
					"subtask": "Implementation",
					"primarySkill": "Backend",
					"skillsUsed": ["node"],
					"estimatedHours": 8
				}]
			}`
			e := NewEngine(&stubAdvisory{raw: raw})

			plan, err := e.Assign(ctx, draft, p)
			So(err, ShouldBeNil)

			Convey("Then the selector places the skilled worker", func() {
				So(plan.Advisory, ShouldBeTrue)
				So(plan.Subtasks, ShouldHaveLength, 1)
				So(plan.Subtasks[0].WorkerID, ShouldEqual, "w1")
				So(plan.Subtasks[0].IsLearning, ShouldBeFalse)
			})
		})
	})
}

func TestAssignEnforcedSplit(t *testing.T) {
	Convey("Given an advisory answer that fails validation", t, func() {
		ctx := context.Background()

		Convey("When inferred skills are missing from a difficulty-5 plan", func() {
			raw := `{
				"taskComplexity": {"difficultyScore": 5, "optimalSubtaskCount": 2},
				"assignments": [{"subtask": "whatever", "estimatedHours": 40}]
			}`
			e := NewEngine(&stubAdvisory{raw: raw})

			draft := &model.TaskDraft{Title: "Migration", TotalHours: 40}
			p := pool(
				poolWorker("w1", "Ari", 0, "api"),
				poolWorker("w2", "Kim", 0, "react"),
			)

			plan, err := e.Assign(ctx, draft, p)
			So(err, ShouldBeNil)

			Convey("Then two phase-template subtasks split the hours", func() {
				So(plan.Subtasks, ShouldHaveLength, 2)
				So(plan.Subtasks[0].Title, ShouldEqual, "Migration - Core Development")
				So(plan.Subtasks[1].Title, ShouldEqual, "Migration - UI & Testing")
				So(plan.Subtasks[0].EstimatedHours+plan.Subtasks[1].EstimatedHours, ShouldEqual, 40)
			})

			Convey("Then template skills drive the placement", func() {
				So(plan.Subtasks[0].WorkerID, ShouldEqual, "w1")
				So(plan.Subtasks[1].WorkerID, ShouldEqual, "w2")
			})
		})

		Convey("When the completion is not parseable at all", func() {
			e := NewEngine(&stubAdvisory{raw: "sorry, I cannot help with that"})

			plan, err := e.Assign(ctx, &model.TaskDraft{Title: "X", TotalHours: 40},
				pool(poolWorker("w1", "Ari", 0)))
			So(err, ShouldBeNil)

			Convey("Then the fallback split is used", func() {
				So(plan.Advisory, ShouldBeFalse)
				So(plan.Subtasks, ShouldHaveLength, 2)
			})
		})
	})
}
