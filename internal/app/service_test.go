package service

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/delega/internal/domain/model"
)

func newStarted(t *testing.T) (*Service, context.Context) {
	t.Helper()
	ctx := context.Background()
	svc := New(
		WithShardCount(1),
		WithQueueSize(64),
	)
	So(svc.Start(ctx), ShouldBeNil)
	t.Cleanup(func() { svc.Stop(ctx) })
	return svc, ctx
}

func TestRegisterWorker(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc, ctx := newStarted(t)

		Convey("When a worker registers without a role", func() {
			w, err := svc.RegisterWorker(ctx, &model.Worker{
				Name:      "Ada",
				ManagerID: "mgr-1",
				Skills:    []string{"react", "css"},
			})

			Convey("Then a role is derived from the skill tags", func() {
				So(err, ShouldBeNil)
				So(w.ID, ShouldNotBeEmpty)
				So(w.Role, ShouldEqual, "Frontend Developer")
				So(w.Performance.OverallScore, ShouldEqual, 100)
			})

			Convey("And the ranking board already knows them", func() {
				So(err, ShouldBeNil)
				entry, rerr := svc.RankOf(ctx, w.ID)
				So(rerr, ShouldBeNil)
				So(entry.Score, ShouldEqual, 100)
				So(entry.TasksCompleted, ShouldEqual, 0)
			})
		})

		Convey("When the name is missing", func() {
			_, err := svc.RegisterWorker(ctx, &model.Worker{ManagerID: "mgr-1"})

			Convey("Then registration is rejected", func() {
				So(err, ShouldEqual, ErrInvalidWorker)
			})
		})
	})
}

func TestCreateTask(t *testing.T) {
	Convey("Given a service with two registered workers", t, func() {
		svc, ctx := newStarted(t)

		alice, err := svc.RegisterWorker(ctx, &model.Worker{
			Name: "Alice", ManagerID: "mgr-1", Skills: []string{"go", "api"},
		})
		So(err, ShouldBeNil)
		bob, err := svc.RegisterWorker(ctx, &model.Worker{
			Name: "Bob", ManagerID: "mgr-1", Skills: []string{"react"},
		})
		So(err, ShouldBeNil)

		Convey("When a draft is planned without an advisory", func() {
			plan, tasks, err := svc.CreateTask(ctx, "mgr-1", &model.TaskDraft{
				Title:      "Billing revamp",
				TotalHours: 40,
			})

			Convey("Then the local fallback splits it in two", func() {
				So(err, ShouldBeNil)
				So(plan.Advisory, ShouldBeFalse)
				So(tasks, ShouldHaveLength, 2)
				So(tasks[0].Status, ShouldEqual, model.StatusAssigned)
				So(tasks[0].DueDate.After(tasks[0].CreatedAt), ShouldBeTrue)
			})

			Convey("And each assignee's active count grew", func() {
				So(err, ShouldBeNil)
				total := 0
				for _, id := range []string{alice.ID, bob.ID} {
					w, gerr := svc.Worker(ctx, id)
					So(gerr, ShouldBeNil)
					total += w.ActiveTasks
				}
				So(total, ShouldEqual, 2)
			})

			Convey("And the manager's list is sorted urgent first", func() {
				So(err, ShouldBeNil)
				listed, lerr := svc.ManagerTasks(ctx, "mgr-1")
				So(lerr, ShouldBeNil)
				So(listed, ShouldHaveLength, 2)
			})
		})

		Convey("When the draft has no title", func() {
			_, _, err := svc.CreateTask(ctx, "mgr-1", &model.TaskDraft{})

			Convey("Then creation is rejected", func() {
				So(err, ShouldEqual, ErrInvalidDraft)
			})
		})

		Convey("When the manager has no workers", func() {
			_, _, err := svc.CreateTask(ctx, "mgr-empty", &model.TaskDraft{Title: "x"})

			Convey("Then planning fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestTaskLifecycle(t *testing.T) {
	Convey("Given a planned task", t, func() {
		ctx := context.Background()
		svc := New(WithShardCount(1))
		So(svc.Start(ctx), ShouldBeNil)

		w, err := svc.RegisterWorker(ctx, &model.Worker{
			Name: "Ada", ManagerID: "mgr-1", Skills: []string{"go"},
		})
		So(err, ShouldBeNil)
		_, tasks, err := svc.CreateTask(ctx, "mgr-1", &model.TaskDraft{
			Title: "Parser", TotalHours: 8,
		})
		So(err, ShouldBeNil)
		So(len(tasks), ShouldBeGreaterThan, 0)
		task := tasks[0]

		Convey("Only the assignee can start it", func() {
			_, err := svc.StartTask(ctx, task.ID, "someone-else")
			So(err, ShouldEqual, ErrNotAssignee)

			started, err := svc.StartTask(ctx, task.ID, task.AssigneeID)
			So(err, ShouldBeNil)
			So(started.Status, ShouldEqual, model.StatusInProgress)

			svc.Stop(ctx)
		})

		Convey("Completing it folds performance after the pipeline drains", func() {
			dup, err := svc.Complete(ctx, model.CompletionEvent{
				TaskID:      task.ID,
				WorkerID:    task.AssigneeID,
				ActualHours: task.EstimatedHours,
			})
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)

			svc.Stop(ctx)

			done, err := svc.Task(ctx, task.ID)
			So(err, ShouldBeNil)
			So(done.Status, ShouldEqual, model.StatusCompleted)
			So(done.Score, ShouldBeGreaterThanOrEqualTo, 50)

			// The draft split into several tasks; only one is done.
			folded, err := svc.Worker(ctx, w.ID)
			So(err, ShouldBeNil)
			So(folded.Performance.TasksCompleted, ShouldEqual, 1)
			So(folded.ActiveTasks, ShouldEqual, len(tasks)-1)

			entry, err := svc.RankOf(ctx, w.ID)
			So(err, ShouldBeNil)
			So(entry.TasksCompleted, ShouldEqual, 1)
		})

		Convey("Completing every task releases all active slots", func() {
			for _, task := range tasks {
				dup, err := svc.Complete(ctx, model.CompletionEvent{
					TaskID:   task.ID,
					WorkerID: task.AssigneeID,
				})
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			}

			svc.Stop(ctx)

			folded, err := svc.Worker(ctx, w.ID)
			So(err, ShouldBeNil)
			So(folded.Performance.TasksCompleted, ShouldEqual, len(tasks))
			So(folded.ActiveTasks, ShouldEqual, 0)
		})

		Convey("A replayed completion is flagged as a duplicate", func() {
			_, err := svc.Complete(ctx, model.CompletionEvent{TaskID: task.ID})
			So(err, ShouldBeNil)

			dup, err := svc.Complete(ctx, model.CompletionEvent{TaskID: task.ID})
			So(err, ShouldBeNil)
			So(dup, ShouldBeTrue)

			svc.Stop(ctx)
		})

		Convey("A wrong reporter is rejected", func() {
			_, err := svc.Complete(ctx, model.CompletionEvent{
				TaskID:   task.ID,
				WorkerID: "imposter",
			})
			So(err, ShouldEqual, ErrNotAssignee)

			svc.Stop(ctx)
		})
	})
}

func TestDeleteTask(t *testing.T) {
	Convey("Given an assigned task", t, func() {
		svc, ctx := newStarted(t)

		w, err := svc.RegisterWorker(ctx, &model.Worker{
			Name: "Ada", ManagerID: "mgr-1", Skills: []string{"go"},
		})
		So(err, ShouldBeNil)
		_, tasks, err := svc.CreateTask(ctx, "mgr-1", &model.TaskDraft{
			Title: "Cleanup", TotalHours: 8,
		})
		So(err, ShouldBeNil)
		task := tasks[0]

		Convey("Another manager cannot delete it", func() {
			So(svc.DeleteTask(ctx, task.ID, "mgr-2"), ShouldEqual, ErrForbidden)
		})

		Convey("The creator can, and the active slot is released", func() {
			before, err := svc.Worker(ctx, w.ID)
			So(err, ShouldBeNil)

			So(svc.DeleteTask(ctx, task.ID, "mgr-1"), ShouldBeNil)

			after, err := svc.Worker(ctx, w.ID)
			So(err, ShouldBeNil)
			So(after.ActiveTasks, ShouldEqual, before.ActiveTasks-1)

			_, err = svc.Task(ctx, task.ID)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestExtractDraft(t *testing.T) {
	Convey("Given a service without an advisory", t, func() {
		svc, ctx := newStarted(t)

		Convey("Extraction degrades to a generic draft", func() {
			draft := svc.ExtractDraft(ctx, "ship the beta by friday")
			So(draft.Title, ShouldEqual, "New Task")
			So(draft.Description, ShouldEqual, "ship the beta by friday")
			So(draft.Priority, ShouldEqual, model.PriorityMedium)
			So(draft.TotalHours, ShouldEqual, 40)
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc, ctx := newStarted(t)

		_, err := svc.RegisterWorker(ctx, &model.Worker{
			Name: "Ada", ManagerID: "mgr-1",
		})
		So(err, ShouldBeNil)

		Convey("Stats expose pipeline gauges", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["rankedWorkers"], ShouldEqual, 1)
			So(stats["queueLength"], ShouldEqual, 0)
		})
	})
}
