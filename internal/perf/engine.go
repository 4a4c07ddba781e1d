// Package perf folds completion events into worker performance records:
// score the finished subtask, roll it into the worker's expertise and
// history, then refresh the ranking. The pool guarantees events for one
// worker arrive here sequentially, so a fold never races itself.
package perf

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/delega/internal/adapters/repository"
	"github.com/okian/delega/internal/domain/expertise"
	"github.com/okian/delega/internal/domain/model"
	"github.com/okian/delega/internal/domain/scoring"
	"github.com/okian/delega/pkg/logger"
	"github.com/okian/delega/pkg/metrics"
)

// Engine processes completion events.
type Engine struct {
	store  repository.Store
	rank   repository.Ranking
	scorer scoring.Scorer
	log    logger.Logger
	now    func() time.Time
}

// NewEngine creates a fold engine.
func NewEngine(store repository.Store, rank repository.Ranking, scorer scoring.Scorer, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		rank:   rank,
		scorer: scorer,
		log:    logger.Get().Named("perf"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process folds one completion event. Store errors propagate so the pool
// can log them; the event itself is never retried.
func (e *Engine) Process(ctx context.Context, ev model.CompletionEvent) error {
	start := e.now()
	defer func() {
		metrics.RecordFoldLatency(float64(time.Since(start).Milliseconds()))
	}()

	task, err := e.store.GetTask(ctx, ev.TaskID)
	if err != nil {
		return fmt.Errorf("load task %s: %w", ev.TaskID, err)
	}

	completedAt := ev.CompletedAt
	if completedAt.IsZero() {
		completedAt = e.now()
	}
	actual := ev.ActualHours
	if actual <= 0 {
		actual = task.EstimatedHours
	}

	// Score and fold inside the store's mutate callback so the
	// read-score-write cycle commits as one unit.
	var score int
	worker, err := e.store.UpdateWorker(ctx, ev.WorkerID, func(w *model.Worker) {
		result := e.scorer.Score(scoring.Input{
			EstimatedHours: task.EstimatedHours,
			ActualHours:    actual,
			Skills:         task.RequiredSkills,
			CompletedAt:    completedAt,
			DueDate:        task.DueDate,
			Expertise:      w.Performance.SkillExpertise,
		})
		score = result.Score

		fold := expertise.Fold(w.Performance, w.Skills, model.HistoryEntry{
			TaskName:        task.Title,
			TaskPerformance: result.Score,
			Skills:          task.RequiredSkills,
			EstimatedHours:  task.EstimatedHours,
			ActualHours:     actual,
			CompletedAt:     completedAt,
		}, task.IsLearningTask)
		w.Performance = fold.State
		w.Skills = fold.Skills
	})
	if err != nil {
		return fmt.Errorf("fold worker %s: %w", ev.WorkerID, err)
	}

	task.Status = model.StatusCompleted
	task.ActualHours = actual
	task.CompletedAt = completedAt
	task.Score = score
	task.CompletedOnTime = task.DueDate.IsZero() || !completedAt.After(task.DueDate)
	task.UpdatedAt = e.now()
	if err := e.store.UpdateTask(ctx, task); err != nil {
		return fmt.Errorf("persist task %s: %w", task.ID, err)
	}

	if _, err := e.store.AddActive(ctx, worker.ID, -1); err != nil {
		return fmt.Errorf("release active slot for %s: %w", worker.ID, err)
	}

	if err := e.rank.Update(ctx, worker.ID, worker.Name,
		worker.Performance.OverallScore, worker.Performance.TasksCompleted); err != nil {
		return fmt.Errorf("update ranking for %s: %w", worker.ID, err)
	}

	metrics.RecordCompletionProcessed()
	e.log.Info(ctx, "completion folded",
		logger.String("task_id", task.ID),
		logger.String("worker_id", worker.ID),
		logger.Int("score", score),
		logger.Int("overall", worker.Performance.OverallScore),
	)
	return nil
}
