// Package assign plans a task draft into per-worker subtasks. The advisory
// completion drives the happy path; every failure inside it degrades to a
// deterministic local split, so planning itself never fails while at least
// one worker exists.
package assign

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/okian/delega/internal/advisory"
	"github.com/okian/delega/internal/domain/decompose"
	"github.com/okian/delega/internal/domain/model"
	"github.com/okian/delega/internal/domain/selector"
	"github.com/okian/delega/pkg/logger"
	"github.com/okian/delega/pkg/metrics"
)

// ErrNoWorkers is the only error Assign surfaces: nothing can be planned
// over an empty pool.
var ErrNoWorkers = errors.New("no workers available for assignment")

// Planning constants.
const (
	WorkHoursPerDay = 9

	minSubtaskHours     = 4
	maxSubtaskHours     = 80
	maxTestingHours     = 20
	defaultSubtaskHours = 8
	defaultTotalHours   = 40

	learningFactor = 1.4

	defaultDifficulty   = 5
	defaultSubtaskCount = 2

	fallbackMainShare = 0.7
	fallbackTestShare = 0.3
)

// Engine plans task drafts.
type Engine struct {
	adv advisory.Advisory
	log logger.Logger
}

// NewEngine creates a planning engine over an advisory client.
func NewEngine(adv advisory.Advisory, opts ...Option) *Engine {
	e := &Engine{
		adv: adv,
		log: logger.Get().Named("assign"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assign plans the draft over the pool. The returned plan's Advisory flag
// records whether the advisory produced it or the local fallback did.
func (e *Engine) Assign(ctx context.Context, draft *model.TaskDraft, pool []*model.Worker) (model.Plan, error) {
	if len(pool) == 0 {
		return model.Plan{}, ErrNoWorkers
	}

	req, err := advisory.PlanRequest(draft, pool)
	if err != nil {
		e.log.Error(ctx, "building plan request failed", logger.Error(err))
		return e.fallback(ctx, draft, pool), nil
	}

	start := time.Now()
	raw, err := e.adv.Complete(ctx, req)
	metrics.RecordAdvisoryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordAdvisoryError()
		e.log.Warn(ctx, "advisory unavailable, using fallback split",
			logger.String("task", draft.Title),
			logger.Error(err),
		)
		return e.fallback(ctx, draft, pool), nil
	}

	plan, err := advisory.ParsePlan(raw)
	if err != nil {
		metrics.RecordParseError()
		e.log.Warn(ctx, "advisory response unusable, using fallback split",
			logger.String("task", draft.Title),
			logger.Error(err),
		)
		return e.fallback(ctx, draft, pool), nil
	}

	difficulty := plan.TaskComplexity.DifficultyScore
	if difficulty == 0 {
		difficulty = defaultDifficulty
	}

	if !plan.Valid() {
		e.enforceSplit(plan, draft, difficulty)
	}

	subtasks := e.materialize(ctx, plan, draft, pool, difficulty)
	if len(subtasks) == 0 {
		e.log.Warn(ctx, "no subtask could be placed, using fallback split",
			logger.String("task", draft.Title))
		return e.fallback(ctx, draft, pool), nil
	}

	metrics.RecordAssignment(metrics.PathAdvisory)
	metrics.RecordSubtasksCreated(len(subtasks))

	inferred := plan.InferredSkills
	if inferred == nil {
		inferred = []string{}
	}
	return model.Plan{
		Subtasks:       subtasks,
		InferredSkills: inferred,
		Complexity:     difficulty,
		Advisory:       true,
	}, nil
}

// enforceSplit rebuilds the plan's assignments from phase templates when
// the advisory's declared subtask count and its assignment list disagree.
// The complexity judgement is kept.
func (e *Engine) enforceSplit(plan *advisory.PlanResponse, draft *model.TaskDraft, difficulty int) {
	count := plan.TaskComplexity.OptimalSubtaskCount
	if count < 1 {
		count = defaultSubtaskCount
	}
	if len(plan.Assignments) == count {
		return
	}

	total := draft.TotalHours
	if total <= 0 {
		total = defaultTotalHours
	}

	phases := decompose.Decompose(draft.Title, total, difficulty, count)
	assignments := make([]advisory.PlanAssignment, len(phases))
	for i, p := range phases {
		assignments[i] = advisory.PlanAssignment{
			Subtask:        p.Title,
			PrimarySkill:   p.PrimarySkill,
			SkillsUsed:     p.Skills,
			EstimatedHours: p.EstimatedHours,
		}
	}
	plan.Assignments = assignments
}

// materialize turns plan assignments into placed subtasks. Assignments
// without a placement go through the selector; assignees naming unknown
// workers are skipped.
func (e *Engine) materialize(ctx context.Context, plan *advisory.PlanResponse, draft *model.TaskDraft, pool []*model.Worker, difficulty int) []model.Subtask {
	byID := make(map[string]*model.Worker, len(pool))
	for _, w := range pool {
		byID[w.ID] = w
	}

	var subtasks []model.Subtask
	for _, a := range plan.Assignments {
		assignees := a.Assignees
		if len(assignees) == 0 {
			w := selector.Pick(pool, selector.Criteria{
				Skills:       a.SkillsUsed,
				PrimarySkill: a.PrimarySkill,
				Priority:     draft.Priority,
			})
			if w == nil {
				continue
			}
			assignees = []advisory.PlanAssignee{{
				WorkerID:      w.ID,
				IsLearning:    !selector.HasAnySkill(w, a.SkillsUsed),
				UpdatedSkills: w.Skills,
			}}
		}

		for _, ae := range assignees {
			w, ok := byID[ae.WorkerID]
			if !ok {
				e.log.Warn(ctx, "advisory placed an unknown worker, skipping",
					logger.String("worker_id", ae.WorkerID),
					logger.String("subtask", a.Subtask),
				)
				continue
			}

			hours := a.EstimatedHours
			if hours <= 0 {
				hours = defaultSubtaskHours
			}
			hours = clamp(hours, minSubtaskHours, maxSubtaskHours)
			if ae.IsLearning {
				hours = math.Round(hours * learningFactor)
			}

			subtasks = append(subtasks, model.Subtask{
				Title:          qualifyTitle(draft.Title, a.Subtask),
				WorkerID:       w.ID,
				WorkerName:     w.Name,
				Reason:         reason(a.PrimarySkill, a.SkillsUsed, ae.IsLearning),
				EstimatedHours: hours,
				DaysNeeded:     daysNeeded(hours),
				Skills:         emptyIfNil(a.SkillsUsed),
				PrimarySkill:   a.PrimarySkill,
				IsLearning:     ae.IsLearning,
				Complexity:     difficulty,
			})
		}
	}
	return subtasks
}

// fallback splits the draft 70/30 between the two least loaded workers,
// implementation first, testing second. A single-worker pool takes both.
func (e *Engine) fallback(ctx context.Context, draft *model.TaskDraft, pool []*model.Worker) model.Plan {
	metrics.RecordAssignment(metrics.PathFallback)

	picked := selector.LeastLoaded(pool, 2)
	first := picked[0]
	second := first
	if len(picked) > 1 {
		second = picked[1]
	}

	total := draft.TotalHours
	if total <= 0 {
		total = defaultTotalHours
	}
	mainHours := clamp(math.Round(total*fallbackMainShare), minSubtaskHours, maxSubtaskHours)
	testHours := clamp(math.Round(total*fallbackTestShare), minSubtaskHours, maxTestingHours)

	subtasks := []model.Subtask{
		{
			Title:          draft.Title + " - Implementation",
			WorkerID:       first.ID,
			WorkerName:     first.Name,
			Reason:         "Fallback: least loaded worker",
			EstimatedHours: mainHours,
			DaysNeeded:     daysNeeded(mainHours),
			Skills:         emptyIfNil(draft.RequiredSkills),
			Complexity:     defaultDifficulty,
		},
		{
			Title:          draft.Title + " - Testing & Review",
			WorkerID:       second.ID,
			WorkerName:     second.Name,
			Reason:         "Fallback: testing & QA",
			EstimatedHours: testHours,
			DaysNeeded:     daysNeeded(testHours),
			Skills:         []string{"testing"},
			Complexity:     defaultDifficulty,
		},
	}

	metrics.RecordSubtasksCreated(len(subtasks))
	return model.Plan{
		Subtasks:       subtasks,
		InferredSkills: emptyIfNil(draft.RequiredSkills),
		Complexity:     defaultDifficulty,
		Advisory:       false,
	}
}

func reason(primarySkill string, used []string, learning bool) string {
	if primarySkill == "" {
		primarySkill = "General"
	}
	r := primarySkill + " - " + strings.Join(used, ", ")
	if learning {
		r += " (Learning)"
	}
	return r
}

// qualifyTitle prefixes the subtask name with the draft title exactly once.
func qualifyTitle(taskTitle, subtask string) string {
	if subtask == "" {
		return taskTitle
	}
	if strings.HasPrefix(subtask, taskTitle+" - ") {
		return subtask
	}
	return taskTitle + " - " + subtask
}

func daysNeeded(hours float64) int {
	return int(math.Ceil(hours / WorkHoursPerDay))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DueDate derives a subtask's deadline from its day estimate.
func DueDate(now time.Time, days int) time.Time {
	return now.Add(time.Duration(days) * 24 * time.Hour)
}
