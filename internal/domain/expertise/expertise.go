// Package expertise folds completed-subtask scores into a worker's running
// performance state.
package expertise

import (
	"math"
	"time"

	"github.com/okian/delega/internal/domain/model"
	"github.com/okian/delega/internal/domain/skills"
)

// Result is the outcome of folding one completion.
type Result struct {
	State  model.PerformanceState
	Skills []string // worker skill list, extended when the task was a learning task
}

// Fold returns a new performance state with entry folded in. The input state
// is not mutated; callers persist the returned copy.
//
// Per skill on the entry the running average moves by one sample; the
// overall score is recomputed as the mean over the capped history window;
// tasksCompleted increments by exactly one.
func Fold(state model.PerformanceState, workerSkills []string, entry model.HistoryEntry, learning bool) Result {
	completedAt := entry.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
		entry.CompletedAt = completedAt
	}

	history := make([]model.HistoryEntry, 0, len(state.TaskHistory)+1)
	history = append(history, entry)
	history = append(history, state.TaskHistory...)
	if len(history) > model.HistoryWindow {
		history = history[:model.HistoryWindow]
	}

	expertise := make(map[string]model.SkillStat, len(state.SkillExpertise)+len(entry.Skills))
	for k, v := range state.SkillExpertise {
		expertise[k] = v
	}
	score := entry.TaskPerformance
	for _, s := range entry.Skills {
		key := skills.Normalize(s)
		if key == "" {
			continue
		}
		if cur, ok := expertise[key]; ok {
			next := math.Round(float64(cur.AvgRate*cur.Count+score) / float64(cur.Count+1))
			expertise[key] = model.SkillStat{
				AvgRate:     clamp(int(next)),
				Count:       cur.Count + 1,
				LastUpdated: completedAt,
			}
		} else {
			expertise[key] = model.SkillStat{
				AvgRate:     clamp(score),
				Count:       1,
				LastUpdated: completedAt,
			}
		}
	}

	sum := 0
	for _, h := range history {
		sum += h.TaskPerformance
	}
	overall := clamp(int(math.Round(float64(sum) / float64(len(history)))))

	out := model.PerformanceState{
		TasksCompleted: state.TasksCompleted + 1,
		OverallScore:   overall,
		SkillExpertise: expertise,
		TaskHistory:    history,
		LastUpdated:    completedAt,
	}

	updated := workerSkills
	if learning {
		updated = skills.AppendMissing(workerSkills, entry.Skills)
	}

	return Result{State: out, Skills: updated}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
