// Package selector picks the worker for a subtask using a tiered policy:
// load shedding first, then experience for high-priority work, then skill
// match, role match, and finally the least loaded worker.
package selector

import (
	"sort"
	"strings"

	"github.com/okian/delega/internal/domain/model"
	"github.com/okian/delega/internal/domain/skills"
)

// MaxActiveTasks is the load ceiling above which a worker is excluded from
// selection. The ceiling is relaxed when it would empty the pool.
const MaxActiveTasks = 3

// Experience thresholds for high-priority assignments.
const (
	experiencedCompleted = 5
	experiencedScore     = 80
)

// Criteria describes what a subtask needs from its worker.
type Criteria struct {
	Skills       []string
	PrimarySkill string
	Priority     model.Priority
}

// Pick returns the best worker in pool for the criteria, or nil when the
// pool is empty. Ties on load resolve to the earlier pool entry.
func Pick(pool []*model.Worker, c Criteria) *model.Worker {
	if len(pool) == 0 {
		return nil
	}

	available := make([]*model.Worker, 0, len(pool))
	for _, w := range pool {
		if w.ActiveTasks < MaxActiveTasks {
			available = append(available, w)
		}
	}
	if len(available) == 0 {
		available = pool
	}

	if c.Priority == model.PriorityHigh {
		experienced := filter(available, func(w *model.Worker) bool {
			return w.Performance.TasksCompleted >= experiencedCompleted &&
				w.Performance.OverallScore >= experiencedScore
		})
		if len(experienced) > 0 {
			return leastLoaded(experienced)
		}
	}

	if matches := filter(available, func(w *model.Worker) bool {
		return HasAnySkill(w, c.Skills)
	}); len(matches) > 0 {
		return leastLoaded(matches)
	}

	if c.PrimarySkill != "" {
		primary := skills.Normalize(c.PrimarySkill)
		if matches := filter(available, func(w *model.Worker) bool {
			return strings.Contains(strings.ToLower(w.Role), primary)
		}); len(matches) > 0 {
			return leastLoaded(matches)
		}
	}

	return leastLoaded(available)
}

// HasAnySkill reports whether the worker holds at least one of the wanted
// skills. Matching is the shared substring comparison, so a "reactjs" tag
// satisfies a required "react".
func HasAnySkill(w *model.Worker, wanted []string) bool {
	return skills.AnyMatch(w.Skills, wanted)
}

// LeastLoaded returns up to n workers ordered by ascending active load.
// The input slice is not modified.
func LeastLoaded(pool []*model.Worker, n int) []*model.Worker {
	sorted := make([]*model.Worker, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ActiveTasks < sorted[j].ActiveTasks
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func leastLoaded(pool []*model.Worker) *model.Worker {
	best := pool[0]
	for _, w := range pool[1:] {
		if w.ActiveTasks < best.ActiveTasks {
			best = w
		}
	}
	return best
}

func filter(pool []*model.Worker, keep func(*model.Worker) bool) []*model.Worker {
	out := make([]*model.Worker, 0, len(pool))
	for _, w := range pool {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}
