// Package decompose turns a task and a difficulty signal into deterministic
// phase-template subtasks, used whenever the advisory plan is absent or
// disagrees with its own declared subtask count.
package decompose

import (
	"github.com/okian/delega/internal/domain/model"
)

// Phase hour bounds.
const (
	MinPhaseHours = 4
	MaxPhaseHours = 40
)

// Difficulty tier boundaries.
const (
	simpleMax   = 3
	moderateMax = 6
)

// Phase is one template slot in a decomposition.
type Phase struct {
	Name         string
	PrimarySkill string
	Skills       []string
}

// Templates returns the phase templates for a difficulty score:
// one phase for 1-3, two for 4-6, five for 7-10.
func Templates(difficulty int) []Phase {
	switch {
	case difficulty <= simpleMax:
		return []Phase{
			{Name: "Implementation", PrimarySkill: "Full-Stack"},
		}
	case difficulty <= moderateMax:
		return []Phase{
			{Name: "Core Development", PrimarySkill: "Backend", Skills: []string{"api", "database"}},
			{Name: "UI & Testing", PrimarySkill: "Frontend", Skills: []string{"react", "testing"}},
		}
	default:
		return []Phase{
			{Name: "Research & Planning", PrimarySkill: "Architecture", Skills: []string{"design"}},
			{Name: "Backend Implementation", PrimarySkill: "Backend", Skills: []string{"node", "api"}},
			{Name: "Frontend Development", PrimarySkill: "Frontend", Skills: []string{"react", "css"}},
			{Name: "Integration & Testing", PrimarySkill: "QA", Skills: []string{"testing"}},
			{Name: "Deployment", PrimarySkill: "DevOps", Skills: []string{"docker"}},
		}
	}
}

// SplitHours divides totalHours evenly over count phases, clamped to the
// per-phase bounds.
func SplitHours(totalHours float64, count int) float64 {
	if count < 1 {
		count = 1
	}
	h := totalHours / float64(count)
	if h < MinPhaseHours {
		return MinPhaseHours
	}
	if h > MaxPhaseHours {
		return MaxPhaseHours
	}
	return h
}

// Decompose produces unassigned template subtasks for a task. When count is
// positive the template list is truncated to it; otherwise every template
// for the difficulty is used.
func Decompose(title string, totalHours float64, difficulty, count int) []model.Subtask {
	phases := Templates(difficulty)
	if count > 0 && count < len(phases) {
		phases = phases[:count]
	}

	hours := SplitHours(totalHours, len(phases))
	subtasks := make([]model.Subtask, len(phases))
	for i, p := range phases {
		subtasks[i] = model.Subtask{
			Title:          title + " - " + p.Name,
			PrimarySkill:   p.PrimarySkill,
			Skills:         p.Skills,
			EstimatedHours: hours,
			Complexity:     difficulty,
		}
	}
	return subtasks
}
