package advisory

import (
	"encoding/json"

	"github.com/okian/delega/internal/domain/model"
)

// Complexity is the advisory's difficulty judgement for a task.
type Complexity struct {
	DifficultyScore     int    `json:"difficultyScore"`
	Reasoning           string `json:"reasoning"`
	OptimalSubtaskCount int    `json:"optimalSubtaskCount"`
}

// PlanAssignee names a worker the advisory placed on a subtask.
type PlanAssignee struct {
	WorkerID      string   `json:"employeeId"`
	IsLearning    bool     `json:"isLearningSkill"`
	UpdatedSkills []string `json:"updatedSkills"`
}

// PlanAssignment is one proposed subtask with its placements.
type PlanAssignment struct {
	Subtask        string         `json:"subtask"`
	PrimarySkill   string         `json:"primarySkill"`
	SkillsUsed     []string       `json:"skillsUsed"`
	EstimatedHours float64        `json:"estimatedHours"`
	Assignees      []PlanAssignee `json:"assignedEmployees"`
}

// PlanResponse is the full document an assignment completion must produce.
type PlanResponse struct {
	TaskComplexity Complexity       `json:"taskComplexity"`
	InferredSkills []string         `json:"inferredSkills"`
	Assignments    []PlanAssignment `json:"assignments"`
}

// Valid reports whether the plan is structurally usable: a difficulty score
// was set, inferred skills came back as an array, and at least one
// assignment exists. Invalid plans keep their complexity judgement but have
// their assignments rebuilt from phase templates.
func (p *PlanResponse) Valid() bool {
	return p.TaskComplexity.DifficultyScore != 0 &&
		p.InferredSkills != nil &&
		len(p.Assignments) > 0
}

// ExtractedTask is the structured result of a free-text extraction.
type ExtractedTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Priority    string   `json:"priority"`
	TotalHours  float64  `json:"totalHours"`
}

// ParseExtraction decodes a task extraction completion and applies the
// field defaults: missing title becomes "New Task", missing description
// falls back to the raw input, an unknown priority becomes medium and a
// missing hour estimate becomes 40.
func ParseExtraction(raw, sourceText string) (ExtractedTask, error) {
	doc, err := ExtractJSON(raw)
	if err != nil {
		return ExtractedTask{}, err
	}
	var out ExtractedTask
	if err := json.Unmarshal(doc, &out); err != nil {
		return ExtractedTask{}, &MalformedError{Reason: err.Error(), Excerpt: excerpt(raw)}
	}

	if out.Title == "" {
		out.Title = "New Task"
	}
	if out.Description == "" {
		out.Description = sourceText
	}
	if !model.Priority(out.Priority).Valid() {
		out.Priority = string(model.PriorityMedium)
	}
	if out.TotalHours <= 0 {
		out.TotalHours = 40
	}
	return out, nil
}
