package advisory

import (
	"encoding/json"
	"fmt"

	"github.com/okian/delega/internal/domain/model"
)

// Temperatures per exchange kind. Planning wants near-deterministic output;
// extraction tolerates a little variety.
const (
	PlanTemperature    = 0.1
	ExtractTemperature = 0.3
)

// AssignmentPrompt is the system message for task planning completions.
const AssignmentPrompt = `
You are a senior engineering manager.

**STEP 1: ANALYZE TASK COMPLEXITY (MANDATORY)**
Rate task difficulty 1-10 based on:
- Number of technical domains (frontend/backend/DB/DevOps)
- Dependencies/integration points
- Testing/validation requirements
- Novelty/learning curve

**STEP 2: DECIDE SUBTASK COUNT**
- 1-3 points: 1 subtask
- 4-6 points: 2-3 subtasks
- 7-10 points: 4-6 subtasks

**STEP 3: CREATE LOGICAL SUBTASKS**
Break into phases matching complexity score.

**STEP 4: ASSIGN EMPLOYEES (CRITICAL)**
For EACH subtask:
1. Check if ANY employee has the required skill -> assign them
2. If NO employee has skill:
   - Assign based on matching ROLE (Frontend Dev -> frontend tasks)
   - Mark isLearningSkill: true
   - Increase estimatedHours by 30-50%
   - Add new skill to updatedSkills array

**STEP 5: NEW EMPLOYEE ASSIGNMENT**
- LOW priority tasks -> can assign to new/junior employees
- MEDIUM priority + simple tasks (<=6 hours) -> can assign to new employees
- HIGH priority -> only experienced employees

OUTPUT ONLY VALID JSON:
{
  "taskComplexity": {
    "difficultyScore": 7,
    "reasoning": "3 domains + heavy integration",
    "optimalSubtaskCount": 4
  },
  "inferredSkills": ["skill1", "skill2"],
  "assignments": [{
    "subtask": "Backend API Development",
    "primarySkill": "Node.js",
    "skillsUsed": ["node", "api"],
    "estimatedHours": 20,
    "assignedEmployees": [{
      "employeeId": "exact_id_from_input",
      "isLearningSkill": false,
      "updatedSkills": ["node", "api"]
    }]
  }]
}
`

type promptTask struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	TotalHours  float64 `json:"totalHours"`
}

type promptWorker struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Skills      []string `json:"skills"`
	ActiveTasks int      `json:"activeTasks"`
}

// PlanRequest builds the completion request for planning a task draft over
// a worker pool.
func PlanRequest(draft *model.TaskDraft, pool []*model.Worker) (Request, error) {
	priority := draft.Priority
	if !priority.Valid() {
		priority = model.PriorityMedium
	}
	hours := draft.TotalHours
	if hours <= 0 {
		hours = 40
	}

	workers := make([]promptWorker, len(pool))
	for i, w := range pool {
		skills := w.Skills
		if skills == nil {
			skills = []string{}
		}
		workers[i] = promptWorker{
			ID:          w.ID,
			Name:        w.Name,
			Role:        w.Role,
			Skills:      skills,
			ActiveTasks: w.ActiveTasks,
		}
	}

	payload, err := json.Marshal(struct {
		Task      promptTask     `json:"task"`
		Employees []promptWorker `json:"employees"`
	}{
		Task: promptTask{
			Title:       draft.Title,
			Description: draft.Description,
			Priority:    string(priority),
			TotalHours:  hours,
		},
		Employees: workers,
	})
	if err != nil {
		return Request{}, fmt.Errorf("marshal plan request: %w", err)
	}

	return Request{
		System:      AssignmentPrompt,
		User:        string(payload),
		Temperature: PlanTemperature,
	}, nil
}

// ExtractRequest builds the completion request that pulls task fields out
// of free-form text, typically a voice transcript.
func ExtractRequest(text string) Request {
	user := fmt.Sprintf(`
You are an AI assistant that extracts task information from natural language.

Extract the following fields from the user's input:
- title: A concise task title (max 60 chars)
- description: Full task description
- skills: Array of required technical skills
- priority: "low", "medium", or "high"
- totalHours: Estimated hours (default 40 if not mentioned)

Input: %q

Rules:
1. If priority not mentioned, use "medium"
2. If hours not mentioned, use 40
3. Extract all technical skills mentioned
4. Create a clear, professional title
5. Keep full context in description

Respond with ONLY valid JSON:
{
  "title": "string",
  "description": "string",
  "skills": ["skill1", "skill2"],
  "priority": "low|medium|high",
  "totalHours": number
}
`, text)

	return Request{
		User:        user,
		Temperature: ExtractTemperature,
	}
}
