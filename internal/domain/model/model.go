// Package model contains domain models passed between layers.
package model

import "time"

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Order returns a sort key: high sorts before medium before low.
func (p Priority) Order() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Status tracks a subtask through its lifecycle.
type Status string

const (
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// SkillStat is the running proficiency average for one skill.
type SkillStat struct {
	AvgRate     int       `json:"avgRate"` // bounded [0,100]
	Count       int       `json:"count"`   // updates folded in, >= 1
	LastUpdated time.Time `json:"lastUpdated"`
}

// HistoryEntry records one completed subtask in a worker's history window.
type HistoryEntry struct {
	TaskName        string    `json:"taskName"`
	TaskPerformance int       `json:"taskPerformance"`
	Skills          []string  `json:"skills"`
	EstimatedHours  float64   `json:"estimatedHours"`
	ActualHours     float64   `json:"actualHours"`
	CompletedAt     time.Time `json:"completedAt"`
}

// HistoryWindow caps TaskHistory; older entries are discarded.
const HistoryWindow = 20

// PerformanceState is a worker's accumulated performance document.
//
// OverallScore is the mean of all historical task scores. The original
// system persisted it under the misleading name "onTimeDelivery"; the wire
// tag is kept so documents written by that system still load.
type PerformanceState struct {
	TasksCompleted int                  `json:"tasksCompleted"`
	OverallScore   int                  `json:"onTimeDelivery"` // bounded [0,100]
	SkillExpertise map[string]SkillStat `json:"skillExpertise"` // keyed by lower-cased skill
	TaskHistory    []HistoryEntry       `json:"taskHistory"`    // most-recent-first, len <= HistoryWindow
	LastUpdated    time.Time            `json:"lastUpdated"`
}

// NewPerformanceState returns the empty state a worker starts with.
func NewPerformanceState() PerformanceState {
	return PerformanceState{
		OverallScore:   100,
		SkillExpertise: make(map[string]SkillStat),
	}
}

// Worker is a member of the assignment pool.
type Worker struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	ManagerID   string           `json:"managerId"`
	Role        string           `json:"role"` // derived role label, e.g. "Backend Developer"
	Skills      []string         `json:"skills"`
	ActiveTasks int              `json:"activeTasks"` // never negative
	Performance PerformanceState `json:"performance"`
}

// TaskDraft is the manager's description of work to be planned. The
// assignment engine splits a draft into persisted per-worker tasks.
type TaskDraft struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"requiredSkills"`
	Priority       Priority `json:"priority"`
	TotalHours     float64  `json:"totalHours"`
}

// Task is one persisted, assignable unit of work bound to a single worker.
type Task struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	RequiredSkills  []string  `json:"requiredSkills"`
	Priority        Priority  `json:"priority"`
	Status          Status    `json:"status"`
	AssigneeID      string    `json:"assignedTo"`
	AssigneeName    string    `json:"assignedEmployeeName"`
	Reason          string    `json:"aiReason"` // free-text assignment rationale
	EstimatedHours  float64   `json:"estimatedHours"`
	ActualHours     float64   `json:"actualHours"`
	DaysNeeded      int       `json:"daysNeeded"`
	DueDate         time.Time `json:"dueDate"`
	IsLearningTask  bool      `json:"isLearningTask"`
	Complexity      int       `json:"complexity"` // difficulty 1-10
	Score           int       `json:"taskPerformanceRate"`
	CompletedOnTime bool      `json:"completedOnTime"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	CompletedAt     time.Time `json:"completedAt"`
}

// Subtask is one planned assignment produced by the engine, before it is
// materialized into a persisted Task.
type Subtask struct {
	Title          string   `json:"title"`
	WorkerID       string   `json:"employeeId"`
	WorkerName     string   `json:"employeeName"`
	Reason         string   `json:"reason"`
	EstimatedHours float64  `json:"estimatedHours"`
	DaysNeeded     int      `json:"daysNeeded"`
	Skills         []string `json:"skills"`
	PrimarySkill   string   `json:"primarySkill"`
	IsLearning     bool     `json:"isLearningTask"`
	Complexity     int      `json:"complexity"`
}

// Plan is the full output of one assignment run.
type Plan struct {
	Subtasks       []Subtask `json:"subtasks"`
	InferredSkills []string  `json:"inferredSkills"`
	Complexity     int       `json:"complexity"`
	Advisory       bool      `json:"advisory"` // false when the local fallback produced the plan
}

// CompletionEvent reports that a worker finished a subtask.
type CompletionEvent struct {
	EventID     string    `json:"eventId"` // idempotency key, defaults to the task id
	TaskID      string    `json:"taskId"`
	WorkerID    string    `json:"workerId"`
	ActualHours float64   `json:"actualHours"`
	CompletedAt time.Time `json:"completedAt"`
}
