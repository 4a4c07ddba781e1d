package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/delega/internal/domain/model"
)

// TasksHandler handles task planning and lifecycle requests.
type TasksHandler struct {
	deps Dependencies
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(deps Dependencies) *TasksHandler {
	return &TasksHandler{deps: deps}
}

// createTaskRequest mirrors the POST /tasks body.
type createTaskRequest struct {
	ManagerID      string   `json:"managerId"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"requiredSkills"`
	Priority       string   `json:"priority"`
	TotalHours     float64  `json:"totalHours"`
}

func (c createTaskRequest) validate() error {
	switch {
	case strings.TrimSpace(c.ManagerID) == "":
		return errors.New("missing managerId")
	case strings.TrimSpace(c.Title) == "":
		return errors.New("missing title")
	}
	if c.Priority != "" && !model.Priority(c.Priority).Valid() {
		return errors.New("priority must be low, medium or high")
	}
	return nil
}

// createTaskResponse returns the plan alongside the persisted tasks.
type createTaskResponse struct {
	Plan  model.Plan    `json:"plan"`
	Tasks []*model.Task `json:"tasks"`
}

// extractRequest mirrors the POST /tasks/extract body.
type extractRequest struct {
	Text string `json:"text"`
}

// startRequest mirrors the POST /tasks/{id}/start body.
type startRequest struct {
	WorkerID string `json:"workerId"`
}

// completeRequest mirrors the POST /tasks/{id}/complete body.
type completeRequest struct {
	WorkerID    string  `json:"workerId"`
	EventID     string  `json:"eventId"`
	ActualHours float64 `json:"actualHours"`
	CompletedAt string  `json:"completedAt"` // RFC3339, optional
}

// HandleTasks handles POST /tasks and GET /tasks?managerId=...
func (h *TasksHandler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.listForManager(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *TasksHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	plan, tasks, err := h.deps.CreateTask(r.Context(), req.ManagerID, &model.TaskDraft{
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Priority:       model.Priority(req.Priority),
		TotalHours:     req.TotalHours,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createTaskResponse{Plan: plan, Tasks: tasks})
}

func (h *TasksHandler) listForManager(w http.ResponseWriter, r *http.Request) {
	managerID := r.URL.Query().Get("managerId")
	if managerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			errors.New("missing managerId"))
		return
	}
	tasks, err := h.deps.ManagerTasks(r.Context(), managerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleTaskSubroute dispatches /tasks/extract, /tasks/mine, /tasks/{id}
// and the per-task lifecycle verbs.
func (h *TasksHandler) HandleTaskSubroute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tasks/")
	id, verb, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch {
	case id == "extract" && verb == "":
		h.extract(w, r)
	case id == "mine" && verb == "":
		h.listForWorker(w, r)
	case verb == "start":
		h.start(w, r, id)
	case verb == "complete":
		h.complete(w, r, id)
	case verb == "":
		h.byID(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *TasksHandler) extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			errors.New("missing text"))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ExtractDraft(r.Context(), req.Text))
}

func (h *TasksHandler) listForWorker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	workerID := r.URL.Query().Get("workerId")
	if workerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			errors.New("missing workerId"))
		return
	}
	tasks, err := h.deps.WorkerTasks(r.Context(), workerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TasksHandler) start(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	task, err := h.deps.StartTask(r.Context(), id, req.WorkerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TasksHandler) complete(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	ev := model.CompletionEvent{
		EventID:     req.EventID,
		TaskID:      id,
		WorkerID:    req.WorkerID,
		ActualHours: req.ActualHours,
	}
	if req.CompletedAt != "" {
		ts, err := time.Parse(time.RFC3339, req.CompletedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				errors.New("invalid completedAt; must be RFC3339"))
			return
		}
		ev.CompletedAt = ts
	}

	duplicate, err := h.deps.Complete(r.Context(), ev)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

func (h *TasksHandler) byID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		task, err := h.deps.Task(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	case http.MethodDelete:
		if err := h.deps.DeleteTask(r.Context(), id, r.URL.Query().Get("managerId")); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		http.NotFound(w, r)
	}
}
