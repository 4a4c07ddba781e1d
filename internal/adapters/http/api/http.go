// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/delega/internal/adapters/repository"
	service "github.com/okian/delega/internal/app"
	"github.com/okian/delega/internal/assign"
	"github.com/okian/delega/internal/domain/analytics"
	"github.com/okian/delega/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Worker pool management.
	RegisterWorker(ctx context.Context, w *model.Worker) (*model.Worker, error)
	Worker(ctx context.Context, id string) (*model.Worker, error)
	Workers(ctx context.Context, managerID string) ([]*model.Worker, error)
	Analytics(ctx context.Context, workerID string) (analytics.Report, error)

	// Task planning and lifecycle.
	CreateTask(ctx context.Context, managerID string, draft *model.TaskDraft) (model.Plan, []*model.Task, error)
	ExtractDraft(ctx context.Context, text string) model.TaskDraft
	Task(ctx context.Context, id string) (*model.Task, error)
	ManagerTasks(ctx context.Context, managerID string) ([]*model.Task, error)
	WorkerTasks(ctx context.Context, workerID string) ([]*model.Task, error)
	StartTask(ctx context.Context, taskID, workerID string) (*model.Task, error)
	Complete(ctx context.Context, ev model.CompletionEvent) (bool, error)
	DeleteTask(ctx context.Context, taskID, managerID string) error

	// Ranking reads.
	TopN(ctx context.Context, n int) ([]Entry, error)
	RankOf(ctx context.Context, workerID string) (Entry, error)
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = repository.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	workersHandler  *WorkersHandler
	tasksHandler    *TasksHandler
	rankingsHandler *RankingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		workersHandler:  NewWorkersHandler(deps),
		tasksHandler:    NewTasksHandler(deps),
		rankingsHandler: NewRankingsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxRankingLimit caps the limit accepted by GET /rankings.
func WithMaxRankingLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.rankingsHandler.maxLimit = n
		}
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/workers", MetricsMiddleware(s.workersHandler.HandleWorkers, "workers"))
	mux.HandleFunc("/workers/", MetricsMiddleware(s.workersHandler.HandleWorkerByID, "workers"))
	mux.HandleFunc("/tasks", MetricsMiddleware(s.tasksHandler.HandleTasks, "tasks"))
	mux.HandleFunc("/tasks/", MetricsMiddleware(s.tasksHandler.HandleTaskSubroute, "tasks"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleRankings, "rankings"))
	mux.HandleFunc("/rankings/", MetricsMiddleware(s.rankingsHandler.HandleRankingByID, "rankings"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service-layer sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotAssignee):
		writeError(w, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, service.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrInvalidWorker),
		errors.Is(err, service.ErrInvalidDraft),
		errors.Is(err, assign.ErrNoWorkers):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
