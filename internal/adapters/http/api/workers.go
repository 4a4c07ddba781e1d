package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/delega/internal/domain/model"
)

// WorkersHandler handles worker pool requests.
type WorkersHandler struct {
	deps Dependencies
}

// NewWorkersHandler creates a new workers handler.
func NewWorkersHandler(deps Dependencies) *WorkersHandler {
	return &WorkersHandler{deps: deps}
}

// registerWorkerRequest mirrors the POST /workers body.
type registerWorkerRequest struct {
	Name      string   `json:"name"`
	ManagerID string   `json:"managerId"`
	Role      string   `json:"role"`
	Skills    []string `json:"skills"`
}

// HandleWorkers handles POST /workers and GET /workers?managerId=...
func (h *WorkersHandler) HandleWorkers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.register(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *WorkersHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	worker, err := h.deps.RegisterWorker(r.Context(), &model.Worker{
		Name:      strings.TrimSpace(req.Name),
		ManagerID: strings.TrimSpace(req.ManagerID),
		Role:      strings.TrimSpace(req.Role),
		Skills:    req.Skills,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, worker)
}

func (h *WorkersHandler) list(w http.ResponseWriter, r *http.Request) {
	managerID := r.URL.Query().Get("managerId")
	if managerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			errors.New("missing managerId"))
		return
	}
	workers, err := h.deps.Workers(r.Context(), managerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workers)
}

// HandleWorkerByID handles GET /workers/{id} and GET /workers/{id}/analytics.
func (h *WorkersHandler) HandleWorkerByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/workers/")
	id, rest, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	switch rest {
	case "":
		worker, err := h.deps.Worker(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, worker)
	case "analytics":
		report, err := h.deps.Analytics(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	default:
		http.NotFound(w, r)
	}
}
