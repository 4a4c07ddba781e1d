package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/delega/internal/domain/model"
	"github.com/okian/delega/pkg/metrics"
)

// MemStore is the in-memory Store implementation. All returned records are
// deep copies; callers never share memory with the store.
type MemStore struct {
	mu      sync.RWMutex
	workers map[string]*model.Worker
	tasks   map[string]*model.Task
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		workers: make(map[string]*model.Worker),
		tasks:   make(map[string]*model.Task),
	}
}

func (s *MemStore) PutWorker(ctx context.Context, w *model.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[w.ID] = copyWorker(w)
	metrics.UpdateWorkersTracked(len(s.workers))
	return nil
}

func (s *MemStore) GetWorker(ctx context.Context, id string) (*model.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workers[id]
	if !ok {
		metrics.RecordStoreError("memstore", "worker_not_found")
		return nil, ErrNotFound
	}
	return copyWorker(w), nil
}

func (s *MemStore) UpdateWorker(ctx context.Context, id string, mutate func(*model.Worker)) (*model.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[id]
	if !ok {
		metrics.RecordStoreError("memstore", "worker_not_found")
		return nil, ErrNotFound
	}
	mutate(w)
	return copyWorker(w), nil
}

func (s *MemStore) ListWorkersByManager(ctx context.Context, managerID string) ([]*model.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Worker, 0)
	for _, w := range s.workers {
		if w.ManagerID == managerID {
			out = append(out, copyWorker(w))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) AddActive(ctx context.Context, workerID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[workerID]
	if !ok {
		metrics.RecordStoreError("memstore", "worker_not_found")
		return 0, ErrNotFound
	}
	w.ActiveTasks += delta
	if w.ActiveTasks < 0 {
		w.ActiveTasks = 0
	}
	return w.ActiveTasks, nil
}

func (s *MemStore) CreateTask(ctx context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = copyTask(t)
	return nil
}

func (s *MemStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		metrics.RecordStoreError("memstore", "task_not_found")
		return nil, ErrNotFound
	}
	return copyTask(t), nil
}

func (s *MemStore) UpdateTask(ctx context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		metrics.RecordStoreError("memstore", "task_not_found")
		return ErrNotFound
	}
	s.tasks[t.ID] = copyTask(t)
	return nil
}

func (s *MemStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		metrics.RecordStoreError("memstore", "task_not_found")
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemStore) ListTasksByManager(ctx context.Context, managerID string) ([]*model.Task, error) {
	return s.listTasks(func(t *model.Task) bool { return t.CreatedBy == managerID })
}

func (s *MemStore) ListTasksByAssignee(ctx context.Context, workerID string) ([]*model.Task, error) {
	return s.listTasks(func(t *model.Task) bool { return t.AssigneeID == workerID })
}

// listTasks returns matching tasks newest-first.
func (s *MemStore) listTasks(keep func(*model.Task) bool) ([]*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Task, 0)
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, copyTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func copyWorker(w *model.Worker) *model.Worker {
	out := *w
	out.Skills = append([]string(nil), w.Skills...)
	out.Performance = copyPerformance(w.Performance)
	return &out
}

func copyPerformance(p model.PerformanceState) model.PerformanceState {
	out := p
	out.SkillExpertise = make(map[string]model.SkillStat, len(p.SkillExpertise))
	for k, v := range p.SkillExpertise {
		out.SkillExpertise[k] = v
	}
	out.TaskHistory = make([]model.HistoryEntry, len(p.TaskHistory))
	for i, e := range p.TaskHistory {
		e.Skills = append([]string(nil), e.Skills...)
		out.TaskHistory[i] = e
	}
	return out
}

func copyTask(t *model.Task) *model.Task {
	out := *t
	out.RequiredSkills = append([]string(nil), t.RequiredSkills...)
	return &out
}
