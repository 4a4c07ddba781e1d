// Package service wires the assignment engine, the completion pipeline and
// the stores into the dependency set the HTTP API consumes.
package service

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/delega/internal/adapters/mq/queue"
	workerpool "github.com/okian/delega/internal/adapters/mq/worker"
	"github.com/okian/delega/internal/adapters/repository"
	"github.com/okian/delega/internal/advisory"
	"github.com/okian/delega/internal/assign"
	"github.com/okian/delega/internal/domain/analytics"
	"github.com/okian/delega/internal/domain/dedupe"
	"github.com/okian/delega/internal/domain/model"
	"github.com/okian/delega/internal/domain/scoring"
	"github.com/okian/delega/internal/domain/skills"
	"github.com/okian/delega/internal/extract"
	"github.com/okian/delega/internal/perf"
	"github.com/okian/delega/pkg/logger"
	"github.com/okian/delega/pkg/metrics"
)

// Service implements the API dependencies for the assignment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	rank      repository.Ranking
	deduper   dedupe.Deduper
	queue     eventqueue.Queue
	pool      *workerpool.Pool
	assigner  *assign.Engine
	extractor *extract.Extractor
	adv       advisory.Advisory

	// Configuration
	queueSize   int
	shardCount  int
	shardBuffer int
	dedupeSize  int

	// State
	started bool

	log logger.Logger
	now func() time.Time
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:   10000,
		shardCount:  runtime.NumCPU(),
		shardBuffer: 256,
		dedupeSize:  50000,
		adv:         advisory.Disabled{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get().Named("service")
	}

	s.store = repository.NewMemStore()
	s.rank = repository.NewRankStore()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	folder := perf.NewEngine(s.store, s.rank, scoring.NewEngine())
	s.pool = workerpool.NewPool(s.shardCount, s.queue, folder,
		workerpool.WithShardBuffer(s.shardBuffer),
	)
	s.pool.Start(ctx)

	s.assigner = assign.NewEngine(s.adv)
	s.extractor = extract.NewExtractor(s.adv)

	s.started = true
	s.log.Info(ctx, "assignment service started",
		logger.Int("shards", s.shardCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains the completion pipeline and shuts the service down.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.log.Info(ctx, "stopping assignment service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.log.Warn(ctx, "pool shutdown incomplete", logger.Error(err))
	}
	s.started = false
	s.log.Info(ctx, "assignment service stopped")
}

// RegisterWorker adds a worker to the assignment pool. A missing role is
// derived from the worker's skill tags, and the ranking board is seeded so
// the worker is visible before their first completion.
func (s *Service) RegisterWorker(ctx context.Context, w *model.Worker) (*model.Worker, error) {
	if w == nil || w.Name == "" {
		return nil, ErrInvalidWorker
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Skills == nil {
		w.Skills = []string{}
	}
	if w.Role == "" {
		w.Role = skills.DetectRole(w.Skills)
	}
	w.ActiveTasks = 0
	w.Performance = model.NewPerformanceState()

	if err := s.store.PutWorker(ctx, w); err != nil {
		return nil, err
	}
	if err := s.rank.Update(ctx, w.ID, w.Name,
		w.Performance.OverallScore, 0); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "worker registered",
		logger.String("worker_id", w.ID),
		logger.String("role", w.Role),
	)
	return w, nil
}

// Worker returns one worker by ID.
func (s *Service) Worker(ctx context.Context, id string) (*model.Worker, error) {
	return s.store.GetWorker(ctx, id)
}

// Workers lists a manager's pool, name ascending.
func (s *Service) Workers(ctx context.Context, managerID string) ([]*model.Worker, error) {
	return s.store.ListWorkersByManager(ctx, managerID)
}

// CreateTask plans a draft over the manager's pool and persists one task
// per planned subtask. Each assignee's active count grows by one per task.
func (s *Service) CreateTask(ctx context.Context, managerID string, draft *model.TaskDraft) (model.Plan, []*model.Task, error) {
	if draft == nil || draft.Title == "" {
		return model.Plan{}, nil, ErrInvalidDraft
	}
	if !draft.Priority.Valid() {
		draft.Priority = model.PriorityMedium
	}

	pool, err := s.store.ListWorkersByManager(ctx, managerID)
	if err != nil {
		return model.Plan{}, nil, err
	}
	plan, err := s.assigner.Assign(ctx, draft, pool)
	if err != nil {
		return model.Plan{}, nil, err
	}

	now := s.now()
	tasks := make([]*model.Task, 0, len(plan.Subtasks))
	for _, st := range plan.Subtasks {
		t := &model.Task{
			ID:             uuid.NewString(),
			Title:          st.Title,
			Description:    draft.Description,
			RequiredSkills: st.Skills,
			Priority:       draft.Priority,
			Status:         model.StatusAssigned,
			AssigneeID:     st.WorkerID,
			AssigneeName:   st.WorkerName,
			Reason:         st.Reason,
			EstimatedHours: st.EstimatedHours,
			DaysNeeded:     st.DaysNeeded,
			DueDate:        assign.DueDate(now, st.DaysNeeded),
			IsLearningTask: st.IsLearning,
			Complexity:     st.Complexity,
			CreatedBy:      managerID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.store.CreateTask(ctx, t); err != nil {
			return model.Plan{}, nil, err
		}
		if _, err := s.store.AddActive(ctx, t.AssigneeID, 1); err != nil {
			return model.Plan{}, nil, err
		}
		tasks = append(tasks, t)
	}
	return plan, tasks, nil
}

// ExtractDraft turns free-form text into a task draft. It never fails;
// unusable advisory output degrades to a generic draft.
func (s *Service) ExtractDraft(ctx context.Context, text string) model.TaskDraft {
	return s.extractor.Extract(ctx, text)
}

// Task returns one task by ID.
func (s *Service) Task(ctx context.Context, id string) (*model.Task, error) {
	return s.store.GetTask(ctx, id)
}

// ManagerTasks lists tasks a manager created, urgent first then by due
// date.
func (s *Service) ManagerTasks(ctx context.Context, managerID string) ([]*model.Task, error) {
	tasks, err := s.store.ListTasksByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	sortTasks(tasks)
	return tasks, nil
}

// WorkerTasks lists tasks assigned to one worker, urgent first then by
// due date.
func (s *Service) WorkerTasks(ctx context.Context, workerID string) ([]*model.Task, error) {
	tasks, err := s.store.ListTasksByAssignee(ctx, workerID)
	if err != nil {
		return nil, err
	}
	sortTasks(tasks)
	return tasks, nil
}

func sortTasks(tasks []*model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority.Order() != tasks[j].Priority.Order() {
			return tasks[i].Priority.Order() < tasks[j].Priority.Order()
		}
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}

// StartTask moves an assigned task to in-progress. Only the assignee may
// start it.
func (s *Service) StartTask(ctx context.Context, taskID, workerID string) (*model.Task, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if workerID != "" && t.AssigneeID != workerID {
		return nil, ErrNotAssignee
	}
	if t.Status == model.StatusCompleted {
		return nil, ErrAlreadyCompleted
	}
	t.Status = model.StatusInProgress
	t.UpdatedAt = s.now()
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Complete accepts a completion report for asynchronous folding. The
// returned duplicate flag is true when the event (or the task itself) has
// already been accepted; ErrBackpressure means the queue is full and the
// caller should retry.
func (s *Service) Complete(ctx context.Context, ev model.CompletionEvent) (bool, error) {
	t, err := s.store.GetTask(ctx, ev.TaskID)
	if err != nil {
		return false, err
	}
	if ev.WorkerID != "" && ev.WorkerID != t.AssigneeID {
		return false, ErrNotAssignee
	}
	ev.WorkerID = t.AssigneeID
	if ev.EventID == "" {
		ev.EventID = ev.TaskID
	}

	if t.Status == model.StatusCompleted || s.deduper.SeenAndRecord(ctx, ev.EventID) {
		metrics.RecordDuplicateEvent()
		return true, nil
	}
	if !s.queue.Enqueue(ctx, ev) {
		// Roll back the idempotency record so a retry can get through.
		s.deduper.Unrecord(ctx, ev.EventID)
		return false, ErrBackpressure
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	return false, nil
}

// DeleteTask removes a task its creator no longer wants. Deleting an
// unfinished assigned task releases the assignee's active slot.
func (s *Service) DeleteTask(ctx context.Context, taskID, managerID string) error {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if managerID != "" && t.CreatedBy != managerID {
		return ErrForbidden
	}
	if t.AssigneeID != "" && t.Status != model.StatusCompleted {
		if _, err := s.store.AddActive(ctx, t.AssigneeID, -1); err != nil {
			s.log.Warn(ctx, "could not release active slot",
				logger.String("worker_id", t.AssigneeID),
				logger.Error(err),
			)
		}
	}
	return s.store.DeleteTask(ctx, taskID)
}

// Analytics builds the performance report for one worker.
func (s *Service) Analytics(ctx context.Context, workerID string) (analytics.Report, error) {
	w, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.BuildReport(w), nil
}

// TopN returns the top n ranking entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.rank.TopN(ctx, n)
}

// RankOf returns the ranking entry for one worker.
func (s *Service) RankOf(ctx context.Context, workerID string) (repository.Entry, error) {
	return s.rank.Rank(ctx, workerID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"shards":     s.shardCount,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["rankedWorkers"] = s.rank.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
