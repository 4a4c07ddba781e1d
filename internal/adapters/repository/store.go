// Package repository provides persistence for workers, tasks and the
// performance ranking, all backed by in-memory implementations.
package repository

import (
	"context"

	"github.com/okian/delega/internal/domain/model"
)

// Store provides read/write access to workers and tasks.
type Store interface {
	// PutWorker inserts or replaces a worker.
	PutWorker(ctx context.Context, w *model.Worker) error
	// GetWorker returns a worker by ID, ErrNotFound when unknown.
	GetWorker(ctx context.Context, id string) (*model.Worker, error)
	// UpdateWorker applies mutate to a worker under the store lock.
	UpdateWorker(ctx context.Context, id string, mutate func(*model.Worker)) (*model.Worker, error)
	// ListWorkersByManager returns every worker reporting to a manager.
	ListWorkersByManager(ctx context.Context, managerID string) ([]*model.Worker, error)
	// AddActive adjusts a worker's active task count by delta, clamping
	// at zero, and returns the new count.
	AddActive(ctx context.Context, workerID string, delta int) (int, error)

	// CreateTask persists a new task.
	CreateTask(ctx context.Context, t *model.Task) error
	// GetTask returns a task by ID, ErrNotFound when unknown.
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// UpdateTask replaces an existing task, ErrNotFound when unknown.
	UpdateTask(ctx context.Context, t *model.Task) error
	// DeleteTask removes a task, ErrNotFound when unknown.
	DeleteTask(ctx context.Context, id string) error
	// ListTasksByManager returns every task created by a manager.
	ListTasksByManager(ctx context.Context, managerID string) ([]*model.Task, error)
	// ListTasksByAssignee returns every task assigned to a worker.
	ListTasksByAssignee(ctx context.Context, workerID string) ([]*model.Task, error)
}
