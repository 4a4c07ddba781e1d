package service

import "errors"

var (
	// ErrForbidden is returned when an actor touches a record another
	// manager owns.
	ErrForbidden = errors.New("record owned by another manager")
	// ErrNotAssignee is returned when a worker acts on a task assigned to
	// someone else.
	ErrNotAssignee = errors.New("task assigned to another worker")
	// ErrAlreadyCompleted is returned for lifecycle changes on a finished
	// task.
	ErrAlreadyCompleted = errors.New("task already completed")
	// ErrBackpressure is returned when the completion queue cannot accept
	// another event.
	ErrBackpressure = errors.New("completion queue full")
	// ErrInvalidWorker is returned when a worker registration is missing
	// required fields.
	ErrInvalidWorker = errors.New("worker name is required")
	// ErrInvalidDraft is returned when a task draft is missing required
	// fields.
	ErrInvalidDraft = errors.New("task title is required")
)
