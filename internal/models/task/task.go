package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Status      Status     `json:"status" db:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type Status string

const StatusActive Status = "active"
const StatusCompleted Status = "completed"
const StatusDeleted Status = "deleted"

var Statuses = []Status{StatusActive, StatusCompleted, StatusDeleted}

var (
	ErrAlreadyCompleted = errors.New("task is already completed")
	ErrNotCompleted     = errors.New("task is not completed")
	ErrDeleted          = errors.New("task is deleted")
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDeleted:
		return true
	}
	return false
}

func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}

// Complete moves an active task to completed and stamps CompletedAt.
func (t *Task) Complete(now time.Time) error {
	switch t.Status {
	case StatusCompleted:
		return ErrAlreadyCompleted
	case StatusDeleted:
		return ErrDeleted
	}
	t.Status = StatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

func (t *Task) Reactivate(now time.Time) error {
	switch t.Status {
	case StatusActive:
		return ErrNotCompleted
	case StatusDeleted:
		return ErrDeleted
	}
	t.Status = StatusActive
	t.CompletedAt = nil
	t.UpdatedAt = now
	return nil
}

// MarkDeleted is the soft delete; CompletedAt is cleared with the status.
func (t *Task) MarkDeleted(now time.Time) error {
	if t.Status == StatusDeleted {
		return ErrDeleted
	}
	t.Status = StatusDeleted
	t.CompletedAt = nil
	t.UpdatedAt = now
	return nil
}

func (t *Task) Clone() *Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return &c
}
