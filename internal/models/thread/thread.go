package thread

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Thread struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     *string   `json:"title,omitempty" db:"title"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const StatusActive Status = "active"
const StatusArchived Status = "archived"

var Statuses = []Status{StatusActive, StatusArchived}

var (
	ErrAlreadyArchived = errors.New("thread is already archived")
	ErrNotArchived     = errors.New("thread is not archived")
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

func (t *Thread) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}

func (t *Thread) Archive(now time.Time) error {
	if t.Status == StatusArchived {
		return ErrAlreadyArchived
	}
	t.Status = StatusArchived
	t.UpdatedAt = now
	return nil
}

func (t *Thread) Unarchive(now time.Time) error {
	if t.Status != StatusArchived {
		return ErrNotArchived
	}
	t.Status = StatusActive
	t.UpdatedAt = now
	return nil
}

func (t *Thread) Clone() *Thread {
	c := *t
	if t.Title != nil {
		title := *t.Title
		c.Title = &title
	}
	return &c
}
