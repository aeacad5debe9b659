package thread

import (
	"time"

	"github.com/google/uuid"
)

// Message is immutable after creation; it goes away only with its thread.
type Message struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ThreadID  uuid.UUID `json:"thread_id" db:"thread_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Role string

const RoleUser Role = "user"
const RoleAssistant Role = "assistant"
