package domain

import "time"

// Status is the lifecycle state of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Todo represents a todo item
type Todo struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"not null;default:''" json:"description"`
	Status      Status    `gorm:"size:50;not null;default:pending" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"` // immutable after insert
}

// TodoWithOwner is a list row joined with its owner's name and email.
type TodoWithOwner struct {
	Todo      `gorm:"embedded"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// Stats are todo counts by status.
type Stats struct {
	TotalTodos     int64 `json:"totalTodos"`
	PendingTodos   int64 `json:"pendingTodos"`
	CompletedTodos int64 `json:"completedTodos"`
}
