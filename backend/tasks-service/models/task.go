package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusReview     TaskStatus = "REVIEW"
	StatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is the persisted work item. Version is the optimistic-concurrency
// token: it starts at 1 and goes up by exactly 1 on every successful update.
// CreatedBy and TeamID are set at creation and never change afterwards.
type Task struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	AssigneeID  string             `json:"assigneeId" bson:"assigneeId"`
	TeamID      string             `json:"teamId" bson:"teamId"`
	Status      TaskStatus         `json:"status" bson:"status"`
	Priority    TaskPriority       `json:"priority" bson:"priority"`
	DueDate     *time.Time         `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	CreatedBy   string             `json:"createdBy" bson:"createdBy"`
	Version     int                `json:"version" bson:"version"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateTaskInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	AssigneeID  string       `json:"assigneeId"`
	TeamID      string       `json:"teamId"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
}

// UpdateTaskInput carries the version the client last observed. Nil fields
// are left untouched; CreatedBy and TeamID are not updatable at all.
type UpdateTaskInput struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	AssigneeID  *string       `json:"assigneeId,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Version     int           `json:"version"`
}

// TaskFilter is a conjunction: every set field must match.
type TaskFilter struct {
	Status     *TaskStatus
	Priority   *TaskPriority
	AssigneeID *string
	CreatedBy  *string
	DueFrom    *time.Time
	DueTo      *time.Time
}

// TaskConflict describes a stale-version edit. ClientData is left nil for
// the caller to fill in; the server never resolves the conflict itself.
type TaskConflict struct {
	TaskID        string `json:"taskId"`
	ServerVersion int    `json:"serverVersion"`
	ClientVersion int    `json:"clientVersion"`
	ServerData    *Task  `json:"serverData"`
	ClientData    *Task  `json:"clientData"`
}
