package models

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskFields is the writable part of a Task. A nil Completed means
// "false" on create and "keep the stored value" on update.
type TaskFields struct {
	Title       string
	Description string
	Deadline    time.Time
	Completed   *bool
}

// TaskForm carries the raw strings of the add/edit form.
type TaskForm struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Date        string `json:"date" form:"date"`
	Time        string `json:"time" form:"time"`
}

// TaskLists is the display split of a user's tasks.
type TaskLists struct {
	Uncompleted []Task `json:"uncompleted"`
	Completed   []Task `json:"completed"`
}
