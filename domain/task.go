package domain

import (
	"fmt"
	"time"

	"github.com/fundwit/go-commons/types"
)

type TaskStatus string

const (
	TaskStatusNotStarted = TaskStatus("NOT_STARTED")
	TaskStatusInProgress = TaskStatus("IN_PROGRESS")
	TaskStatusCompleted  = TaskStatus("COMPLETED")
	TaskStatusOnHold     = TaskStatus("ON_HOLD")
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOnHold:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    = TaskPriority("low")
	TaskPriorityMedium = TaskPriority("medium")
	TaskPriorityHigh   = TaskPriority("high")
	TaskPriorityUrgent = TaskPriority("urgent")
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL" gorm:"index:task_project_idx"`

	Title       string       `json:"title"`
	Description string       `json:"description" sql:"type:TEXT"`
	Status      TaskStatus   `json:"status" sql:"type:VARCHAR(16) NOT NULL"`
	Priority    TaskPriority `json:"priority" sql:"type:VARCHAR(16) NOT NULL"`

	AssigneeID types.ID `json:"assigneeId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CreatorID  types.ID `json:"creatorId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Tags           Tags    `json:"tags" sql:"type:TEXT"`
	EstimatedHours float64 `json:"estimatedHours"`
	ActualHours    float64 `json:"actualHours"`

	DueDate     types.Timestamp `json:"dueDate" sql:"type:DATETIME(6)"`
	CompletedAt types.Timestamp `json:"completedAt" sql:"type:DATETIME(6)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

// ApplyStatus moves the task into status and keeps the completion time in line with it.
func (t *Task) ApplyStatus(status TaskStatus, now types.Timestamp) {
	if status == TaskStatusCompleted {
		if t.Status != TaskStatusCompleted || t.CompletedAt.Time().IsZero() {
			t.CompletedAt = now
		}
	} else {
		t.CompletedAt = types.Timestamp{}
	}
	t.Status = status
}

func (t *Task) IsOverdue(now time.Time) bool {
	due := t.DueDate.Time()
	if due.IsZero() || t.Status == TaskStatusCompleted {
		return false
	}
	return now.After(due)
}

// IsDueWithin reports whether an open task is due between now and now + days.
func (t *Task) IsDueWithin(now time.Time, days int) bool {
	due := t.DueDate.Time()
	if due.IsZero() || t.Status == TaskStatusCompleted {
		return false
	}
	return !due.Before(now) && !due.After(now.AddDate(0, 0, days))
}

type TaskCreation struct {
	ProjectID   types.ID        `json:"projectId" binding:"required"`
	Title       string          `json:"title" binding:"required,lte=200"`
	Description string          `json:"description" binding:"lte=2000"`
	Status      TaskStatus      `json:"status" binding:"omitempty,taskstatus"`
	Priority    TaskPriority    `json:"priority"`
	AssigneeID  types.ID        `json:"assigneeId"`
	DueDate     types.Timestamp `json:"dueDate"`

	Tags           []string `json:"tags" binding:"lte=20,dive,lte=50"`
	EstimatedHours float64  `json:"estimatedHours" binding:"gte=0"`
	ActualHours    float64  `json:"actualHours" binding:"gte=0"`
}

type TaskUpdating struct {
	Title       string          `json:"title" binding:"required,lte=200"`
	Description string          `json:"description" binding:"lte=2000"`
	Priority    TaskPriority    `json:"priority" binding:"required"`
	AssigneeID  types.ID        `json:"assigneeId"`
	DueDate     types.Timestamp `json:"dueDate"`

	Tags           []string `json:"tags" binding:"lte=20,dive,lte=50"`
	EstimatedHours float64  `json:"estimatedHours" binding:"gte=0"`
	ActualHours    float64  `json:"actualHours" binding:"gte=0"`
}

func validateHours(estimated, actual float64) error {
	if estimated < 0 || actual < 0 {
		return fmt.Errorf("%w: hours must not be negative", ErrInvalidArgument)
	}
	return nil
}

func (c *TaskCreation) Validate() error {
	return validateHours(c.EstimatedHours, c.ActualHours)
}

func (d *TaskUpdating) Validate() error {
	return validateHours(d.EstimatedHours, d.ActualHours)
}

type TaskStatusChanging struct {
	Status TaskStatus `json:"status" binding:"required,taskstatus"`
}

type TaskQuery struct {
	ProjectID  types.ID   `form:"projectId" binding:"required"`
	Status     TaskStatus `form:"status"`
	AssigneeID types.ID   `form:"assigneeId"`
	Tag        string     `form:"tag"`
}

type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Overdue    int `json:"overdue"`
}
