package domain

import (
	"github.com/fundwit/go-commons/types"
)

// CheckItem is one entry of the checklist of a task.
type CheckItem struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TaskID    types.ID `json:"taskId" sql:"type:BIGINT UNSIGNED NOT NULL" gorm:"index:checkitem_task_idx"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	DoneTime types.Timestamp `json:"doneTime" sql:"type:DATETIME(6)"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (i *CheckItem) Toggle(now types.Timestamp) {
	i.Done = !i.Done
	if i.Done {
		i.DoneTime = now
	} else {
		i.DoneTime = types.Timestamp{}
	}
}

type CheckItemCreation struct {
	TaskID types.ID `json:"taskId" binding:"required"`
	Name   string   `json:"name" binding:"required,lte=200"`
}

type Checklist struct {
	Items []CheckItem `json:"items"`
	// Completion is the rounded percentage of done items.
	Completion int `json:"completion"`
}

// ChecklistCompletion rates a task by its checklist. Without items a task is 100 once completed, else 0.
func ChecklistCompletion(status TaskStatus, items []CheckItem) int {
	if len(items) == 0 {
		if status == TaskStatusCompleted {
			return 100
		}
		return 0
	}
	done := 0
	for _, i := range items {
		if i.Done {
			done++
		}
	}
	return (done*200 + len(items)) / (2 * len(items))
}
