package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

// TimeLog records a period a user spent on a task, EndTime stays zero while tracking runs.
type TimeLog struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TaskID    types.ID `json:"taskId" sql:"type:BIGINT UNSIGNED NOT NULL" gorm:"index:timelog_task_idx"`
	ProjectID types.ID `json:"projectId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	UserID      types.ID `json:"userId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserName    string   `json:"userName"`
	Description string   `json:"description"`

	BeginTime types.Timestamp `json:"beginTime" sql:"type:DATETIME(6) NOT NULL"`
	EndTime   types.Timestamp `json:"endTime" sql:"type:DATETIME(6)"`
}

func (l *TimeLog) Active() bool {
	return l.EndTime.Time().IsZero()
}

// Duration is zero for a running log.
func (l *TimeLog) Duration() time.Duration {
	if l.Active() {
		return 0
	}
	return l.EndTime.Time().Sub(l.BeginTime.Time())
}

// TotalTimeSpent sums up the finished logs.
func TotalTimeSpent(logs []TimeLog) time.Duration {
	var total time.Duration
	for i := range logs {
		total += logs[i].Duration()
	}
	return total
}

type TimeTrackingStart struct {
	TaskID      types.ID `json:"taskId" binding:"required"`
	Description string   `json:"description" binding:"lte=500"`
}

type TimeTrackingStop struct {
	TaskID types.ID `json:"taskId" binding:"required"`
}

type TimeLogQuery struct {
	TaskID types.ID `form:"taskId" binding:"required"`
}

type TimeLogSummary struct {
	Logs         []TimeLog `json:"logs"`
	TotalSeconds int64     `json:"totalSeconds"`
}
