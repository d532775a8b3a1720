package timelog

import (
	"fmt"
	"worksync/domain"
	"worksync/domain/namespace"
	"worksync/idgen"
	"worksync/persistence"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
)

// StartTimeTracking opens a time log of the session user on a task, at most one log per user and task runs at a time.
func StartTimeTracking(d *domain.TimeTrackingStart, s *session.Session) (*domain.TimeLog, error) {
	var record domain.TimeLog
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		t, _, err := namespace.RequireTaskAccess(tx, d.TaskID, s, domain.MemberRoleEditor)
		if err != nil {
			return err
		}
		active, err := findActiveLog(tx, t.ID, s.Identity.ID)
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return err
		}
		if active != nil {
			return fmt.Errorf("%w: time tracking of task %d is already running", domain.ErrPreconditionFailed, t.ID)
		}
		record = domain.TimeLog{ID: idgen.NextID(idWorker), TaskID: t.ID, ProjectID: t.ProjectID, UserID: s.Identity.ID,
			UserName: s.Identity.DisplayName(), Description: d.Description, BeginTime: types.CurrentTimestamp()}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// StopTimeTracking closes the running time log of the session user on a task.
func StopTimeTracking(d *domain.TimeTrackingStop, s *session.Session) (*domain.TimeLog, error) {
	var record *domain.TimeLog
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		t, _, err := namespace.RequireTaskAccess(tx, d.TaskID, s, domain.MemberRoleEditor)
		if err != nil {
			return err
		}
		record, err = findActiveLog(tx, t.ID, s.Identity.ID)
		if err != nil {
			return err
		}
		record.EndTime = types.CurrentTimestamp()
		return tx.Model(&domain.TimeLog{}).Where("id = ?", record.ID).Update("end_time", record.EndTime).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// QueryTimeLogs lists the time logs of a task, the total only counts finished logs.
func QueryTimeLogs(q *domain.TimeLogQuery, s *session.Session) (*domain.TimeLogSummary, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	if _, _, err := namespace.RequireTaskAccess(db, q.TaskID, s, domain.MemberRoleViewer); err != nil {
		return nil, err
	}
	logs := []domain.TimeLog{}
	if err := db.Where("task_id = ?", q.TaskID).Order("begin_time ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return &domain.TimeLogSummary{Logs: logs, TotalSeconds: int64(domain.TotalTimeSpent(logs).Seconds())}, nil
}

func findActiveLog(tx *gorm.DB, taskId, userId types.ID) (*domain.TimeLog, error) {
	var logs []domain.TimeLog
	if err := tx.Where("task_id = ? AND user_id = ?", taskId, userId).Order("begin_time DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	for i := range logs {
		if logs[i].Active() {
			return &logs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
