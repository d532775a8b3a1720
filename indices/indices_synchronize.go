package indices

import (
	"context"
	"fmt"
	"sync"
	"worksync/bizerror"
	"worksync/client/es"
	"worksync/domain"
	"worksync/domain/namespace"
	"worksync/event"
	"worksync/persistence"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	TaskIndexEventHandlerName = "taskIndexer"

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun starts a full sync in background, false is returned when one is already running
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.IsSystemAdmin() {
		return false, bizerror.ErrForbidden
	}
	return startSyncRun(), nil
}

// TriggerSyncRun is the scheduled entry of full sync
func TriggerSyncRun() {
	if !startSyncRun() {
		logrus.Info("indices full sync is already running, skipped")
	}
}

func startSyncRun() bool {
	lock.Lock()
	if running {
		lock.Unlock()
		return false
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		if err := IndicesFullSyncFunc(); err != nil {
			logrus.Errorf("indices full sync: %v", err)
		}
	}()
	waitRunning.Wait()
	return true
}

var (
	SyncBatchSize = 500
)

// IndicesFullSync reindexes all tasks page by page in id order
func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()
	if !es.Enabled() {
		return nil
	}

	ctx := context.Background()
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	var lastId types.ID
	total := 0
	for {
		var tasks []domain.Task
		if err := db.Where("id > ?", lastId).Order("id ASC").Limit(SyncBatchSize).Find(&tasks).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			logrus.Infof("indices full sync: %d tasks indexed", total)
			return nil
		}
		lastId = tasks[len(tasks)-1].ID

		names, err := namespace.QueryProjectNames(db, projectIdsOf(tasks))
		if err != nil {
			return err
		}
		if err := IndexTasks(ctx, tasks, names); err != nil {
			logrus.Warnf("indices full sync: error on index tasks after %d: %v", lastId, err)
		}
		total += len(tasks)
	}
}

// IndexTaskEventHandle keeps the task index in line with task events
func IndexTaskEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeTask || !es.Enabled() {
		return nil
	}

	ctx := context.Background()
	failed := func(format string, args ...interface{}) *event.EventHandleResult {
		return &event.EventHandleResult{Message: fmt.Sprintf(format, args...), HandlerIdentifier: TaskIndexEventHandlerName}
	}

	if e.EventCategory == event.EventCategoryDeleted {
		if err := es.DeleteDocumentByIdFunc(ctx, TaskIndexName, e.SourceID); err != nil {
			return failed("delete task index %d, %v", e.SourceID, err)
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: TaskIndexEventHandlerName}
	}

	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	t := domain.Task{}
	if err := db.Where("id = ?", e.SourceID).First(&t).Error; err != nil {
		if !gorm.IsRecordNotFoundError(err) {
			return failed("load task %d, %v", e.SourceID, err)
		}
		// stale event of a task removed since
		if err := es.DeleteDocumentByIdFunc(ctx, TaskIndexName, e.SourceID); err != nil {
			return failed("delete task index %d, %v", e.SourceID, err)
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: TaskIndexEventHandlerName}
	}
	names, err := namespace.QueryProjectNames(db, []types.ID{t.ProjectID})
	if err != nil {
		return failed("load project name of task %d, %v", e.SourceID, err)
	}
	if err := IndexTasks(ctx, []domain.Task{t}, names); err != nil {
		return failed("index task %d, %v", e.SourceID, err)
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: TaskIndexEventHandlerName}
}

func projectIdsOf(tasks []domain.Task) []types.ID {
	seen := map[types.ID]bool{}
	ids := []types.ID{}
	for _, t := range tasks {
		if !seen[t.ProjectID] {
			seen[t.ProjectID] = true
			ids = append(ids, t.ProjectID)
		}
	}
	return ids
}
