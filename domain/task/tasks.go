package task

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"worksync/bizerror"
	"worksync/domain"
	"worksync/domain/label"
	"worksync/domain/namespace"
	"worksync/event"
	"worksync/idgen"
	"worksync/persistence"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

const (
	DefaultDueSoonDays = 7
	MaxDueSoonDays     = 365
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
)

func CreateTask(c *domain.TaskCreation, s *session.Session) (*domain.Task, error) {
	status := c.Status
	if status == "" {
		status = domain.TaskStatusNotStarted
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown task status '%s'", domain.ErrInvalidArgument, status)
	}
	priority := c.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown task priority '%s'", domain.ErrInvalidArgument, priority)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var created domain.Task
	var ev *event.EventRecord
	err := namespace.WithProjectAggregate(s, c.ProjectID, func(tx *gorm.DB, a *domain.ProjectAggregate) error {
		if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleEditor); err != nil {
			return err
		}
		assignee := c.AssigneeID
		if assignee == 0 && a.Settings.AutoAssignTasks {
			assignee = s.Identity.ID
		}
		if err := checkAssignee(a, assignee); err != nil {
			return err
		}
		tags, err := taskTags(tx, a.ID, c.Tags, s)
		if err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		t := domain.Task{ID: idgen.NextID(idWorker), ProjectID: a.ID, Title: c.Title, Description: c.Description,
			Priority: priority, AssigneeID: assignee, CreatorID: s.Identity.ID, DueDate: c.DueDate,
			Tags: tags, EstimatedHours: c.EstimatedHours, ActualHours: c.ActualHours,
			CreateTime: now, UpdateTime: now}
		t.ApplyStatus(status, now)
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		a.Tasks = append(a.Tasks, t)
		if err := namespace.SaveProjectProgress(tx, a); err != nil {
			return err
		}

		ev, err = event.CreateEvent(event.SourceTypeTask, t.ID, t.Title, a.ID, event.EventCategoryCreated, nil, &s.Identity, now, tx)
		created = t
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), ev)
	return &created, nil
}

// UpdateTask changes the descriptive fields of a task, its status is left untouched.
func UpdateTask(id types.ID, d *domain.TaskUpdating, s *session.Session) error {
	if !d.Priority.Valid() {
		return fmt.Errorf("%w: unknown task priority '%s'", domain.ErrInvalidArgument, d.Priority)
	}
	if err := d.Validate(); err != nil {
		return err
	}
	projectId, err := taskProjectID(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), id)
	if err != nil {
		return err
	}

	var ev *event.EventRecord
	err = namespace.WithProjectAggregate(s, projectId, func(tx *gorm.DB, a *domain.ProjectAggregate) error {
		t := a.FindTask(id)
		if t == nil {
			return gorm.ErrRecordNotFound
		}
		if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleEditor); err != nil {
			return err
		}
		if err := checkAssignee(a, d.AssigneeID); err != nil {
			return err
		}
		tags, err := taskTags(tx, a.ID, d.Tags, s)
		if err != nil {
			return err
		}

		props := event.UpdatedProperties{}
		if t.Title != d.Title {
			props = append(props, event.UpdatedProperty{PropertyName: "title", OldValue: t.Title, NewValue: d.Title})
		}
		if t.Priority != d.Priority {
			props = append(props, event.UpdatedProperty{PropertyName: "priority", OldValue: string(t.Priority), NewValue: string(d.Priority)})
		}
		if t.AssigneeID != d.AssigneeID {
			props = append(props, event.UpdatedProperty{PropertyName: "assignee", OldValue: t.AssigneeID.String(), NewValue: d.AssigneeID.String()})
		}
		if old, changed := strings.Join(t.Tags, ","), strings.Join(tags, ","); old != changed {
			props = append(props, event.UpdatedProperty{PropertyName: "tags", OldValue: old, NewValue: changed})
		}

		now := types.CurrentTimestamp()
		changes := map[string]interface{}{"title": d.Title, "description": d.Description, "priority": d.Priority,
			"assignee_id": d.AssigneeID, "due_date": d.DueDate, "tags": tags, "estimated_hours": d.EstimatedHours,
			"actual_hours": d.ActualHours, "update_time": now}
		if err := tx.Model(&domain.Task{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent(event.SourceTypeTask, id, d.Title, a.ID, event.EventCategoryPropertyUpdated, props, &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return err
	}
	event.Dispatch(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), ev)
	return nil
}

// ChangeTaskStatus moves a task into another status and persists the recomputed project progress with it.
func ChangeTaskStatus(id types.ID, c *domain.TaskStatusChanging, s *session.Session) (*domain.Task, error) {
	if !c.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown task status '%s'", domain.ErrInvalidArgument, c.Status)
	}
	projectId, err := taskProjectID(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), id)
	if err != nil {
		return nil, err
	}

	var changed domain.Task
	var ev *event.EventRecord
	err = namespace.WithProjectAggregate(s, projectId, func(tx *gorm.DB, a *domain.ProjectAggregate) error {
		ev = nil
		t := a.FindTask(id)
		if t == nil {
			return gorm.ErrRecordNotFound
		}
		if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleEditor); err != nil {
			return err
		}
		changed = *t
		if t.Status == c.Status {
			return nil
		}

		oldStatus := t.Status
		now := types.CurrentTimestamp()
		t.ApplyStatus(c.Status, now)
		t.UpdateTime = now
		changes := map[string]interface{}{"status": t.Status, "completed_at": t.CompletedAt, "update_time": now}
		if err := tx.Model(&domain.Task{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		if err := namespace.SaveProjectProgress(tx, a); err != nil {
			return err
		}
		changed = *t

		var err error
		ev, err = event.CreateEvent(event.SourceTypeTask, id, t.Title, a.ID, event.EventCategoryStatusChanged,
			event.UpdatedProperties{{PropertyName: "status", OldValue: string(oldStatus), NewValue: string(t.Status)}}, &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), ev)
	return &changed, nil
}

func DeleteTask(id types.ID, s *session.Session) error {
	projectId, err := taskProjectID(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), id)
	if err != nil {
		return err
	}

	var ev *event.EventRecord
	err = namespace.WithProjectAggregate(s, projectId, func(tx *gorm.DB, a *domain.ProjectAggregate) error {
		t := a.FindTask(id)
		if t == nil {
			return gorm.ErrRecordNotFound
		}
		if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleAdmin); err != nil {
			return err
		}
		title := t.Title
		if err := tx.Where("id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		for _, dependent := range []interface{}{&domain.CheckItem{}, &domain.TimeLog{}, &domain.Comment{}} {
			if err := tx.Where("task_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		a.RemoveTask(id)
		if err := namespace.SaveProjectProgress(tx, a); err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent(event.SourceTypeTask, id, title, a.ID, event.EventCategoryDeleted, nil, &s.Identity, a.UpdateTime, tx)
		return err
	})
	if err != nil {
		return err
	}
	event.Dispatch(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), ev)
	return nil
}

func DetailTask(id types.ID, s *session.Session) (*domain.Task, error) {
	t, _, err := namespace.RequireTaskAccess(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), id, s, domain.MemberRoleViewer)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func QueryTasks(q *domain.TaskQuery, s *session.Session) (*[]domain.Task, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown task status '%s'", domain.ErrInvalidArgument, q.Status)
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	a, err := namespace.LoadProjectMembership(db, q.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleViewer); err != nil {
		return nil, err
	}

	query := db.Where("project_id = ?", q.ProjectID)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.AssigneeID != 0 {
		query = query.Where("assignee_id = ?", q.AssigneeID)
	}
	if tag := strings.TrimSpace(q.Tag); tag != "" {
		query = label.TaggedWith(query, tag)
	}
	tasks := []domain.Task{}
	if err := query.Order("create_time ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return &tasks, nil
}

// QueryOverdueTasks lists open tasks past their due date in the projects visible to the session user.
func QueryOverdueTasks(s *session.Session) (*[]domain.Task, error) {
	now := time.Now()
	return queryOpenTasks(s, func(t *domain.Task) bool { return t.IsOverdue(now) })
}

// QueryTasksDueSoon lists open tasks due within the coming days in the projects visible to the session user.
func QueryTasksDueSoon(days int, s *session.Session) (*[]domain.Task, error) {
	if days == 0 {
		days = DefaultDueSoonDays
	}
	if days < 0 || days > MaxDueSoonDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrInvalidArgument, MaxDueSoonDays)
	}
	now := time.Now()
	return queryOpenTasks(s, func(t *domain.Task) bool { return t.IsDueWithin(now, days) })
}

func queryOpenTasks(s *session.Session, filter func(t *domain.Task) bool) (*[]domain.Task, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	visible, err := namespace.VisibleProjectIDs(db, s)
	if err != nil {
		return nil, err
	}
	result := []domain.Task{}
	if len(visible) == 0 {
		return &result, nil
	}

	query := db.Where("status <> ? AND project_id IN (?)", domain.TaskStatusCompleted, visible)
	var tasks []domain.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	for i := range tasks {
		if filter(&tasks[i]) {
			result = append(result, tasks[i])
		}
	}
	sortByDueDate(result)
	return &result, nil
}

func taskProjectID(db *gorm.DB, taskId types.ID) (types.ID, error) {
	t := domain.Task{}
	if err := db.Select("project_id").Where("id = ?", taskId).First(&t).Error; err != nil {
		return 0, err
	}
	return t.ProjectID, nil
}

// taskTags normalizes tags and registers them as labels of the project
func taskTags(tx *gorm.DB, projectId types.ID, tags []string, s *session.Session) (domain.Tags, error) {
	labels, err := label.EnsureLabels(tx, projectId, tags, s.Identity.ID)
	if err != nil {
		return nil, err
	}
	result := make(domain.Tags, 0, len(labels))
	for _, l := range labels {
		result = append(result, l.Name)
	}
	return result, nil
}

// checkAssignee requires the assignee, if any, to be able to see the project
func checkAssignee(a *domain.ProjectAggregate, assigneeId types.ID) error {
	if assigneeId == 0 {
		return nil
	}
	ok, err := a.HasAccess(assigneeId, domain.MemberRoleViewer)
	if err != nil {
		return err
	}
	if !ok {
		return bizerror.ErrTaskAssigneeInvalid
	}
	return nil
}

func sortByDueDate(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Time().Before(tasks[j].DueDate.Time())
	})
}
