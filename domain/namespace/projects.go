package namespace

import (
	"fmt"
	"strings"
	"time"
	"worksync/account"
	"worksync/domain"
	"worksync/event"
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

func CreateProject(c *domain.ProjectCreating, s *session.Session) (*domain.Project, error) {
	if err := validateDates(c.StartDate, c.EndDate); err != nil {
		return nil, err
	}
	now := types.CurrentTimestamp()
	tags := c.Tags
	if tags == nil {
		tags = domain.Tags{}
	}
	startDate := c.StartDate
	if startDate.Time().IsZero() {
		startDate = now
	}
	settings := domain.DefaultProjectSettings()
	if c.Settings != nil {
		settings = *c.Settings
	}
	p := domain.Project{ID: idgen.NextID(idWorker), Name: c.Name, Description: c.Description, Status: domain.ProjectStatusActive,
		Tags: tags, OwnerID: s.Identity.ID, Progress: 0, Version: 0, StartDate: startDate, EndDate: c.EndDate,
		IsPublic: c.IsPublic, Settings: settings, CreateTime: now, UpdateTime: now}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(event.SourceTypeProject, p.ID, p.Name, p.ID, event.EventCategoryCreated, nil, &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(db, ev)
	return &p, nil
}

// QueryProjects lists projects visible to the session user, progress is derived from the current task counts.
func QueryProjects(q *domain.ProjectQuery, s *session.Session) (*[]domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	visible, err := VisibleProjectIDs(db, s)
	if err != nil {
		return nil, err
	}

	projects := []domain.Project{}
	if len(visible) == 0 {
		return &projects, nil
	}
	query := db.Model(&domain.Project{}).Where("id IN (?)", visible)
	if q != nil && q.Status != "" {
		if !q.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown project status '%s'", domain.ErrInvalidArgument, q.Status)
		}
		query = query.Where("status = ?", q.Status)
	}
	if q != nil && strings.TrimSpace(q.Name) != "" {
		query = query.Where("name LIKE ? "+persistence.LikeEscapeClause, "%"+persistence.EscapeLike(strings.TrimSpace(q.Name))+"%")
	}
	if err := query.Order("create_time DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return &projects, nil
	}

	ids := make([]types.ID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	counts, err := queryTaskCounts(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		c := counts[projects[i].ID]
		projects[i].Progress = domain.ProgressRatio(c.Completed, c.Total)
	}
	return &projects, nil
}

type taskCount struct {
	ProjectID types.ID
	Total     int
	Completed int
}

func queryTaskCounts(db *gorm.DB, projectIds []types.ID) (map[types.ID]taskCount, error) {
	var counts []taskCount
	err := db.Model(&domain.Task{}).
		Select("project_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed", domain.TaskStatusCompleted).
		Where("project_id IN (?)", projectIds).Group("project_id").Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	result := map[types.ID]taskCount{}
	for _, c := range counts {
		result[c.ProjectID] = c
	}
	return result, nil
}

func DetailProject(id types.ID, s *session.Session) (*domain.ProjectDetail, error) {
	a, err := LoadProjectAggregate(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), id)
	if err != nil {
		return nil, err
	}
	if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleViewer); err != nil {
		return nil, err
	}
	if _, err := a.RecomputeProgress(); err != nil {
		return nil, err
	}
	return a.Detail(time.Now()), nil
}

func UpdateProject(id types.ID, d *domain.ProjectUpdating, s *session.Session) error {
	if !d.Status.Valid() {
		return fmt.Errorf("%w: unknown project status '%s'", domain.ErrInvalidArgument, d.Status)
	}
	var ev *event.EventRecord
	err := WithProjectAggregate(s, id, func(tx *gorm.DB, a *domain.ProjectAggregate) error {
		if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleAdmin); err != nil {
			return err
		}
		if err := validateDates(a.StartDate, d.EndDate); err != nil {
			return err
		}
		tags := d.Tags
		if tags == nil {
			tags = domain.Tags{}
		}
		props := event.UpdatedProperties{}
		if a.Name != d.Name {
			props = append(props, event.UpdatedProperty{PropertyName: "name", OldValue: a.Name, NewValue: d.Name})
		}
		if a.Status != d.Status {
			props = append(props, event.UpdatedProperty{PropertyName: "status", OldValue: string(a.Status), NewValue: string(d.Status)})
		}
		changes := map[string]interface{}{"name": d.Name, "description": d.Description, "status": d.Status, "tags": tags, "end_date": d.EndDate}
		if d.IsPublic != nil {
			changes["is_public"] = *d.IsPublic
		}
		if d.Settings != nil {
			changes["setting_allow_comments"] = d.Settings.AllowComments
			changes["setting_allow_file_uploads"] = d.Settings.AllowFileUploads
			changes["setting_auto_assign_tasks"] = d.Settings.AutoAssignTasks
		}
		if err := saveProjectChanges(tx, a, changes); err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(event.SourceTypeProject, a.ID, d.Name, a.ID, event.EventCategoryPropertyUpdated, props, &s.Identity, a.UpdateTime, tx)
		return err
	})
	if err != nil {
		return err
	}
	event.Dispatch(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), ev)
	return nil
}

// DeleteProject deletes the project with its members, labels and tasks, only the owner may do it.
func DeleteProject(id types.ID, s *session.Session) error {
	var events []*event.EventRecord
	err := WithProjectAggregate(s, id, func(tx *gorm.DB, a *domain.ProjectAggregate) error {
		events = nil
		if !a.IsOwner(s.Identity.ID) {
			return domain.ErrAccessDenied
		}
		db := tx.Model(&domain.Project{}).Where("id = ? AND version = ?", a.ID, a.Version).Delete(&domain.Project{})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return fmt.Errorf("%w: project %d", domain.ErrConcurrentModification, a.ID)
		}
		if err := tx.Where("project_id = ?", a.ID).Delete(&domain.ProjectMember{}).Error; err != nil {
			return err
		}
		for _, dependent := range []interface{}{&domain.Task{}, &domain.CheckItem{}, &domain.TimeLog{}, &domain.Comment{}, &domain.Label{}} {
			if err := tx.Where("project_id = ?", a.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}

		now := types.CurrentTimestamp()
		for _, t := range a.Tasks {
			ev, err := event.CreateEvent(event.SourceTypeTask, t.ID, t.Title, a.ID, event.EventCategoryDeleted, nil, &s.Identity, now, tx)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		ev, err := event.CreateEvent(event.SourceTypeProject, a.ID, a.Name, a.ID, event.EventCategoryDeleted, nil, &s.Identity, now, tx)
		if err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return err
	}
	event.Dispatch(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), events...)
	return nil
}

// TransferProjectOwnership hands the project over to another user, the previous owner stays as an admin member.
func TransferProjectOwnership(id types.ID, t *domain.ProjectOwnerTransfer, s *session.Session) error {
	var ev *event.EventRecord
	err := WithProjectAggregate(s, id, func(tx *gorm.DB, a *domain.ProjectAggregate) error {
		if !a.IsOwner(s.Identity.ID) {
			return domain.ErrAccessDenied
		}
		if t.OwnerID == a.OwnerID {
			return nil
		}
		if _, err := account.FindUser(tx, t.OwnerID); err != nil {
			return err
		}

		previousOwner := a.OwnerID
		if err := tx.Where("project_id = ? AND user_id = ?", a.ID, t.OwnerID).Delete(&domain.ProjectMember{}).Error; err != nil {
			return err
		}
		now := types.CurrentTimestamp()
		if err := tx.Save(&domain.ProjectMember{ProjectID: a.ID, UserID: previousOwner, Role: domain.MemberRoleAdmin, CreateTime: now}).Error; err != nil {
			return err
		}
		if err := saveProjectChanges(tx, a, map[string]interface{}{"owner_id": t.OwnerID}); err != nil {
			return err
		}
		a.OwnerID = t.OwnerID

		var err error
		ev, err = event.CreateEvent(event.SourceTypeProject, a.ID, a.Name, a.ID, event.EventCategoryMemberUpdated,
			event.UpdatedProperties{{PropertyName: "owner", OldValue: previousOwner.String(), NewValue: t.OwnerID.String()}},
			&s.Identity, now, tx)
		return err
	})
	if err != nil {
		return err
	}
	event.Dispatch(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), ev)
	return nil
}

func QueryProjectNames(db *gorm.DB, ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	var records []domain.Project
	if err := db.Model(&domain.Project{}).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.Name
	}
	return result, nil
}

func validateDates(start, end types.Timestamp) error {
	if !start.Time().IsZero() && !end.Time().IsZero() && end.Time().Before(start.Time()) {
		return fmt.Errorf("%w: end date is before start date", domain.ErrInvalidArgument)
	}
	return nil
}
