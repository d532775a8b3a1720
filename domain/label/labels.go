package label

import (
	"encoding/json"
	"fmt"
	"worksync/domain"
	"worksync/domain/namespace"
	"worksync/event"
	"worksync/idgen"
	"worksync/persistence"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	labelIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
)

func CreateLabel(c *domain.LabelCreation, s *session.Session) (*domain.Label, error) {
	var created *domain.Label
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		a, err := namespace.LoadProjectMembership(tx, c.ProjectID)
		if err != nil {
			return err
		}
		if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleEditor); err != nil {
			return err
		}
		labels, err := EnsureLabels(tx, a.ID, []string{c.Name}, s.Identity.ID)
		if err != nil {
			return err
		}
		if len(labels) == 0 {
			return fmt.Errorf("%w: blank label name", domain.ErrInvalidArgument)
		}
		created = &labels[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func QueryLabels(q *domain.LabelQuery, s *session.Session) ([]domain.Label, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	a, err := namespace.LoadProjectMembership(db, q.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleViewer); err != nil {
		return nil, err
	}
	labels := []domain.Label{}
	if err := db.Where("project_id = ?", q.ProjectID).Order("id ASC").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

// EnsureLabels returns the labels of the project named by tags, the missing ones are created.
func EnsureLabels(tx *gorm.DB, projectId types.ID, tags []string, creatorId types.ID) ([]domain.Label, error) {
	names := domain.NormalizeTags(tags)
	if len(names) == 0 {
		return []domain.Label{}, nil
	}
	var existing []domain.Label
	if err := tx.Where("project_id = ? AND name IN (?)", projectId, []string(names)).Find(&existing).Error; err != nil {
		return nil, err
	}
	byName := map[string]domain.Label{}
	for _, l := range existing {
		byName[l.Name] = l
	}

	now := types.CurrentTimestamp()
	result := make([]domain.Label, 0, len(names))
	for _, name := range names {
		l, found := byName[name]
		if !found {
			l = domain.Label{ID: idgen.NextID(labelIdWorker), Name: name, ProjectID: projectId, CreatorID: creatorId, CreateTime: now}
			if err := tx.Create(&l).Error; err != nil {
				return nil, err
			}
		}
		result = append(result, l)
	}
	return result, nil
}

// TaggedWith narrows a task query to tasks carrying tag.
func TaggedWith(query *gorm.DB, tag string) *gorm.DB {
	quoted, _ := json.Marshal(tag)
	return query.Where("tags LIKE ? "+persistence.LikeEscapeClause, "%"+persistence.EscapeLike(string(quoted))+"%")
}

// DeleteLabel removes a label from the project and strips it from the tags of all tasks.
func DeleteLabel(id types.ID, s *session.Session) error {
	var events []*event.EventRecord
	err := persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
		l := domain.Label{}
		if err := tx.Where("id = ?", id).First(&l).Error; err != nil {
			return err
		}
		a, err := namespace.LoadProjectMembership(tx, l.ProjectID)
		if err != nil {
			return err
		}
		if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleAdmin); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Label{}).Error; err != nil {
			return err
		}

		var tasks []domain.Task
		if err := TaggedWith(tx.Where("project_id = ?", l.ProjectID), l.Name).Find(&tasks).Error; err != nil {
			return err
		}
		now := types.CurrentTimestamp()
		for _, t := range tasks {
			if !t.Tags.Contains(l.Name) {
				continue
			}
			if err := tx.Model(&domain.Task{}).Where("id = ?", t.ID).
				Updates(map[string]interface{}{"tags": t.Tags.Without(l.Name), "update_time": now}).Error; err != nil {
				return err
			}
			ev, err := event.CreateEvent(event.SourceTypeTask, t.ID, t.Title, t.ProjectID, event.EventCategoryPropertyUpdated,
				event.UpdatedProperties{{PropertyName: "tags", OldValue: l.Name}}, &s.Identity, now, tx)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return err
	}
	event.Dispatch(persistence.ActiveDataSourceManager.GormDB(s.Ctx()), events...)
	return nil
}
