package checklist

import (
	"errors"
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
	checkitemIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
)

const checklistProperty = "checklist"

func CreateCheckItem(c *domain.CheckItemCreation, s *session.Session) (*domain.CheckItem, error) {
	var created domain.CheckItem
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		t, _, err := namespace.RequireTaskAccess(tx, c.TaskID, s, domain.MemberRoleEditor)
		if err != nil {
			return err
		}
		created = domain.CheckItem{ID: idgen.NextID(checkitemIdWorker), TaskID: t.ID, ProjectID: t.ProjectID,
			Name: c.Name, CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeTask, t.ID, t.Title, t.ProjectID, event.EventCategoryPropertyUpdated,
			event.UpdatedProperties{{PropertyName: checklistProperty, NewValue: c.Name}}, &s.Identity, created.CreateTime, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(db, ev)
	return &created, nil
}

// ListCheckItems returns the checklist of a task with its completion rate.
func ListCheckItems(taskId types.ID, s *session.Session) (*domain.Checklist, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	t, _, err := namespace.RequireTaskAccess(db, taskId, s, domain.MemberRoleViewer)
	if err != nil {
		return nil, err
	}
	items := []domain.CheckItem{}
	if err := db.Where("task_id = ?", taskId).Order("create_time ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return &domain.Checklist{Items: items, Completion: domain.ChecklistCompletion(t.Status, items)}, nil
}

// ToggleCheckItem flips the done state of a check item.
func ToggleCheckItem(id types.ID, s *session.Session) (*domain.CheckItem, error) {
	var toggled domain.CheckItem
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&toggled).Error; err != nil {
			return err
		}
		t, _, err := namespace.RequireTaskAccess(tx, toggled.TaskID, s, domain.MemberRoleEditor)
		if err != nil {
			return err
		}
		now := types.CurrentTimestamp()
		toggled.Toggle(now)
		if err := tx.Model(&domain.CheckItem{}).Where("id = ?", id).
			Updates(map[string]interface{}{"done": toggled.Done, "done_time": toggled.DoneTime}).Error; err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeTask, t.ID, t.Title, t.ProjectID, event.EventCategoryPropertyUpdated,
			event.UpdatedProperties{{PropertyName: checklistProperty, OldValue: toggled.Name, NewValue: toggled.Name}}, &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(db, ev)
	return &toggled, nil
}

// DeleteCheckItem removes a check item, deleting a missing item succeeds.
func DeleteCheckItem(id types.ID, s *session.Session) error {
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		item := domain.CheckItem{}
		if err := tx.Where("id = ?", id).First(&item).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		t, _, err := namespace.RequireTaskAccess(tx, item.TaskID, s, domain.MemberRoleEditor)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&domain.CheckItem{}).Error; err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeTask, t.ID, t.Title, t.ProjectID, event.EventCategoryPropertyUpdated,
			event.UpdatedProperties{{PropertyName: checklistProperty, OldValue: item.Name}}, &s.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err != nil {
		return err
	}
	event.Dispatch(db, ev)
	return nil
}
