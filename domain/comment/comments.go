package comment

import (
	"errors"
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
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})
)

const commentsProperty = "comments"

// CreateComment adds a comment to a task, any user with access to the project may comment while the project allows it.
func CreateComment(c *domain.CommentCreation, s *session.Session) (*domain.Comment, error) {
	var created domain.Comment
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		t, a, err := namespace.RequireTaskAccess(tx, c.TaskID, s, domain.MemberRoleViewer)
		if err != nil {
			return err
		}
		if !a.Settings.AllowComments {
			return fmt.Errorf("%w: comments are disabled in project %d", domain.ErrPreconditionFailed, a.ID)
		}
		created = domain.Comment{ID: idgen.NextID(idWorker), TaskID: t.ID, ProjectID: t.ProjectID, AuthorID: s.Identity.ID,
			AuthorName: s.Identity.DisplayName(), Content: c.Content, CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeTask, t.ID, t.Title, t.ProjectID, event.EventCategoryPropertyUpdated,
			event.UpdatedProperties{{PropertyName: commentsProperty, NewValue: created.ID.String()}}, &s.Identity, created.CreateTime, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(db, ev)
	return &created, nil
}

func QueryComments(q *domain.CommentQuery, s *session.Session) ([]domain.Comment, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	if _, _, err := namespace.RequireTaskAccess(db, q.TaskID, s, domain.MemberRoleViewer); err != nil {
		return nil, err
	}
	comments := []domain.Comment{}
	if err := db.Where("task_id = ?", q.TaskID).Order("create_time ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes a comment, allowed for its author and project admins. Deleting a missing comment succeeds.
func DeleteComment(id types.ID, s *session.Session) error {
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		c := domain.Comment{}
		if err := tx.Where("id = ?", id).First(&c).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		} else if err != nil {
			return err
		}
		required := domain.MemberRoleAdmin
		if c.AuthorID == s.Identity.ID {
			required = domain.MemberRoleViewer
		}
		t, _, err := namespace.RequireTaskAccess(tx, c.TaskID, s, required)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeTask, t.ID, t.Title, t.ProjectID, event.EventCategoryPropertyUpdated,
			event.UpdatedProperties{{PropertyName: commentsProperty, OldValue: c.ID.String()}}, &s.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err != nil {
		return err
	}
	event.Dispatch(db, ev)
	return nil
}
