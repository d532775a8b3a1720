package namespace

import (
	"fmt"
	"worksync/account"
	"worksync/bizerror"
	"worksync/domain"
	"worksync/event"
	"worksync/persistence"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	QueryAccountNamesFunc = account.QueryAccountNames
)

// CreateProjectMember grants a role to a user, the role is replaced when the user is already a member.
func CreateProjectMember(d *domain.ProjectMemberCreation, s *session.Session) error {
	if !d.Role.Valid() {
		return fmt.Errorf("%w: unknown member role '%s'", domain.ErrInvalidArgument, d.Role)
	}
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		a, err := LoadProjectMembership(tx, d.ProjectID)
		if err != nil {
			return err
		}
		if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleAdmin); err != nil {
			return err
		}
		if a.IsOwner(d.UserID) {
			return bizerror.ErrProjectOwnerMember
		}
		// members can not change their own role
		if d.UserID == s.Identity.ID {
			return bizerror.ErrProjectMemberSelfGrant
		}
		if _, err := account.FindUser(tx, d.UserID); err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		oldRole := ""
		record := domain.ProjectMember{ProjectID: d.ProjectID, UserID: d.UserID, Role: d.Role, CreateTime: now}
		if existing := a.FindMember(d.UserID); existing != nil {
			oldRole = string(existing.Role)
			record.CreateTime = existing.CreateTime
		}
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeProject, a.ID, a.Name, a.ID, event.EventCategoryMemberUpdated,
			event.UpdatedProperties{{PropertyName: "member:" + d.UserID.String(), OldValue: oldRole, NewValue: string(d.Role)}},
			&s.Identity, now, tx)
		return err
	})
	if err != nil {
		return err
	}
	event.Dispatch(db, ev)
	return nil
}

func QueryProjectMemberDetails(d *domain.ProjectMemberQuery, s *session.Session) (*[]domain.ProjectMemberDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	a, err := LoadProjectMembership(db, d.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleViewer); err != nil {
		return nil, err
	}

	userIds := make([]types.ID, 0, len(a.Members))
	for _, m := range a.Members {
		userIds = append(userIds, m.UserID)
	}
	names, err := QueryAccountNamesFunc(db, userIds)
	if err != nil {
		return nil, err
	}

	details := make([]domain.ProjectMemberDetail, 0, len(a.Members))
	for _, m := range a.Members {
		details = append(details, domain.ProjectMemberDetail{ProjectMember: m, ProjectName: a.Name, MemberName: names[m.UserID]})
	}
	return &details, nil
}

// DeleteProjectMember removes a membership, allowed for project admins and for the member itself.
// Removing a missing membership succeeds.
func DeleteProjectMember(d *domain.ProjectMemberDeletion, s *session.Session) error {
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		a, err := LoadProjectMembership(tx, d.ProjectID)
		if err != nil {
			return err
		}
		if d.UserID != s.Identity.ID {
			if err := a.RequireAccess(s.Identity.ID, domain.MemberRoleAdmin); err != nil {
				return err
			}
		}
		existing := a.FindMember(d.UserID)
		if existing == nil {
			return nil
		}
		if err := tx.Where("project_id = ? AND user_id = ?", d.ProjectID, d.UserID).Delete(&domain.ProjectMember{}).Error; err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeProject, a.ID, a.Name, a.ID, event.EventCategoryMemberUpdated,
			event.UpdatedProperties{{PropertyName: "member:" + d.UserID.String(), OldValue: string(existing.Role), NewValue: ""}},
			&s.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err != nil {
		return err
	}
	event.Dispatch(db, ev)
	return nil
}
