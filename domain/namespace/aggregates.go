package namespace

import (
	"errors"
	"fmt"
	"worksync/domain"
	"worksync/persistence"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// MaxAggregateAttempts bounds the load-mutate-persist cycles of WithProjectAggregate.
const MaxAggregateAttempts = 3

// LoadProjectAggregate loads the project together with all of its members and tasks.
func LoadProjectAggregate(tx *gorm.DB, id types.ID) (*domain.ProjectAggregate, error) {
	a, err := LoadProjectMembership(tx, id)
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	if err := tx.Where("project_id = ?", id).Order("create_time ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return domain.NewProjectAggregate(a.Project, a.Members, tasks), nil
}

// LoadProjectMembership loads the project and its members, the task set is left unloaded.
func LoadProjectMembership(tx *gorm.DB, id types.ID) (*domain.ProjectAggregate, error) {
	project := domain.Project{}
	if err := tx.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	var members []domain.ProjectMember
	if err := tx.Where("project_id = ?", id).Order("create_time ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	a := domain.NewProjectAggregate(project, members, nil)
	a.TasksLoaded = false
	return a, nil
}

// LoadTaskMembership loads a task together with the membership of its project.
func LoadTaskMembership(tx *gorm.DB, taskId types.ID) (*domain.Task, *domain.ProjectAggregate, error) {
	t := domain.Task{}
	if err := tx.Where("id = ?", taskId).First(&t).Error; err != nil {
		return nil, nil, err
	}
	a, err := LoadProjectMembership(tx, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return &t, a, nil
}

// RequireTaskAccess loads a task and requires the session user to hold role on its project.
func RequireTaskAccess(tx *gorm.DB, taskId types.ID, s *session.Session, role domain.MemberRole) (*domain.Task, *domain.ProjectAggregate, error) {
	t, a, err := LoadTaskMembership(tx, taskId)
	if err != nil {
		return nil, nil, err
	}
	if err := a.RequireAccess(s.Identity.ID, role); err != nil {
		return nil, nil, err
	}
	return t, a, nil
}

// SaveProjectProgress recomputes and persists the progress of a.
func SaveProjectProgress(tx *gorm.DB, a *domain.ProjectAggregate) error {
	if _, err := a.RecomputeProgress(); err != nil {
		return err
	}
	return saveProjectChanges(tx, a, map[string]interface{}{"progress": a.Progress})
}

// saveProjectChanges writes changes to the project row of a and bumps its version,
// ErrConcurrentModification is returned when the row moved since a was loaded.
func saveProjectChanges(tx *gorm.DB, a *domain.ProjectAggregate, changes map[string]interface{}) error {
	now := types.CurrentTimestamp()
	changes["version"] = a.Version + 1
	changes["update_time"] = now

	db := tx.Model(&domain.Project{}).Where("id = ? AND version = ?", a.ID, a.Version).Updates(changes)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return fmt.Errorf("%w: project %d", domain.ErrConcurrentModification, a.ID)
	}
	a.Version++
	a.UpdateTime = now
	return nil
}

// WithProjectAggregate runs fn against a freshly loaded aggregate in a transaction.
// The whole cycle is retried when fn or the final save reports a concurrent modification.
func WithProjectAggregate(s *session.Session, id types.ID, fn func(tx *gorm.DB, a *domain.ProjectAggregate) error) error {
	var err error
	for attempt := 1; attempt <= MaxAggregateAttempts; attempt++ {
		err = persistence.ActiveDataSourceManager.GormDB(s.Ctx()).Transaction(func(tx *gorm.DB) error {
			a, err := LoadProjectAggregate(tx, id)
			if err != nil {
				return err
			}
			return fn(tx, a)
		})
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
		logrus.WithField("project", id).Warnf("concurrent modification detected, attempt %d/%d", attempt, MaxAggregateAttempts)
	}
	return err
}

// VisibleProjectIDs returns ids of projects the session user owns or is a member of.
// The global user role never widens this set.
func VisibleProjectIDs(db *gorm.DB, s *session.Session) ([]types.ID, error) {
	var memberOf []types.ID
	if err := db.Model(&domain.ProjectMember{}).Where("user_id = ?", s.Identity.ID).Pluck("project_id", &memberOf).Error; err != nil {
		return nil, err
	}
	var owned []types.ID
	if err := db.Model(&domain.Project{}).Where("owner_id = ?", s.Identity.ID).Pluck("id", &owned).Error; err != nil {
		return nil, err
	}
	ids := append(owned, memberOf...)
	if ids == nil {
		ids = []types.ID{}
	}
	return ids, nil
}
