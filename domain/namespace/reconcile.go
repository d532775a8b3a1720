package namespace

import (
	"context"
	"worksync/domain"
	"worksync/persistence"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const reconcilePageSize = 100

// ReconcileProjectsProgress walks all projects and persists the progress of those whose stored value drifted.
func ReconcileProjectsProgress(ctx context.Context) (int, error) {
	robot := &session.Session{Identity: session.Identity{Name: "progress-reconciler"}, Context: ctx}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	fixed := 0
	lastId := types.ID(0)
	for {
		var ids []types.ID
		if err := db.Model(&domain.Project{}).Where("id > ?", lastId).Order("id ASC").Limit(reconcilePageSize).Pluck("id", &ids).Error; err != nil {
			return fixed, err
		}
		if len(ids) == 0 {
			break
		}
		for _, id := range ids {
			drifted := false
			err := WithProjectAggregate(robot, id, func(tx *gorm.DB, a *domain.ProjectAggregate) error {
				stored := a.Progress
				if domain.CalculateProgress(a.Tasks) == stored {
					drifted = false
					return nil
				}
				drifted = true
				return SaveProjectProgress(tx, a)
			})
			if err != nil {
				if gorm.IsRecordNotFoundError(err) {
					continue // deleted meanwhile
				}
				return fixed, err
			}
			if drifted {
				fixed++
				logrus.WithField("project", id).Info("project progress reconciled")
			}
		}
		lastId = ids[len(ids)-1]
	}
	return fixed, nil
}
