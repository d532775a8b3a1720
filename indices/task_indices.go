package indices

import (
	"context"
	"fmt"
	"worksync/client/es"
	"worksync/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	TaskIndexName = "tasks"
)

// TaskDocument is the indexed form of a task
type TaskDocument struct {
	domain.Task
	ProjectName string `json:"projectName"`
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

// IndexTasks upserts documents of tasks, projectNames supplies the denormalized project name
func IndexTasks(ctx context.Context, tasks []domain.Task, projectNames map[types.ID]string) error {
	errs := BatchActionError{}
	for _, t := range tasks {
		doc := TaskDocument{Task: t, ProjectName: projectNames[t.ProjectID]}
		if err := es.IndexFunc(ctx, TaskIndexName, t.ID, doc); err != nil {
			errs[t.ID] = err
			logrus.Warnf("index task %d %s: %v", t.ID, t.Title, err)
		} else {
			logrus.Debugf("index task %d %s successfully", t.ID, t.Title)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
