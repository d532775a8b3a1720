package domain

import (
	"fmt"
	"time"

	"github.com/fundwit/go-commons/types"
)

// ProjectAggregate is a project together with its loaded members and tasks,
// it is the unit of every read-modify-write on a project.
type ProjectAggregate struct {
	Project

	Members []ProjectMember
	Tasks   []Task

	// TasksLoaded is false when Tasks does not hold the complete task set of the project.
	TasksLoaded bool
}

func NewProjectAggregate(project Project, members []ProjectMember, tasks []Task) *ProjectAggregate {
	if members == nil {
		members = []ProjectMember{}
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return &ProjectAggregate{Project: project, Members: members, Tasks: tasks, TasksLoaded: true}
}

func (a *ProjectAggregate) IsOwner(userID types.ID) bool {
	return a.OwnerID == userID
}

func (a *ProjectAggregate) FindMember(userID types.ID) *ProjectMember {
	for i := range a.Members {
		if a.Members[i].UserID == userID {
			return &a.Members[i]
		}
	}
	return nil
}

// HasAccess reports whether the user may act on the project with at least the required role.
// The owner always passes, users without a member row never do.
func (a *ProjectAggregate) HasAccess(userID types.ID, required MemberRole) (bool, error) {
	if !required.Valid() {
		return false, fmt.Errorf("%w: unknown required role '%s'", ErrInvalidArgument, required)
	}
	if a.IsOwner(userID) {
		return true, nil
	}
	member := a.FindMember(userID)
	if member == nil {
		return false, nil
	}
	return member.Role.AtLeast(required)
}

// RequireAccess is HasAccess reporting a denial as ErrAccessDenied.
func (a *ProjectAggregate) RequireAccess(userID types.ID, required MemberRole) error {
	ok, err := a.HasAccess(userID, required)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

// RecomputeProgress derives Progress from the loaded task set. It does not persist anything.
func (a *ProjectAggregate) RecomputeProgress() (int, error) {
	if !a.TasksLoaded {
		return a.Progress, fmt.Errorf("%w: tasks of project %d are not fully loaded", ErrPreconditionFailed, a.ID)
	}
	a.Progress = CalculateProgress(a.Tasks)
	return a.Progress, nil
}

func (a *ProjectAggregate) FindTask(taskID types.ID) *Task {
	for i := range a.Tasks {
		if a.Tasks[i].ID == taskID {
			return &a.Tasks[i]
		}
	}
	return nil
}

func (a *ProjectAggregate) RemoveTask(taskID types.ID) bool {
	for i := range a.Tasks {
		if a.Tasks[i].ID == taskID {
			a.Tasks = append(a.Tasks[:i], a.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

func (a *ProjectAggregate) TaskStats(now time.Time) TaskStats {
	stats := TaskStats{Total: len(a.Tasks)}
	for i := range a.Tasks {
		switch a.Tasks[i].Status {
		case TaskStatusCompleted:
			stats.Completed++
		case TaskStatusInProgress:
			stats.InProgress++
		}
		if a.Tasks[i].IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

func (a *ProjectAggregate) Detail(now time.Time) *ProjectDetail {
	return &ProjectDetail{Project: a.Project, Members: a.Members, TaskStats: a.TaskStats(now)}
}
