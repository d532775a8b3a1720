package task_test

import (
	"errors"
	"time"
	"worksync/authority"
	"worksync/bizerror"
	"worksync/domain"
	"worksync/domain/task"
	"worksync/event"
	"worksync/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tasks", func() {
	var (
		testDatabase *testinfra.TestDatabase
		db           *gorm.DB
	)
	BeforeEach(func() {
		testDatabase, db = setupTaskDatabase()
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	createTask := func(title string, status domain.TaskStatus) *domain.Task {
		t, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: title, Status: status}, testinfra.BuildSession(3))
		Expect(err).To(BeNil())
		return t
	}

	Describe("CreateTask", func() {
		It("should create task with defaults and keep progress in line", func() {
			t := createTask("first", "")
			Expect(t.Status).To(Equal(domain.TaskStatusNotStarted))
			Expect(t.Priority).To(Equal(domain.TaskPriorityMedium))
			Expect(t.CreatorID).To(Equal(types.ID(3)))
			Expect(projectOf(db).Progress).To(BeZero())

			completed := createTask("second", domain.TaskStatusCompleted)
			Expect(completed.CompletedAt.Time().IsZero()).To(BeFalse())
			createTask("third", domain.TaskStatusInProgress)

			p := projectOf(db)
			Expect(p.Progress).To(Equal(33))
			Expect(p.Version).To(Equal(3))

			var count int
			Expect(db.Model(&event.EventRecord{}).Where("source_type = ?", event.SourceTypeTask).Count(&count).Error).To(BeNil())
			Expect(count).To(Equal(3))
		})

		It("should require editor access", func() {
			_, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "t"}, testinfra.BuildSession(4))
			Expect(err).To(Equal(domain.ErrAccessDenied))
			_, err = task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "t"}, testinfra.BuildSession(5, authority.SystemAdminPermission))
			Expect(err).To(Equal(domain.ErrAccessDenied))
		})

		It("should validate assignee, status and priority", func() {
			_, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "t", AssigneeID: 5}, testinfra.BuildSession(3))
			Expect(err).To(Equal(bizerror.ErrTaskAssigneeInvalid))

			t, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "t", AssigneeID: 1}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())
			Expect(t.AssigneeID).To(Equal(types.ID(1)))

			_, err = task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "t", Status: "DONE"}, testinfra.BuildSession(3))
			Expect(errors.Is(err, domain.ErrInvalidArgument)).To(BeTrue())
			_, err = task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "t", Priority: "critical"}, testinfra.BuildSession(3))
			Expect(errors.Is(err, domain.ErrInvalidArgument)).To(BeTrue())
		})

		It("should fail for missing project", func() {
			_, err := task.CreateTask(&domain.TaskCreation{ProjectID: 404, Title: "t"}, testinfra.BuildSession(3))
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})
	})

	Describe("ChangeTaskStatus", func() {
		It("should recompute progress on every status change", func() {
			t1 := createTask("t1", "")
			createTask("t2", "")
			createTask("t3", "")

			changed, err := task.ChangeTaskStatus(t1.ID, &domain.TaskStatusChanging{Status: domain.TaskStatusCompleted}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())
			Expect(changed.Status).To(Equal(domain.TaskStatusCompleted))
			Expect(changed.CompletedAt.Time().IsZero()).To(BeFalse())
			Expect(projectOf(db).Progress).To(Equal(33))

			changed, err = task.ChangeTaskStatus(t1.ID, &domain.TaskStatusChanging{Status: domain.TaskStatusOnHold}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())
			Expect(changed.CompletedAt.Time().IsZero()).To(BeTrue())
			Expect(projectOf(db).Progress).To(BeZero())

			stored, err := task.DetailTask(t1.ID, testinfra.BuildSession(4))
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(domain.TaskStatusOnHold))
		})

		It("should be a no-op for unchanged status", func() {
			t1 := createTask("t1", "")
			version := projectOf(db).Version
			_, err := task.ChangeTaskStatus(t1.ID, &domain.TaskStatusChanging{Status: domain.TaskStatusNotStarted}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())
			Expect(projectOf(db).Version).To(Equal(version))
		})

		It("should deny viewers and reject unknown task", func() {
			t1 := createTask("t1", "")
			_, err := task.ChangeTaskStatus(t1.ID, &domain.TaskStatusChanging{Status: domain.TaskStatusCompleted}, testinfra.BuildSession(4))
			Expect(err).To(Equal(domain.ErrAccessDenied))
			_, err = task.ChangeTaskStatus(404, &domain.TaskStatusChanging{Status: domain.TaskStatusCompleted}, testinfra.BuildSession(3))
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})
	})

	Describe("UpdateTask", func() {
		It("should update descriptive fields only", func() {
			t1 := createTask("t1", domain.TaskStatusInProgress)
			err := task.UpdateTask(t1.ID, &domain.TaskUpdating{Title: "renamed", Priority: domain.TaskPriorityUrgent, AssigneeID: 4},
				testinfra.BuildSession(3))
			Expect(err).To(BeNil())

			stored, err := task.DetailTask(t1.ID, testinfra.BuildSession(1))
			Expect(err).To(BeNil())
			Expect(stored.Title).To(Equal("renamed"))
			Expect(stored.Priority).To(Equal(domain.TaskPriorityUrgent))
			Expect(stored.AssigneeID).To(Equal(types.ID(4)))
			Expect(stored.Status).To(Equal(domain.TaskStatusInProgress))
		})

		It("should validate priority and assignee", func() {
			t1 := createTask("t1", "")
			err := task.UpdateTask(t1.ID, &domain.TaskUpdating{Title: "x", Priority: "critical"}, testinfra.BuildSession(3))
			Expect(errors.Is(err, domain.ErrInvalidArgument)).To(BeTrue())
			err = task.UpdateTask(t1.ID, &domain.TaskUpdating{Title: "x", Priority: domain.TaskPriorityLow, AssigneeID: 5}, testinfra.BuildSession(3))
			Expect(err).To(Equal(bizerror.ErrTaskAssigneeInvalid))
		})
	})

	Describe("DeleteTask", func() {
		It("should require admin and recompute progress", func() {
			t1 := createTask("t1", "")
			createTask("t2", domain.TaskStatusCompleted)
			Expect(projectOf(db).Progress).To(Equal(50))

			Expect(task.DeleteTask(t1.ID, testinfra.BuildSession(3))).To(Equal(domain.ErrAccessDenied))
			Expect(task.DeleteTask(t1.ID, testinfra.BuildSession(2))).To(BeNil())
			Expect(projectOf(db).Progress).To(Equal(100))

			_, err := task.DetailTask(t1.ID, testinfra.BuildSession(2))
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})

		It("should reset progress to zero when the last task is deleted", func() {
			t1 := createTask("t1", domain.TaskStatusCompleted)
			Expect(projectOf(db).Progress).To(Equal(100))
			Expect(task.DeleteTask(t1.ID, testinfra.BuildSession(1))).To(BeNil())
			Expect(projectOf(db).Progress).To(BeZero())
		})
	})

	Describe("DetailTask and QueryTasks", func() {
		It("should deny outsiders", func() {
			t1 := createTask("t1", "")
			_, err := task.DetailTask(t1.ID, testinfra.BuildSession(5))
			Expect(err).To(Equal(domain.ErrAccessDenied))
			_, err = task.QueryTasks(&domain.TaskQuery{ProjectID: 100}, testinfra.BuildSession(5))
			Expect(err).To(Equal(domain.ErrAccessDenied))
		})

		It("should filter by status and assignee", func() {
			createTask("t1", domain.TaskStatusCompleted)
			createTask("t2", "")
			_, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "t3", AssigneeID: 4}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())

			tasks, err := task.QueryTasks(&domain.TaskQuery{ProjectID: 100}, testinfra.BuildSession(4))
			Expect(err).To(BeNil())
			Expect(len(*tasks)).To(Equal(3))

			tasks, err = task.QueryTasks(&domain.TaskQuery{ProjectID: 100, Status: domain.TaskStatusNotStarted}, testinfra.BuildSession(4))
			Expect(err).To(BeNil())
			Expect(len(*tasks)).To(Equal(2))

			tasks, err = task.QueryTasks(&domain.TaskQuery{ProjectID: 100, AssigneeID: 4}, testinfra.BuildSession(4))
			Expect(err).To(BeNil())
			Expect(len(*tasks)).To(Equal(1))
			Expect((*tasks)[0].Title).To(Equal("t3"))

			_, err = task.QueryTasks(&domain.TaskQuery{ProjectID: 100, Status: "DONE"}, testinfra.BuildSession(4))
			Expect(errors.Is(err, domain.ErrInvalidArgument)).To(BeTrue())
		})
	})

	Describe("QueryOverdueTasks and QueryTasksDueSoon", func() {
		BeforeEach(func() {
			now := time.Now()
			day := 24 * time.Hour
			create := func(title string, status domain.TaskStatus, due time.Time) {
				_, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: title, Status: status,
					DueDate: types.Timestamp(due)}, testinfra.BuildSession(3))
				Expect(err).To(BeNil())
			}
			create("overdue", domain.TaskStatusInProgress, now.Add(-2*day))
			create("overdue-completed", domain.TaskStatusCompleted, now.Add(-2*day))
			create("soon", domain.TaskStatusNotStarted, now.Add(3*day))
			create("later", domain.TaskStatusNotStarted, now.Add(20*day))
			_, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "no-due"}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())
		})

		titles := func(tasks *[]domain.Task) []string {
			r := []string{}
			for _, t := range *tasks {
				r = append(r, t.Title)
			}
			return r
		}

		It("should list open overdue tasks of visible projects", func() {
			tasks, err := task.QueryOverdueTasks(testinfra.BuildSession(4))
			Expect(err).To(BeNil())
			Expect(titles(tasks)).To(Equal([]string{"overdue"}))

			tasks, err = task.QueryOverdueTasks(testinfra.BuildSession(5))
			Expect(err).To(BeNil())
			Expect(*tasks).To(BeEmpty())
		})

		It("should not list tasks of projects a system admin is not a member of", func() {
			sec := testinfra.BuildSession(5, authority.SystemAdminPermission)
			tasks, err := task.QueryOverdueTasks(sec)
			Expect(err).To(BeNil())
			Expect(*tasks).To(BeEmpty())

			tasks, err = task.QueryTasksDueSoon(30, sec)
			Expect(err).To(BeNil())
			Expect(*tasks).To(BeEmpty())

			visible, err := task.QueryOverdueTasks(testinfra.BuildSession(4))
			Expect(err).To(BeNil())
			_, err = task.DetailTask((*visible)[0].ID, sec)
			Expect(err).To(Equal(domain.ErrAccessDenied))
		})

		It("should list tasks due within days", func() {
			tasks, err := task.QueryTasksDueSoon(0, testinfra.BuildSession(1))
			Expect(err).To(BeNil())
			Expect(titles(tasks)).To(Equal([]string{"soon"}))

			tasks, err = task.QueryTasksDueSoon(30, testinfra.BuildSession(1))
			Expect(err).To(BeNil())
			Expect(titles(tasks)).To(Equal([]string{"soon", "later"}))

			_, err = task.QueryTasksDueSoon(-1, testinfra.BuildSession(1))
			Expect(errors.Is(err, domain.ErrInvalidArgument)).To(BeTrue())
		})
	})

	Describe("tags, hours and project settings", func() {
		It("should keep tags and hours and register tags as project labels", func() {
			t, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "t", Tags: []string{" api ", "docs", "api", ""},
				EstimatedHours: 4, ActualHours: 1.5}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())
			Expect(t.Tags).To(Equal(domain.Tags{"api", "docs"}))

			stored := domain.Task{}
			Expect(db.Where("id = ?", t.ID).First(&stored).Error).To(BeNil())
			Expect(stored.Tags).To(Equal(domain.Tags{"api", "docs"}))
			Expect(stored.EstimatedHours).To(Equal(4.0))
			Expect(stored.ActualHours).To(Equal(1.5))

			var labels []domain.Label
			Expect(db.Where("project_id = ?", 100).Order("name ASC").Find(&labels).Error).To(BeNil())
			Expect(len(labels)).To(Equal(2))
			Expect(labels[0].Name).To(Equal("api"))

			Expect(task.UpdateTask(t.ID, &domain.TaskUpdating{Title: "t", Priority: domain.TaskPriorityLow, Tags: []string{"ops"},
				ActualHours: 3}, testinfra.BuildSession(3))).To(BeNil())
			Expect(db.Where("id = ?", t.ID).First(&stored).Error).To(BeNil())
			Expect(stored.Tags).To(Equal(domain.Tags{"ops"}))
			Expect(stored.EstimatedHours).To(BeZero())
			Expect(stored.ActualHours).To(Equal(3.0))
			count := 0
			Expect(db.Model(&domain.Label{}).Where("project_id = ?", 100).Count(&count).Error).To(BeNil())
			Expect(count).To(Equal(3))
		})

		It("should reject negative hours", func() {
			_, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "t", EstimatedHours: -1}, testinfra.BuildSession(3))
			Expect(errors.Is(err, domain.ErrInvalidArgument)).To(BeTrue())

			t := createTask("t", "")
			err = task.UpdateTask(t.ID, &domain.TaskUpdating{Title: "t", Priority: domain.TaskPriorityLow, ActualHours: -2}, testinfra.BuildSession(3))
			Expect(errors.Is(err, domain.ErrInvalidArgument)).To(BeTrue())
		})

		It("should filter tasks by tag", func() {
			_, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "a", Tags: []string{"api"}}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())
			_, err = task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "b", Tags: []string{"api-docs"}}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())

			tasks, err := task.QueryTasks(&domain.TaskQuery{ProjectID: 100, Tag: "api"}, testinfra.BuildSession(4))
			Expect(err).To(BeNil())
			Expect(len(*tasks)).To(Equal(1))
			Expect((*tasks)[0].Title).To(Equal("a"))

			tasks, err = task.QueryTasks(&domain.TaskQuery{ProjectID: 100, Tag: "%"}, testinfra.BuildSession(4))
			Expect(err).To(BeNil())
			Expect(*tasks).To(BeEmpty())
		})

		It("should assign tasks to their creator when the project auto assigns", func() {
			t := createTask("manual", "")
			Expect(t.AssigneeID).To(BeZero())

			Expect(db.Model(&domain.Project{}).Where("id = ?", 100).Update("setting_auto_assign_tasks", true).Error).To(BeNil())
			t = createTask("auto", "")
			Expect(t.AssigneeID).To(Equal(types.ID(3)))

			t, err := task.CreateTask(&domain.TaskCreation{ProjectID: 100, Title: "given", AssigneeID: 4}, testinfra.BuildSession(3))
			Expect(err).To(BeNil())
			Expect(t.AssigneeID).To(Equal(types.ID(4)))
		})

		It("should delete check items, time logs and comments with the task", func() {
			t := createTask("t", "")
			now := types.CurrentTimestamp()
			Expect(db.Create(&domain.CheckItem{ID: 1, TaskID: t.ID, ProjectID: 100, Name: "i", CreateTime: now}).Error).To(BeNil())
			Expect(db.Create(&domain.TimeLog{ID: 2, TaskID: t.ID, ProjectID: 100, UserID: 3, BeginTime: now}).Error).To(BeNil())
			Expect(db.Create(&domain.Comment{ID: 3, TaskID: t.ID, ProjectID: 100, AuthorID: 3, Content: "c", CreateTime: now}).Error).To(BeNil())

			Expect(task.DeleteTask(t.ID, testinfra.BuildSession(2))).To(BeNil())
			for _, dependent := range []interface{}{&domain.CheckItem{}, &domain.TimeLog{}, &domain.Comment{}} {
				count := 0
				Expect(db.Model(dependent).Where("task_id = ?", t.ID).Count(&count).Error).To(BeNil())
				Expect(count).To(BeZero())
			}
		})
	})
})
