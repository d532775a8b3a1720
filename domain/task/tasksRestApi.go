package task

import (
	"net/http"
	"strconv"
	"worksync/common"
	"worksync/domain"
	"worksync/domain/namespace"
	"worksync/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	TasksApiRoot       = "/v1/tasks"
	TaskQueriesApiRoot = "/v1/task-queries"
)

var (
	CreateTaskFunc        = CreateTask
	UpdateTaskFunc        = UpdateTask
	ChangeTaskStatusFunc  = ChangeTaskStatus
	DeleteTaskFunc        = DeleteTask
	DetailTaskFunc        = DetailTask
	QueryTasksFunc        = QueryTasks
	QueryOverdueTasksFunc = QueryOverdueTasks
	QueryTasksDueSoonFunc = QueryTasksDueSoon
)

func RegisterTasksRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	namespace.RegisterValidators()

	tasks := r.Group(TasksApiRoot, middleWares...)
	tasks.GET("", HandleQueryTasks)
	tasks.POST("", HandleCreateTask)
	tasks.GET(":id", HandleDetailTask)
	tasks.PUT(":id", HandleUpdateTask)
	tasks.DELETE(":id", HandleDeleteTask)
	tasks.PUT(":id/status", HandleChangeTaskStatus)

	queries := r.Group(TaskQueriesApiRoot, middleWares...)
	queries.GET("overdue", HandleQueryOverdueTasks)
	queries.GET("due-soon", HandleQueryTasksDueSoon)
}

func HandleQueryTasks(c *gin.Context) {
	query := domain.TaskQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := QueryTasksFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateTask(c *gin.Context) {
	payload := domain.TaskCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateTaskFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleDetailTask(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := DetailTaskFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateTask(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.TaskUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	if err := UpdateTaskFunc(id, &payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func HandleChangeTaskStatus(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.TaskStatusChanging{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := ChangeTaskStatusFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteTask(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := DeleteTaskFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func HandleQueryOverdueTasks(c *gin.Context) {
	result, err := QueryOverdueTasksFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleQueryTasksDueSoon(c *gin.Context) {
	days := 0
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(&common.ErrBadParam{Cause: err})
		}
		days = n
	}
	result, err := QueryTasksDueSoonFunc(days, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
