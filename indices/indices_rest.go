package indices

import (
	"net/http"
	"worksync/common"
	"worksync/session"

	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests = "/v1/index-requests"
	PathTaskSearches  = "/v1/task-searches"
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequest)

	s := r.Group(PathTaskSearches, middleWares...)
	s.GET("", handleSearchTasks)
}

func handleIndexRequest(c *gin.Context) {
	success, err := ScheduleNewSyncRunFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": success})
}

func handleSearchTasks(c *gin.Context) {
	q := TaskSearchQuery{}
	if err := c.ShouldBindQuery(&q); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := SearchTasksFunc(&q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
