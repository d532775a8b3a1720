package timelog

import (
	"net/http"
	"worksync/common"
	"worksync/domain"
	"worksync/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const TimeLogsApiRoot = "/v1/time-logs"

var (
	StartTimeTrackingFunc = StartTimeTracking
	StopTimeTrackingFunc  = StopTimeTracking
	QueryTimeLogsFunc     = QueryTimeLogs
)

func RegisterTimeLogsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(TimeLogsApiRoot, middleWares...)
	g.GET("", HandleQueryTimeLogs)
	g.POST("", HandleStartTimeTracking)
	g.PUT("", HandleStopTimeTracking)
}

func HandleQueryTimeLogs(c *gin.Context) {
	query := domain.TimeLogQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := QueryTimeLogsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleStartTimeTracking(c *gin.Context) {
	body := domain.TimeTrackingStart{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(err)
	}
	result, err := StartTimeTrackingFunc(&body, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleStopTimeTracking(c *gin.Context) {
	body := domain.TimeTrackingStop{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(err)
	}
	result, err := StopTimeTrackingFunc(&body, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
