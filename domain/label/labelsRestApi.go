package label

import (
	"net/http"
	"worksync/common"
	"worksync/domain"
	"worksync/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const LabelsApiRoot = "/v1/labels"

var (
	CreateLabelFunc = CreateLabel
	QueryLabelsFunc = QueryLabels
	DeleteLabelFunc = DeleteLabel
)

func RegisterLabelsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(LabelsApiRoot, middleWares...)
	g.GET("", HandleQueryLabels)
	g.POST("", HandleCreateLabel)
	g.DELETE(":id", HandleDeleteLabel)
}

func HandleQueryLabels(c *gin.Context) {
	query := domain.LabelQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := QueryLabelsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateLabel(c *gin.Context) {
	payload := domain.LabelCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateLabelFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleDeleteLabel(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := DeleteLabelFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
