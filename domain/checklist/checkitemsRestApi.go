package checklist

import (
	"net/http"
	"worksync/common"
	"worksync/domain"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const CheckItemsApiRoot = "/v1/checkitems"

var (
	CreateCheckItemFunc = CreateCheckItem
	ListCheckItemsFunc  = ListCheckItems
	ToggleCheckItemFunc = ToggleCheckItem
	DeleteCheckItemFunc = DeleteCheckItem
)

type checkItemsQuery struct {
	TaskID types.ID `form:"taskId" binding:"required"`
}

func RegisterCheckItemsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(CheckItemsApiRoot, middleWares...)
	g.GET("", HandleListCheckItems)
	g.POST("", HandleCreateCheckItem)
	g.PUT(":id/toggle", HandleToggleCheckItem)
	g.DELETE(":id", HandleDeleteCheckItem)
}

func HandleListCheckItems(c *gin.Context) {
	query := checkItemsQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := ListCheckItemsFunc(query.TaskID, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateCheckItem(c *gin.Context) {
	payload := domain.CheckItemCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateCheckItemFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleToggleCheckItem(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := ToggleCheckItemFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteCheckItem(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := DeleteCheckItemFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
