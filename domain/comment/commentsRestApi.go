package comment

import (
	"net/http"
	"worksync/common"
	"worksync/domain"
	"worksync/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const CommentsApiRoot = "/v1/comments"

var (
	CreateCommentFunc = CreateComment
	QueryCommentsFunc = QueryComments
	DeleteCommentFunc = DeleteComment
)

func RegisterCommentsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(CommentsApiRoot, middleWares...)
	g.GET("", HandleQueryComments)
	g.POST("", HandleCreateComment)
	g.DELETE(":id", HandleDeleteComment)
}

func HandleQueryComments(c *gin.Context) {
	query := domain.CommentQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := QueryCommentsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateComment(c *gin.Context) {
	payload := domain.CommentCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	result, err := CreateCommentFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleDeleteComment(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := DeleteCommentFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
