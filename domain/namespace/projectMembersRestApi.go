package namespace

import (
	"net/http"
	"worksync/common"
	"worksync/domain"
	"worksync/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	ProjectsMemberApiRoot = "/v1/project-members"

	QueryProjectMembersFunc = QueryProjectMemberDetails
	CreateProjectMemberFunc = CreateProjectMember
	DeleteProjectMemberFunc = DeleteProjectMember
)

func RegisterProjectMembersRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	RegisterValidators()
	members := r.Group(ProjectsMemberApiRoot, middleWares...)
	members.GET("", HandleQueryProjectMembers)
	members.POST("", HandleCreateProjectMember)
	members.DELETE("", HandleDeleteProjectMember)
}

func HandleQueryProjectMembers(c *gin.Context) {
	payload := domain.ProjectMemberQuery{}
	err := c.ShouldBindQuery(&payload)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := QueryProjectMembersFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateProjectMember(c *gin.Context) {
	payload := domain.ProjectMemberCreation{}
	err := c.ShouldBindBodyWith(&payload, binding.JSON)
	if err != nil {
		panic(err)
	}
	err = CreateProjectMemberFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func HandleDeleteProjectMember(c *gin.Context) {
	payload := domain.ProjectMemberDeletion{}
	err := c.ShouldBindQuery(&payload)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	err = DeleteProjectMemberFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
