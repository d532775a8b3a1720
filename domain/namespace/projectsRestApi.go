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
	ProjectsApiRoot = "/v1/projects"

	QueryProjectsFunc            = QueryProjects
	CreateProjectFunc            = CreateProject
	DetailProjectFunc            = DetailProject
	UpdateProjectFunc            = UpdateProject
	DeleteProjectFunc            = DeleteProject
	TransferProjectOwnershipFunc = TransferProjectOwnership
)

func RegisterProjectsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	projects := r.Group(ProjectsApiRoot, middleWares...)
	projects.GET("", HandleQueryProjects)
	projects.POST("", HandleCreateProject)
	projects.GET(":id", HandleDetailProject)
	projects.PUT(":id", HandleUpdateProject)
	projects.DELETE(":id", HandleDeleteProject)
	projects.PUT(":id/owner", HandleTransferProjectOwnership)
}

func HandleQueryProjects(c *gin.Context) {
	query := domain.ProjectQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := QueryProjectsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateProject(c *gin.Context) {
	payload := domain.ProjectCreating{}
	err := c.ShouldBindBodyWith(&payload, binding.JSON)
	if err != nil {
		panic(err)
	}
	result, err := CreateProjectFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleDetailProject(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := DetailProjectFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateProject(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}

	payload := domain.ProjectUpdating{}
	err = c.ShouldBindBodyWith(&payload, binding.JSON)
	if err != nil {
		panic(err)
	}
	err = UpdateProjectFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func HandleDeleteProject(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	if err := DeleteProjectFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func HandleTransferProjectOwnership(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.ProjectOwnerTransfer{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(err)
	}
	if err := TransferProjectOwnershipFunc(id, &payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}
