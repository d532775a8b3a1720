package account

import (
	"net/http"
	"worksync/common"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	UsersApiRoot        = "/v1/users"
	SessionUsersApiRoot = "/v1/session-users"
)

var (
	UpdateBasicAuthSecretFunc = UpdateBasicAuthSecret
	QueryUsersFunc            = QueryUsers
	CreateUserFunc            = CreateUser
	UpdateUserFunc            = UpdateUser
)

func RegisterUsersHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	u := r.Group(SessionUsersApiRoot, middleWares...)
	u.PUT("basic-auths", HandleUpdateBaseAuth)

	users := r.Group(UsersApiRoot, middleWares...)
	users.GET("", HandleQueryUsers)
	users.POST("", HandleCreateUser)
	users.PUT(":id", HandleUpdateUser)
}

func UserInfoQueryHandler(c *gin.Context) {
	c.JSON(http.StatusOK, session.ExtractSessionFromGinContext(c))
}

func HandleQueryUsers(c *gin.Context) {
	results, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, results)
}

func HandleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	user, err := CreateUserFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, user)
}

func HandleUpdateUser(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	updating := UserUpdation{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := UpdateUserFunc(id, &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func HandleUpdateBaseAuth(c *gin.Context) {
	payload := BasicAuthUpdating{}
	err := c.ShouldBindBodyWith(&payload, binding.JSON)
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	err = UpdateBasicAuthSecretFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}
