package sessions

import (
	"net/http"
	"time"
	"worksync/account"
	"worksync/common"
	"worksync/persistence"
	"worksync/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

const SessionsApiRoot = "/v1/sessions"

// RegisterSessionsHandler registers login and logout, loginMiddleWares only guard the login endpoint
func RegisterSessionsHandler(r *gin.Engine, loginMiddleWares ...gin.HandlerFunc) {
	g := r.Group(SessionsApiRoot)
	g.POST("", append(loginMiddleWares, SimpleLoginHandler)...)
	g.DELETE("", SimpleLogoutHandler)
}

func SimpleLogoutHandler(c *gin.Context) {
	session.Revoke(session.RequestToken(c))
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, true)
	c.AbortWithStatus(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}

	db := persistence.ActiveDataSourceManager.GormDB(c.Request.Context())
	user, err := account.Authenticate(db, login.Name, login.Password)
	if err != nil {
		panic(err)
	}
	perms, err := account.LoadPermFunc(db, user.ID)
	if err != nil {
		panic(err)
	}

	s := session.Sign(session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname}, perms, time.Now())
	logrus.WithField("user", user.Name).Info("user logged in")

	c.SetCookie(session.KeySecToken, s.Token, int(session.TokenExpiration/time.Second), "/", "", false, true)
	c.JSON(http.StatusOK, s)
}
