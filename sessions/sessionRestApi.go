package sessions

import (
	"net/http"
	"time"
	"worksync/account"
	"worksync/persistence"
	"worksync/session"

	"github.com/gin-gonic/gin"
)

const SessionApiRoot = "/v1/session"

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(SessionApiRoot, middleWares...)
	g.GET("", DetailSessionHandler)
}

// DetailSessionHandler reloads permissions of the current session and keeps its remaining lifetime
func DetailSessionHandler(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)

	perms, err := account.LoadPermFunc(persistence.ActiveDataSourceManager.GormDB(c.Request.Context()), s.Identity.ID)
	if err != nil {
		panic(err)
	}
	refreshed, err := session.Refresh(s, perms, time.Now())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, refreshed)
}
