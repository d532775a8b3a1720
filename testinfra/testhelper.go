package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"worksync/authority"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSession builds a logged in session for user uid
func BuildSession(uid types.ID, perms ...string) *session.Session {
	return &session.Session{
		Token:    "token_" + uid.String(),
		Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Perms:    authority.Permissions(perms),
		Context:  context.Background(),
	}
}

// ExecuteRequest serves req with engine and returns status code, body and headers
func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	bodyBytes, err := ioutil.ReadAll(w.Result().Body)
	if err != nil {
		panic(err)
	}
	return w.Code, string(bodyBytes), w.Result().Header
}

// InjectSession returns a middleware putting s into each request
func InjectSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.InjectSessionIntoGinContext(c, s)
		c.Next()
	}
}
