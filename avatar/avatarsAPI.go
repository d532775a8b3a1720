package avatar

import (
	"errors"
	"net/http"
	"worksync/common"
	"worksync/session"

	"github.com/gin-gonic/gin"
)

const MaxAvatarSize = 1 << 20

var (
	APIAvatarsRoot   = "/v1/avatars"
	DetailAvatarFunc = DetailAvatar
	CreateAvatarFunc = CreateAvatar
)

func RegisterAvatarAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(APIAvatarsRoot, middleWares...)
	g.GET(":id", HandleGetAvatar)
	g.POST(":id", HandleCreateAvatar)
}

func HandleGetAvatar(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}

	bytes, err := DetailAvatarFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}

	c.Data(http.StatusOK, "image/png", bytes)
}

func HandleCreateAvatar(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if file.Size > MaxAvatarSize {
		panic(&common.ErrBadParam{Cause: errors.New("avatar file is larger than 1MB")})
	}
	src, err := file.Open()
	if err != nil {
		panic(err)
	}
	defer src.Close()

	if err := CreateAvatarFunc(id, src, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}

	c.JSON(http.StatusOK, gin.H{})
}
