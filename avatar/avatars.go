package avatar

import (
	"io"
	"io/ioutil"
	"worksync/account"
	"worksync/bizerror"
	"worksync/client/s3"
	"worksync/domain"
	"worksync/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
)

var UpdateAvatarURLFunc = account.UpdateAvatarURL

func objectKey(id types.ID) string {
	return "avatars/" + id.String() + ".png"
}

func DetailAvatar(id types.ID, s *session.Session) ([]byte, error) {
	r, err := s3.GetObjectFunc(s.Ctx(), objectKey(id))
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

// CreateAvatar stores the avatar image of the session user and points the user profile at it
func CreateAvatar(id types.ID, r io.Reader, s *session.Session) error {
	if id != s.Identity.ID {
		return bizerror.ErrForbidden
	}
	if err := s3.PutObjectFunc(s.Ctx(), objectKey(id), r, oss.ContentType("image/png")); err != nil {
		return err
	}
	return UpdateAvatarURLFunc(id, APIAvatarsRoot+"/"+id.String(), s)
}
