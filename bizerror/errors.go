package bizerror

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrTooManyRequests = errors.New("too many requests")
	ErrInvalidPassword = errors.New("invalid password")

	ErrProjectMemberSelfGrant = errors.New("project member can not grant role for itself")
	ErrProjectOwnerMember     = errors.New("project owner can not be a project member")
	ErrTaskAssigneeInvalid    = errors.New("task assignee is not a member of the project")
)
